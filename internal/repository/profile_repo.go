package repository

import (
	"putping/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *models.Profile) error {
	return r.db.Create(p).Error
}

func (r *ProfileRepository) Upsert(p *models.Profile) error {
	return r.db.Save(p).Error
}

func (r *ProfileRepository) GetByIdentity(identity string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.Where("identity = ?", identity).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) SetPhotoURL(identity, url string) error {
	return r.db.Model(&models.Profile{}).Where("identity = ?", identity).
		Update("photo_url", url).Error
}
