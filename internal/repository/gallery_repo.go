package repository

import (
	"errors"

	"putping/internal/models"

	"gorm.io/gorm"
)

var ErrGalleryFull = errors.New("gallery is full")

type GalleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository(db *gorm.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

func (r *GalleryRepository) List(identity string) ([]models.GalleryImage, error) {
	var imgs []models.GalleryImage
	err := r.db.Where("identity = ?", identity).Order("position asc").Find(&imgs).Error
	return imgs, err
}

// Add appends an image at the end of the gallery, enforcing the cap.
func (r *GalleryRepository) Add(img *models.GalleryImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.GalleryImage{}).
			Where("identity = ?", img.Identity).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxGalleryImages {
			return ErrGalleryFull
		}
		img.Position = int(count)
		return tx.Create(img).Error
	})
}

// Reorder replaces the gallery order wholesale (last writer wins). ids must
// be a permutation of the identity's image IDs; unknown IDs are ignored.
func (r *GalleryRepository) Reorder(identity string, ids []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for pos, id := range ids {
			if err := tx.Model(&models.GalleryImage{}).
				Where("identity = ? AND id = ?", identity, id).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GalleryRepository) Delete(identity string, id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity = ? AND id = ?", identity, id).
			Delete(&models.GalleryImage{}).Error; err != nil {
			return err
		}
		// Compact positions so position 0 always exists while images remain.
		var imgs []models.GalleryImage
		if err := tx.Where("identity = ?", identity).
			Order("position asc").Find(&imgs).Error; err != nil {
			return err
		}
		for pos, img := range imgs {
			if img.Position == pos {
				continue
			}
			if err := tx.Model(&models.GalleryImage{}).
				Where("id = ?", img.ID).Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// First returns the image at position 0 (the profile photo), or nil.
func (r *GalleryRepository) First(identity string) (*models.GalleryImage, error) {
	var img models.GalleryImage
	err := r.db.Where("identity = ?", identity).Order("position asc").First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}
