package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxGalleryImages caps the gallery; position 0 is the profile photo.
const MaxGalleryImages = 9

type GalleryImage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Identity  string         `gorm:"size:64;not null;index:idx_gallery_identity_pos" json:"identity"`
	Position  int            `gorm:"not null;index:idx_gallery_identity_pos" json:"position"`
	URL       string         `gorm:"size:500;not null" json:"url"`
	ThumbURL  string         `gorm:"size:500" json:"thumb_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GalleryImage) TableName() string {
	return "gallery_images"
}
