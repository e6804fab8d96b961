package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the locally persisted profile for an anonymous identity.
// Writes are whole-group replaces (last writer wins); there is no
// field-level merging.
type Profile struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Identity      string         `gorm:"size:64;uniqueIndex;not null" json:"identity"`
	Name          string         `gorm:"size:100" json:"name"`
	Gender        string         `gorm:"size:20" json:"gender"`
	PhotoURL      string         `gorm:"size:500" json:"photo_url"`
	Latitude      *float64       `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude     *float64       `gorm:"type:decimal(11,8)" json:"longitude"`
	ConsentAt     *time.Time     `json:"consent_at"`
	ReclaimHash   string         `gorm:"size:100" json:"-"`
	LastActiveAt  time.Time      `gorm:"index" json:"last_active_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}
