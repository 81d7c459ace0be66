package models

import (
	"time"

	"gorm.io/gorm"
)

// Expert is a teaching persona whose prompt steers the generator.
type Expert struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description" gorm:"not null"`
	AvatarURL   string         `json:"avatar_url"`
	Prompt      string         `json:"-" gorm:"not null"`
	CreatedBy   *uint          `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
