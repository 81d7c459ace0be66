package models

import (
	"time"

	"gorm.io/gorm"
)

type Subject struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	CreatedBy   *uint          `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:SubjectID"`
}
