package models

import (
	"time"

	"gorm.io/gorm"
)

type Lesson struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UUID          string         `json:"uuid" gorm:"uniqueIndex;size:36;not null"`
	Title         string         `json:"title" gorm:"not null"`
	MaterialText  string         `json:"material_text"`
	MaterialImage string         `json:"material_image"`
	Explanation   string         `json:"explanation"`
	SubjectID     uint           `json:"subject_id" gorm:"not null;index"`
	CreatedBy     *uint          `json:"created_by" gorm:"index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Subject Subject `json:"subject,omitempty"`
	Quiz    *Quiz   `json:"quiz,omitempty" gorm:"foreignKey:LessonID"`
}
