package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UUID      string         `json:"uuid" gorm:"uniqueIndex;size:36;not null"`
	LessonID  uint           `json:"lesson_id" gorm:"not null;index"`
	Title     string         `json:"title" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}
