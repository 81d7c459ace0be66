package models

import (
	"time"

	"gorm.io/gorm"
)

// Achievement conditions checked by the quiz engine.
const (
	ConditionPerfectQuiz = "perfect_quiz"
)

type Achievement struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description" gorm:"not null"`
	Icon        string         `json:"icon"`
	Condition   string         `json:"condition" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserAchievement is awarded at most once per (user, achievement) and
// never revoked.
type UserAchievement struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint      `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	EarnedAt      time.Time `json:"earned_at" gorm:"autoCreateTime"`

	// Relationships
	Achievement Achievement `json:"achievement,omitempty"`
}
