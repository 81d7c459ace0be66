package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-"` // empty for OAuth-only accounts
	FirstName    string `json:"first_name" gorm:"not null"`
	LastName     string `json:"last_name" gorm:"not null"`
	Role         Role   `json:"role" gorm:"not null;default:'student'"`

	Tokens int `json:"tokens" gorm:"not null;default:0"`
	Rating int `json:"rating" gorm:"not null;default:0"`

	TotalQuizzes        int `json:"total_quizzes" gorm:"not null;default:0"`
	TotalCorrectAnswers int `json:"total_correct_answers" gorm:"not null;default:0"`
	TotalAnswers        int `json:"total_answers" gorm:"not null;default:0"`

	Theme         string `json:"theme" gorm:"not null;default:'light'"` // light, dark, base, custom
	CustomThemeID *uint  `json:"custom_theme_id"`

	SelectedExpertID *uint      `json:"selected_expert_id"`
	LastDailyReward  *time.Time `json:"last_daily_reward"`
	EmailVerified    bool       `json:"email_verified" gorm:"not null;default:false"`

	GithubID *string `json:"-" gorm:"uniqueIndex"`
	GoogleID *string `json:"-" gorm:"uniqueIndex"`

	// Self-referential links for family/class structure.
	ParentID  *uint `json:"parent_id" gorm:"index"`
	TeacherID *uint `json:"teacher_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	SelectedExpert *Expert            `json:"selected_expert,omitempty" gorm:"foreignKey:SelectedExpertID"`
	Parent         *User              `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Teacher        *User              `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Lessons        []Lesson           `json:"lessons,omitempty" gorm:"foreignKey:CreatedBy"`
	Achievements   []UserAchievement  `json:"achievements,omitempty" gorm:"foreignKey:UserID"`
	Transactions   []TokenTransaction `json:"transactions,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdministrator
}
