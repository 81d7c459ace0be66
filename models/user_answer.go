package models

import "time"

// UserAnswer is an append-only audit record; every submission writes one
// row per question, including unanswered ones.
type UserAnswer struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	Answer     string    `json:"answer" gorm:"not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null;default:false"`
	AnsweredAt time.Time `json:"answered_at" gorm:"autoCreateTime"`
}
