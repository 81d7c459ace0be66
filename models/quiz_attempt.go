package models

import "time"

// QuizAttempt records one full submission of a quiz by a user. The unique
// index on (user_id, quiz_id, attempt_number) serializes concurrent
// submissions: two racing first attempts compute the same number and one
// of them fails the insert.
type QuizAttempt struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_quiz_attempt"`
	QuizID         uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_user_quiz_attempt"`
	LessonID       uint      `json:"lesson_id" gorm:"not null;index"`
	AttemptNumber  int       `json:"attempt_number" gorm:"not null;uniqueIndex:idx_user_quiz_attempt"`
	Score          int       `json:"score" gorm:"not null;default:0"`
	TotalQuestions int       `json:"total_questions" gorm:"not null;default:0"`
	IsFirstAttempt bool      `json:"is_first_attempt" gorm:"not null;default:false"`
	CompletedAt    time.Time `json:"completed_at" gorm:"autoCreateTime"`
}

// Percentage reports the score as 0-100; a quiz with no questions scores 0.
func (a *QuizAttempt) Percentage() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.Score) * 100 / float64(a.TotalQuestions)
}
