package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionSingle, QuestionMultiple:
		return true
	}
	return false
}

// Question is immutable after creation; use NewQuestion so the answer
// payload is validated against the question type.
type Question struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	QuizID       uint         `json:"quiz_id" gorm:"not null;index"`
	QuestionText string       `json:"question_text" gorm:"not null"`
	QuestionType QuestionType `json:"question_type" gorm:"not null"`

	// CorrectAnswers holds one entry for text/single questions and the
	// full answer set for multiple-choice ones.
	CorrectAnswers StringList `json:"-" gorm:"type:text;not null"`
	Options        StringList `json:"options" gorm:"type:text"`

	Order     int            `json:"order" gorm:"column:position;not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

var (
	errNoCorrectAnswer  = errors.New("question must have a correct answer")
	errBadQuestionShape = errors.New("answer payload does not match question type")
)

func NewQuestion(quizID uint, text string, qType QuestionType, correct, options []string, order int) (*Question, error) {
	if !qType.Valid() {
		return nil, errBadQuestionShape
	}
	if len(correct) == 0 {
		return nil, errNoCorrectAnswer
	}

	switch qType {
	case QuestionText:
		if len(correct) != 1 {
			return nil, errBadQuestionShape
		}
	case QuestionSingle:
		if len(correct) != 1 || len(options) < 2 {
			return nil, errBadQuestionShape
		}
		if !containsAll(options, correct) {
			return nil, errBadQuestionShape
		}
	case QuestionMultiple:
		if len(options) < 2 || !containsAll(options, correct) {
			return nil, errBadQuestionShape
		}
	}

	return &Question{
		QuizID:         quizID,
		QuestionText:   text,
		QuestionType:   qType,
		CorrectAnswers: correct,
		Options:        options,
		Order:          order,
	}, nil
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[h] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}
