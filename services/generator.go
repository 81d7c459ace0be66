package services

import (
	"context"
	"encoding/json"
	"fmt"

	"eduplatform/models"
)

// Generator produces lesson explanations and quiz questions. The lesson
// pipeline treats any failure, empty result or malformed payload as a
// collaborator failure: nothing is persisted or charged.
type Generator interface {
	Explain(ctx context.Context, material, expertPrompt string) (string, error)
	GenerateQuiz(ctx context.Context, material, explanation, expertPrompt string, numQuestions int) ([]GeneratedQuestion, error)
	Chat(ctx context.Context, message, expertPrompt string) (string, error)
}

type GeneratedQuestion struct {
	QuestionText   string
	QuestionType   models.QuestionType
	Options        []string
	CorrectAnswers []string
}

// UnmarshalJSON tolerates correct_answer arriving as either a string or a
// list, which the generator is prone to mixing.
func (q *GeneratedQuestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		QuestionText  string          `json:"question_text"`
		QuestionType  string          `json:"question_type"`
		Options       []string        `json:"options"`
		CorrectAnswer json.RawMessage `json:"correct_answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	q.QuestionText = raw.QuestionText
	q.QuestionType = models.QuestionType(raw.QuestionType)
	q.Options = raw.Options

	if len(raw.CorrectAnswer) > 0 {
		var s string
		if err := json.Unmarshal(raw.CorrectAnswer, &s); err == nil {
			q.CorrectAnswers = []string{s}
		} else {
			var list []string
			if err := json.Unmarshal(raw.CorrectAnswer, &list); err != nil {
				return fmt.Errorf("correct_answer is neither string nor list: %w", err)
			}
			q.CorrectAnswers = list
		}
	}
	return nil
}

func (q *GeneratedQuestion) validate() error {
	if q.QuestionText == "" {
		return fmt.Errorf("generated question has no text")
	}
	if !q.QuestionType.Valid() {
		return fmt.Errorf("generated question has unknown type %q", q.QuestionType)
	}
	if len(q.CorrectAnswers) == 0 {
		return fmt.Errorf("generated question has no correct answer")
	}
	return nil
}
