package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eduplatform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonService struct {
	db        *gorm.DB
	ledger    *LedgerService
	policy    *RewardPolicy
	generator Generator
}

func NewLessonService(db *gorm.DB, ledger *LedgerService, policy *RewardPolicy, generator Generator) *LessonService {
	return &LessonService{db: db, ledger: ledger, policy: policy, generator: generator}
}

type CreateLessonRequest struct {
	SubjectID     uint   `json:"subject_id" binding:"required"`
	Title         string `json:"title"`
	MaterialText  string `json:"material_text"`
	MaterialImage string `json:"material_image"`
}

type CreateLessonResult struct {
	LessonID    uint   `json:"lesson_id"`
	LessonUUID  string `json:"lesson_uuid"`
	QuizID      uint   `json:"quiz_id"`
	Explanation string `json:"explanation"`
	TokensSpent int    `json:"tokens_spent"`
	NewBalance  int    `json:"new_balance"`
}

// CreateLesson runs the full pipeline: validate -> verify balance ->
// explain -> generate quiz -> persist lesson, quiz, questions and charge,
// in that order. Collaborator failures abort before anything is written
// or charged.
func (s *LessonService) CreateLesson(ctx context.Context, userID uint, req *CreateLessonRequest) (*CreateLessonResult, error) {
	req.MaterialText = strings.TrimSpace(req.MaterialText)
	req.MaterialImage = strings.TrimSpace(req.MaterialImage)
	if req.MaterialText == "" && req.MaterialImage == "" {
		return nil, fmt.Errorf("lesson material is required: %w", ErrValidation)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var subject models.Subject
	if err := s.db.First(&subject, req.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subject %d: %w", req.SubjectID, ErrNotFound)
		}
		return nil, err
	}

	// Verify the balance before touching the generator so nobody burns a
	// collaborator call they cannot pay for.
	charge := s.policy.LessonCharge(&user)
	if user.Tokens < charge {
		return nil, fmt.Errorf("lesson costs %d tokens, balance is %d: %w", charge, user.Tokens, ErrInsufficientBalance)
	}

	expertPrompt, err := s.expertPrompt(&user)
	if err != nil {
		return nil, err
	}

	material := req.MaterialText
	if material == "" {
		material = "Learning material provided as an image"
	}

	explanation, err := s.generator.Explain(ctx, material, expertPrompt)
	if err != nil {
		return nil, fmt.Errorf("explain: %v: %w", err, ErrCollaborator)
	}

	generated, err := s.generator.GenerateQuiz(ctx, material, explanation, expertPrompt, questionCount(material))
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %v: %w", err, ErrCollaborator)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Lesson: " + subject.Name
	}

	var result CreateLessonResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		lesson := models.Lesson{
			UUID:          uuid.New().String(),
			Title:         title,
			MaterialText:  req.MaterialText,
			MaterialImage: req.MaterialImage,
			Explanation:   explanation,
			SubjectID:     req.SubjectID,
			CreatedBy:     &user.ID,
		}
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}

		quiz := models.Quiz{
			UUID:     uuid.New().String(),
			LessonID: lesson.ID,
			Title:    "Quiz: " + title,
		}
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}

		for idx, g := range generated {
			question, err := models.NewQuestion(quiz.ID, g.QuestionText, g.QuestionType, g.CorrectAnswers, g.Options, idx)
			if err != nil {
				return fmt.Errorf("generated question %d: %v: %w", idx, err, ErrCollaborator)
			}
			if err := tx.Create(question).Error; err != nil {
				return err
			}
		}

		if charge > 0 {
			desc := fmt.Sprintf("Lesson created: %s", title)
			if err := s.ledger.Apply(tx, user.ID, -charge, models.TxLessonCost, desc); err != nil {
				return err
			}
		}

		result = CreateLessonResult{
			LessonID:    lesson.ID,
			LessonUUID:  lesson.UUID,
			QuizID:      quiz.ID,
			Explanation: explanation,
			TokensSpent: charge,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(user.ID)
	if err != nil {
		return nil, err
	}
	result.NewBalance = balance
	return &result, nil
}

func (s *LessonService) expertPrompt(user *models.User) (string, error) {
	if user.SelectedExpertID == nil {
		return "", nil
	}
	var expert models.Expert
	if err := s.db.First(&expert, *user.SelectedExpertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return expert.Prompt, nil
}

// questionCount scales with material size: one question per ~50 words,
// clamped to [5, 15].
func questionCount(material string) int {
	n := len(strings.Fields(material)) / 50
	if n < 5 {
		n = 5
	}
	if n > 15 {
		n = 15
	}
	return n
}

func (s *LessonService) GetLesson(lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.Preload("Quiz").First(&lesson, lessonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

func (s *LessonService) ListBySubject(subjectID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&lessons).Error
	return lessons, err
}
