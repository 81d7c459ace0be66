package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eduplatform/models"

	"gorm.io/gorm"
)

type QuizService struct {
	db     *gorm.DB
	ledger *LedgerService
	policy *RewardPolicy
}

func NewQuizService(db *gorm.DB, ledger *LedgerService, policy *RewardPolicy) *QuizService {
	return &QuizService{db: db, ledger: ledger, policy: policy}
}

// AnswerValue accepts either a single string or a list of strings, so one
// payload shape covers text, single and multiple-choice questions.
type AnswerValue struct {
	values []string
	isList bool
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.values = []string{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	v.values = list
	v.isList = true
	return nil
}

func (v AnswerValue) Text() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

func (v AnswerValue) List() []string { return v.values }

func (v AnswerValue) Empty() bool {
	for _, s := range v.values {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func (v AnswerValue) serialize() string {
	if v.isList {
		b, _ := json.Marshal(v.values)
		return string(b)
	}
	return v.Text()
}

type SubmitQuizRequest struct {
	QuizID  uint                   `json:"quiz_id" binding:"required"`
	Answers map[string]AnswerValue `json:"answers"`
	IsRetry bool                   `json:"is_retry"`
}

type QuizResult struct {
	Score          int      `json:"score"`
	Total          int      `json:"total"`
	Percentage     float64  `json:"percentage"`
	IsFirstAttempt bool     `json:"is_first_attempt"`
	TokensEarned   int      `json:"tokens_earned"`
	RatingEarned   int      `json:"rating_earned"`
	NewBalance     int      `json:"new_balance"`
	Achievements   []string `json:"achievements,omitempty"`
}

// gradeText compares trimmed, case-insensitive.
func gradeText(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

// gradeSingle compares trimmed, case-sensitive.
func gradeSingle(submitted, correct string) bool {
	return strings.TrimSpace(submitted) == strings.TrimSpace(correct)
}

// gradeMultiple compares as sets: order-independent, duplicates collapsed.
func gradeMultiple(submitted, correct []string) bool {
	sub := make(map[string]struct{}, len(submitted))
	for _, s := range submitted {
		sub[strings.TrimSpace(s)] = struct{}{}
	}
	cor := make(map[string]struct{}, len(correct))
	for _, s := range correct {
		cor[strings.TrimSpace(s)] = struct{}{}
	}
	if len(sub) != len(cor) {
		return false
	}
	for k := range cor {
		if _, ok := sub[k]; !ok {
			return false
		}
	}
	return true
}

func gradeQuestion(q *models.Question, answer AnswerValue) bool {
	if answer.Empty() {
		return false
	}
	switch q.QuestionType {
	case models.QuestionText:
		return gradeText(answer.Text(), q.CorrectAnswers[0])
	case models.QuestionSingle:
		return gradeSingle(answer.Text(), q.CorrectAnswers[0])
	case models.QuestionMultiple:
		return gradeMultiple(answer.List(), q.CorrectAnswers)
	}
	return false
}

// GetQuiz loads a quiz with its questions in order. Correct answers are
// stripped by the handler serialization, not here.
func (s *QuizService) GetQuiz(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// SubmitQuiz scores a submission, persists the audit trail and settles
// rewards, all in one transaction. Only the first-ever attempt for a
// (user, quiz) pair earns tokens, rating and achievements.
func (s *QuizService) SubmitQuiz(userID uint, req *SubmitQuizRequest) (*QuizResult, error) {
	var result QuizResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		err := tx.Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).First(&quiz, req.QuizID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var priorAttempts int64
		if err := tx.Model(&models.QuizAttempt{}).
			Where("user_id = ? AND quiz_id = ?", userID, req.QuizID).
			Count(&priorAttempts).Error; err != nil {
			return err
		}

		isFirst := priorAttempts == 0 && !req.IsRetry

		// Grade every question; a missing answer is recorded as an empty,
		// incorrect one. UserAnswer rows are append-only history.
		correct := 0
		for i := range quiz.Questions {
			q := &quiz.Questions[i]
			answer := req.Answers[strconv.FormatUint(uint64(q.ID), 10)]
			ok := gradeQuestion(q, answer)
			if ok {
				correct++
			}

			row := models.UserAnswer{
				UserID:     userID,
				QuestionID: q.ID,
				Answer:     answer.serialize(),
				IsCorrect:  ok,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		total := len(quiz.Questions)
		attempt := models.QuizAttempt{
			UserID:         userID,
			QuizID:         req.QuizID,
			LessonID:       quiz.LessonID,
			AttemptNumber:  int(priorAttempts) + 1,
			Score:          correct,
			TotalQuestions: total,
			IsFirstAttempt: isFirst,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			if isDuplicateKey(err) {
				// A concurrent submission for the same quiz won the race.
				return ErrConflict
			}
			return err
		}

		result = QuizResult{
			Score:          correct,
			Total:          total,
			Percentage:     attempt.Percentage(),
			IsFirstAttempt: isFirst,
		}

		if isFirst {
			tokens, rating := s.policy.QuizReward(correct, total, true)
			if tokens > 0 {
				desc := fmt.Sprintf("Quiz reward: %d/%d correct answers", correct, total)
				if err := s.ledger.Apply(tx, userID, tokens, models.TxQuizReward, desc); err != nil {
					return err
				}
			}

			updates := map[string]interface{}{
				"total_quizzes":         gorm.Expr("total_quizzes + 1"),
				"total_answers":         gorm.Expr("total_answers + ?", total),
				"total_correct_answers": gorm.Expr("total_correct_answers + ?", correct),
			}
			if rating > 0 {
				updates["rating"] = gorm.Expr("rating + ?", rating)
			}
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				Updates(updates).Error; err != nil {
				return err
			}

			result.TokensEarned = tokens
			result.RatingEarned = rating

			if s.policy.PerfectQuiz(correct, total) {
				granted, err := grantAchievement(tx, userID, models.ConditionPerfectQuiz)
				if err != nil {
					return err
				}
				if granted != "" {
					result.Achievements = append(result.Achievements, granted)
				}
			}
		}

		refreshed := user
		if err := tx.First(&refreshed, userID).Error; err != nil {
			return err
		}
		result.NewBalance = refreshed.Tokens
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Attempts returns a user's attempt history for a quiz, newest first.
func (s *QuizService) Attempts(userID, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := s.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempt_number DESC").
		Find(&attempts).Error
	return attempts, err
}

// grantAchievement awards the achievement for a condition if the catalog
// has one and the user does not hold it yet. Returns the achievement name
// when newly granted.
func grantAchievement(tx *gorm.DB, userID uint, condition string) (string, error) {
	var achievement models.Achievement
	err := tx.Where("condition = ?", condition).First(&achievement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil // nothing in the catalog for this condition
		}
		return "", err
	}

	var existing int64
	err = tx.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievement.ID).
		Count(&existing).Error
	if err != nil {
		return "", err
	}
	if existing > 0 {
		return "", nil
	}

	grant := models.UserAchievement{UserID: userID, AchievementID: achievement.ID}
	if err := tx.Create(&grant).Error; err != nil {
		if isDuplicateKey(err) {
			return "", nil
		}
		return "", err
	}
	return achievement.Name, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
