package services

import (
	"fmt"
	"testing"
	"time"

	"eduplatform/config"
	"eduplatform/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Expert{},
		&models.Subject{},
		&models.Lesson{},
		&models.Quiz{},
		&models.Question{},
		&models.UserAnswer{},
		&models.QuizAttempt{},
		&models.TokenTransaction{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Theme{},
		&models.ThemePurchase{},
		&models.EmailVerificationCode{},
	)
	require.NoError(t, err)
	return db
}

func testEconomy() config.Economy {
	return config.Economy{
		InitialTokens:          100,
		DailyTokens:            20,
		LessonCost:             10,
		CorrectAnswerReward:    2,
		ExpertChatCost:         2,
		RatingPerCorrect:       10,
		PerfectQuizRatingBonus: 50,

		DailyRewardMode:   "interval",
		DailyRewardCutoff: "14:15",
		DailyRewardTZ:     "Europe/Moscow",

		VerificationCodeTTLMinutes: 10,

		ThemeCreatorShare: 0.8,
		ThemeMinPrice:     20,
		ThemeMaxPrice:     300,
	}
}

func testPolicy() *RewardPolicy {
	return NewRewardPolicy(testEconomy())
}

var userSeq int

// createUser inserts a user with the given balance and a matching initial
// ledger entry, so every fixture satisfies the ledger-sum invariant.
func createUser(t *testing.T, db *gorm.DB, role models.Role, tokens int) *models.User {
	t.Helper()

	userSeq++
	user := models.User{
		Email:     fmt.Sprintf("user%d@example.com", userSeq),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", userSeq),
		Role:      role,
		Tokens:    tokens,
		Theme:     "light",
	}
	require.NoError(t, db.Create(&user).Error)

	if tokens != 0 {
		txn := models.TokenTransaction{
			UserID:          user.ID,
			Amount:          tokens,
			TransactionType: models.TxInitial,
			Description:     "Welcome bonus",
		}
		require.NoError(t, db.Create(&txn).Error)
	}
	return &user
}

// createQuiz persists a subject, lesson, quiz and the given questions.
func createQuiz(t *testing.T, db *gorm.DB, questions ...*models.Question) *models.Quiz {
	t.Helper()

	subject := models.Subject{Name: fmt.Sprintf("Subject %d", time.Now().UnixNano())}
	require.NoError(t, db.Create(&subject).Error)

	lesson := models.Lesson{
		UUID:         fmt.Sprintf("lesson-%d", time.Now().UnixNano()),
		Title:        "Test lesson",
		MaterialText: "material",
		SubjectID:    subject.ID,
	}
	require.NoError(t, db.Create(&lesson).Error)

	quiz := models.Quiz{
		UUID:     fmt.Sprintf("quiz-%d", time.Now().UnixNano()),
		LessonID: lesson.ID,
		Title:    "Test quiz",
	}
	require.NoError(t, db.Create(&quiz).Error)

	for i, q := range questions {
		q.QuizID = quiz.ID
		q.Order = i
		require.NoError(t, db.Create(q).Error)
	}
	return &quiz
}

func mustQuestion(t *testing.T, qType models.QuestionType, text string, correct, options []string) *models.Question {
	t.Helper()
	q, err := models.NewQuestion(0, text, qType, correct, options, 0)
	require.NoError(t, err)
	return q
}

func ledgerSum(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var sum int
	err := db.Model(&models.TokenTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	require.NoError(t, err)
	return sum
}

func userBalance(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Tokens
}
