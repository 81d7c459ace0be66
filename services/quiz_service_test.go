package services

import (
	"encoding/json"
	"strconv"
	"testing"

	"eduplatform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeText(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		correct   string
		want      bool
	}{
		{name: "exact", submitted: "Paris", correct: "Paris", want: true},
		{name: "case insensitive", submitted: "paris", correct: "Paris", want: true},
		{name: "surrounding whitespace", submitted: "  Paris  ", correct: "Paris", want: true},
		{name: "wrong answer", submitted: "London", correct: "Paris", want: false},
		{name: "empty", submitted: "", correct: "Paris", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gradeText(tt.submitted, tt.correct))
		})
	}
}

func TestGradeSingle(t *testing.T) {
	assert.True(t, gradeSingle("B", "B"))
	assert.True(t, gradeSingle(" B ", "B"))
	assert.False(t, gradeSingle("b", "B"))
	assert.False(t, gradeSingle("A", "B"))
}

func TestGradeMultiple(t *testing.T) {
	tests := []struct {
		name      string
		submitted []string
		correct   []string
		want      bool
	}{
		{name: "exact match", submitted: []string{"a", "b"}, correct: []string{"a", "b"}, want: true},
		{name: "order independent", submitted: []string{"b", "a"}, correct: []string{"a", "b"}, want: true},
		{name: "missing option", submitted: []string{"a"}, correct: []string{"a", "b"}, want: false},
		{name: "extra option", submitted: []string{"a", "b", "c"}, correct: []string{"a", "b"}, want: false},
		{name: "duplicates collapse", submitted: []string{"a", "a", "b"}, correct: []string{"a", "b"}, want: true},
		{name: "empty submission", submitted: nil, correct: []string{"a"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gradeMultiple(tt.submitted, tt.correct))
		})
	}
}

func TestAnswerValueUnmarshal(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		var v AnswerValue
		require.NoError(t, json.Unmarshal([]byte(`"Paris"`), &v))
		assert.Equal(t, "Paris", v.Text())
		assert.False(t, v.Empty())
	})
	t.Run("list", func(t *testing.T) {
		var v AnswerValue
		require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &v))
		assert.Equal(t, []string{"a", "b"}, v.List())
	})
	t.Run("empty string", func(t *testing.T) {
		var v AnswerValue
		require.NoError(t, json.Unmarshal([]byte(`""`), &v))
		assert.True(t, v.Empty())
	})
	t.Run("number rejected", func(t *testing.T) {
		var v AnswerValue
		assert.Error(t, json.Unmarshal([]byte(`42`), &v))
	})
}

func questionKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func textAnswer(s string) AnswerValue {
	return AnswerValue{values: []string{s}}
}

func listAnswer(values ...string) AnswerValue {
	return AnswerValue{values: values, isList: true}
}

func TestSubmitQuizFirstAttempt(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	svc := NewQuizService(db, ledger, testPolicy())

	user := createUser(t, db, models.RoleStudent, 100)
	quiz := createQuiz(t, db,
		mustQuestion(t, models.QuestionText, "Capital of France?", []string{"Paris"}, nil),
		mustQuestion(t, models.QuestionSingle, "2+2?", []string{"4"}, []string{"3", "4", "5"}),
		mustQuestion(t, models.QuestionMultiple, "Even numbers?", []string{"2", "4"}, []string{"1", "2", "3", "4"}),
	)

	var questions []models.Question
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).Order("position").Find(&questions).Error)
	require.Len(t, questions, 3)

	req := &SubmitQuizRequest{
		QuizID: quiz.ID,
		Answers: map[string]AnswerValue{
			questionKey(questions[0].ID): textAnswer("paris"),
			questionKey(questions[1].ID): textAnswer("4"),
			questionKey(questions[2].ID): listAnswer("4", "2"),
		},
	}

	result, err := svc.SubmitQuiz(user.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 3, result.Total)
	assert.True(t, result.IsFirstAttempt)
	assert.Equal(t, 6, result.TokensEarned)
	assert.Equal(t, 80, result.RatingEarned) // 3*10 + 50 perfect bonus
	assert.Equal(t, 106, result.NewBalance)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.Equal(t, 106, refreshed.Tokens)
	assert.Equal(t, 80, refreshed.Rating)
	assert.Equal(t, 1, refreshed.TotalQuizzes)
	assert.Equal(t, 3, refreshed.TotalAnswers)
	assert.Equal(t, 3, refreshed.TotalCorrectAnswers)

	assert.Equal(t, 106, ledgerSum(t, db, user.ID))

	// Audit rows for every question, each stamped when it was recorded.
	var answers []models.UserAnswer
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&answers).Error)
	assert.Len(t, answers, 3)
	for _, ans := range answers {
		assert.False(t, ans.AnsweredAt.IsZero())
	}

	var attempt models.QuizAttempt
	require.NoError(t, db.Where("user_id = ? AND quiz_id = ?", user.ID, quiz.ID).First(&attempt).Error)
	assert.False(t, attempt.CompletedAt.IsZero())
}

func TestSubmitQuizRetryEarnsNothing(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	svc := NewQuizService(db, ledger, testPolicy())

	user := createUser(t, db, models.RoleStudent, 100)
	quiz := createQuiz(t, db,
		mustQuestion(t, models.QuestionText, "Capital of France?", []string{"Paris"}, nil),
	)

	var q models.Question
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).First(&q).Error)

	req := &SubmitQuizRequest{
		QuizID:  quiz.ID,
		Answers: map[string]AnswerValue{questionKey(q.ID): textAnswer("Paris")},
	}

	first, err := svc.SubmitQuiz(user.ID, req)
	require.NoError(t, err)
	assert.True(t, first.IsFirstAttempt)
	assert.Equal(t, 2, first.TokensEarned)

	second, err := svc.SubmitQuiz(user.ID, req)
	require.NoError(t, err)
	assert.False(t, second.IsFirstAttempt)
	assert.Zero(t, second.TokensEarned)
	assert.Zero(t, second.RatingEarned)
	assert.Equal(t, first.NewBalance, second.NewBalance)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.Equal(t, 1, refreshed.TotalQuizzes)

	attempts, err := svc.Attempts(user.ID, quiz.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 2, attempts[0].AttemptNumber)
	assert.Equal(t, 1, attempts[1].AttemptNumber)
}

func TestSubmitQuizExplicitRetryFlag(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	svc := NewQuizService(db, ledger, testPolicy())

	user := createUser(t, db, models.RoleStudent, 100)
	quiz := createQuiz(t, db,
		mustQuestion(t, models.QuestionText, "Capital of France?", []string{"Paris"}, nil),
	)
	var q models.Question
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).First(&q).Error)

	// A submission marked is_retry never earns, even with no prior attempt.
	result, err := svc.SubmitQuiz(user.ID, &SubmitQuizRequest{
		QuizID:  quiz.ID,
		IsRetry: true,
		Answers: map[string]AnswerValue{questionKey(q.ID): textAnswer("Paris")},
	})
	require.NoError(t, err)
	assert.False(t, result.IsFirstAttempt)
	assert.Zero(t, result.TokensEarned)
	assert.Equal(t, 100, userBalance(t, db, user.ID))
}

func TestSubmitQuizPerfectAchievementOnce(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	svc := NewQuizService(db, ledger, testPolicy())

	user := createUser(t, db, models.RoleStudent, 100)
	achievement := models.Achievement{
		Name:        "Perfectionist",
		Description: "Answer every question in a quiz correctly",
		Condition:   models.ConditionPerfectQuiz,
	}
	require.NoError(t, db.Create(&achievement).Error)

	submitPerfect := func(quizID uint) *QuizResult {
		var q models.Question
		require.NoError(t, db.Where("quiz_id = ?", quizID).First(&q).Error)
		result, err := svc.SubmitQuiz(user.ID, &SubmitQuizRequest{
			QuizID:  quizID,
			Answers: map[string]AnswerValue{questionKey(q.ID): textAnswer("Paris")},
		})
		require.NoError(t, err)
		return result
	}

	quiz1 := createQuiz(t, db, mustQuestion(t, models.QuestionText, "Capital of France?", []string{"Paris"}, nil))
	result := submitPerfect(quiz1.ID)
	assert.Equal(t, []string{"Perfectionist"}, result.Achievements)

	// A second perfect quiz does not grant the achievement again.
	quiz2 := createQuiz(t, db, mustQuestion(t, models.QuestionText, "Capital of France?", []string{"Paris"}, nil))
	result = submitPerfect(quiz2.ID)
	assert.Empty(t, result.Achievements)

	var grants []models.UserAchievement
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&grants).Error)
	require.Len(t, grants, 1)
	assert.False(t, grants[0].EarnedAt.IsZero())
}

func TestSubmitQuizMissingAnswers(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	svc := NewQuizService(db, ledger, testPolicy())

	user := createUser(t, db, models.RoleStudent, 100)
	quiz := createQuiz(t, db,
		mustQuestion(t, models.QuestionText, "Capital of France?", []string{"Paris"}, nil),
		mustQuestion(t, models.QuestionText, "Capital of Spain?", []string{"Madrid"}, nil),
	)

	result, err := svc.SubmitQuiz(user.ID, &SubmitQuizRequest{QuizID: quiz.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 2, result.Total)

	// Unanswered questions still get audit rows.
	var answers []models.UserAnswer
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&answers).Error)
	assert.Len(t, answers, 2)
}

func TestSubmitQuizUnknownQuiz(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	svc := NewQuizService(db, ledger, testPolicy())

	user := createUser(t, db, models.RoleStudent, 100)

	_, err := svc.SubmitQuiz(user.ID, &SubmitQuizRequest{QuizID: 9999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetQuizNotFound(t *testing.T) {
	db := testDB(t)
	svc := NewQuizService(db, NewLedgerService(db), testPolicy())

	_, err := svc.GetQuiz(12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
