package services

import (
	"context"
	"testing"

	"eduplatform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardRanksStudents(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, NewLedgerService(db), nil)

	low := createUser(t, db, models.RoleStudent, 0)
	high := createUser(t, db, models.RoleStudent, 0)
	teacher := createUser(t, db, models.RoleTeacher, 0)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", low.ID).
		Updates(map[string]interface{}{"rating": 50, "total_correct_answers": 5}).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", high.ID).
		Updates(map[string]interface{}{"rating": 200, "total_correct_answers": 20}).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", teacher.ID).
		Update("rating", 999).Error)

	entries, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2) // teachers never rank
	assert.Equal(t, high.ID, entries[0].UserID)
	assert.Equal(t, low.ID, entries[1].UserID)

	limited, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLinkChildAndChildren(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, NewLedgerService(db), nil)

	parent := createUser(t, db, models.RoleParent, 0)
	teacher := createUser(t, db, models.RoleTeacher, 0)
	child := createUser(t, db, models.RoleStudent, 0)

	require.NoError(t, svc.LinkChild(parent.ID, child.ID, false))
	require.NoError(t, svc.LinkChild(teacher.ID, child.ID, true))

	kids, err := svc.Children(parent.ID, false)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, child.ID, kids[0].ID)

	pupils, err := svc.Children(teacher.ID, true)
	require.NoError(t, err)
	assert.Len(t, pupils, 1)

	// Only students can be linked.
	other := createUser(t, db, models.RoleTeacher, 0)
	assert.ErrorIs(t, svc.LinkChild(parent.ID, other.ID, false), ErrValidation)
	assert.ErrorIs(t, svc.LinkChild(parent.ID, 9999, false), ErrNotFound)
}

func TestChildProgress(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, NewLedgerService(db), nil)
	quizzes := NewQuizService(db, NewLedgerService(db), testPolicy())

	parent := createUser(t, db, models.RoleParent, 0)
	child := createUser(t, db, models.RoleStudent, 100)
	require.NoError(t, svc.LinkChild(parent.ID, child.ID, false))

	quiz := createQuiz(t, db,
		mustQuestion(t, models.QuestionText, "Capital of France?", []string{"Paris"}, nil),
	)
	var q models.Question
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).First(&q).Error)
	_, err := quizzes.SubmitQuiz(child.ID, &SubmitQuizRequest{
		QuizID:  quiz.ID,
		Answers: map[string]AnswerValue{questionKey(q.ID): textAnswer("Paris")},
	})
	require.NoError(t, err)

	progress, err := svc.Progress(parent.ID, child.ID, false)
	require.NoError(t, err)
	assert.Equal(t, child.ID, progress.Child.ID)
	assert.Equal(t, 1, progress.Child.TotalQuizzes)
	assert.Equal(t, 1, progress.Child.TotalCorrectAnswers)
	require.Len(t, progress.Attempts, 1)
	assert.Equal(t, 1, progress.Attempts[0].Score)

	// An unlinked adult cannot view the student, and a teacher link is
	// checked separately from the parent link.
	stranger := createUser(t, db, models.RoleParent, 0)
	_, err = svc.Progress(stranger.ID, child.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Progress(parent.ID, child.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Progress(parent.ID, 9999, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetBalanceGoesThroughLedger(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, NewLedgerService(db), nil)
	user := createUser(t, db, models.RoleStudent, 100)

	balance, err := svc.SetBalance(user.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, balance)
	assert.Equal(t, 500, userBalance(t, db, user.ID))
	assert.Equal(t, 500, ledgerSum(t, db, user.ID))

	_, err = svc.SetBalance(9999, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetRole(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, NewLedgerService(db), nil)

	admin := createUser(t, db, models.RoleAdministrator, 0)
	user := createUser(t, db, models.RoleStudent, 0)

	require.NoError(t, svc.SetRole(admin.ID, user.ID, models.RoleTeacher))

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.Equal(t, models.RoleTeacher, refreshed.Role)

	// An admin cannot demote themselves.
	assert.ErrorIs(t, svc.SetRole(admin.ID, admin.ID, models.RoleStudent), ErrValidation)
	assert.ErrorIs(t, svc.SetRole(admin.ID, user.ID, "wizard"), ErrValidation)
	assert.ErrorIs(t, svc.SetRole(admin.ID, 9999, models.RoleStudent), ErrNotFound)
}

func TestDeleteUserKeepsAuthoredContent(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	svc := NewUserService(db, ledger, nil)

	admin := createUser(t, db, models.RoleAdministrator, 0)
	user := createUser(t, db, models.RoleStudent, 100)
	child := createUser(t, db, models.RoleStudent, 0)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", child.ID).
		Update("parent_id", user.ID).Error)

	lesson := models.Lesson{UUID: "ln-1", Title: "Mine", SubjectID: 1, CreatedBy: &user.ID}
	require.NoError(t, db.Create(&lesson).Error)
	theme := models.Theme{Name: "Mine", CreatedBy: &user.ID}
	require.NoError(t, db.Create(&theme).Error)
	attempt := models.QuizAttempt{UserID: user.ID, QuizID: 1, LessonID: 1, AttemptNumber: 1}
	require.NoError(t, db.Create(&attempt).Error)

	require.NoError(t, svc.DeleteUser(admin.ID, user.ID))

	var gone models.User
	err := db.First(&gone, user.ID).Error
	assert.Error(t, err)

	// Authored content survives with no owner.
	var keptLesson models.Lesson
	require.NoError(t, db.First(&keptLesson, lesson.ID).Error)
	assert.Nil(t, keptLesson.CreatedBy)
	var keptTheme models.Theme
	require.NoError(t, db.First(&keptTheme, theme.ID).Error)
	assert.Nil(t, keptTheme.CreatedBy)

	// Personal records are gone, dependents unlinked.
	var attempts int64
	require.NoError(t, db.Model(&models.QuizAttempt{}).Where("user_id = ?", user.ID).Count(&attempts).Error)
	assert.Zero(t, attempts)
	assert.Zero(t, ledgerSum(t, db, user.ID))

	var orphan models.User
	require.NoError(t, db.First(&orphan, child.ID).Error)
	assert.Nil(t, orphan.ParentID)
}

func TestDeleteUserGuards(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, NewLedgerService(db), nil)
	admin := createUser(t, db, models.RoleAdministrator, 0)

	assert.ErrorIs(t, svc.DeleteUser(admin.ID, admin.ID), ErrValidation)
	assert.ErrorIs(t, svc.DeleteUser(admin.ID, 9999), ErrNotFound)
}

func TestAchievementsCatalogAndEarned(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, NewLedgerService(db), nil)
	user := createUser(t, db, models.RoleStudent, 0)

	achievement := models.Achievement{Name: "Perfectionist", Description: "d", Condition: models.ConditionPerfectQuiz}
	require.NoError(t, db.Create(&achievement).Error)
	require.NoError(t, db.Create(&models.UserAchievement{UserID: user.ID, AchievementID: achievement.ID}).Error)

	catalog, earned, err := svc.Achievements(user.ID)
	require.NoError(t, err)
	assert.Len(t, catalog, 1)
	require.Len(t, earned, 1)
	assert.Equal(t, achievement.ID, earned[0].AchievementID)
}
