package services

import (
	"testing"

	"eduplatform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectLifecycle(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db)
	admin := createUser(t, db, models.RoleAdministrator, 0)

	subject, err := svc.CreateSubject(admin.ID, &SubjectRequest{Name: "Math", Description: "Numbers"})
	require.NoError(t, err)
	require.NotNil(t, subject.CreatedBy)

	require.NoError(t, svc.UpdateSubject(subject.ID, &SubjectRequest{Name: "Mathematics", Description: "Numbers"}))

	subjects, err := svc.Subjects()
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Mathematics", subjects[0].Name)

	require.NoError(t, svc.DeleteSubject(subject.ID))

	subjects, err = svc.Subjects()
	require.NoError(t, err)
	assert.Empty(t, subjects)

	assert.ErrorIs(t, svc.UpdateSubject(9999, &SubjectRequest{Name: "x"}), ErrNotFound)
}

func TestDeleteSubjectWithLessons(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db)
	admin := createUser(t, db, models.RoleAdministrator, 0)

	subject, err := svc.CreateSubject(admin.ID, &SubjectRequest{Name: "Math"})
	require.NoError(t, err)

	lesson := models.Lesson{UUID: "ln-1", Title: "Algebra", SubjectID: subject.ID}
	require.NoError(t, db.Create(&lesson).Error)

	assert.ErrorIs(t, svc.DeleteSubject(subject.ID), ErrConflict)
}

func TestAchievementLifecycle(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db)
	user := createUser(t, db, models.RoleStudent, 0)

	achievement, err := svc.CreateAchievement(&AchievementRequest{
		Name:        "Perfectionist",
		Description: "Answer every question correctly",
		Condition:   models.ConditionPerfectQuiz,
	})
	require.NoError(t, err)
	assert.Equal(t, "🏆", achievement.Icon)

	require.NoError(t, db.Create(&models.UserAchievement{
		UserID:        user.ID,
		AchievementID: achievement.ID,
	}).Error)

	require.NoError(t, svc.DeleteAchievement(achievement.ID))

	// The grant pointing at it went with it.
	var grants int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Count(&grants).Error)
	assert.Zero(t, grants)
}
