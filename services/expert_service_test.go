package services

import (
	"context"
	"errors"
	"testing"

	"eduplatform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpertChatChargesAfterReply(t *testing.T) {
	db := testDB(t)
	gen := &fakeGenerator{chatReply: "Bonjour"}
	svc := NewExpertService(db, NewLedgerService(db), testPolicy(), gen)

	user := createUser(t, db, models.RoleStudent, 10)

	result, err := svc.Chat(context.Background(), user.ID, "How do I say hello in French?")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", result.Reply)
	assert.Equal(t, 2, result.Charged)
	assert.Equal(t, 8, result.NewBalance)
	assert.Equal(t, 8, ledgerSum(t, db, user.ID))
}

func TestExpertChatInsufficientBalance(t *testing.T) {
	db := testDB(t)
	gen := &fakeGenerator{chatReply: "unused"}
	svc := NewExpertService(db, NewLedgerService(db), testPolicy(), gen)

	user := createUser(t, db, models.RoleStudent, 1)

	_, err := svc.Chat(context.Background(), user.ID, "hello")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Zero(t, gen.chatCalls)
	assert.Equal(t, 1, userBalance(t, db, user.ID))
}

func TestExpertChatGeneratorFailureNoCharge(t *testing.T) {
	db := testDB(t)
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc := NewExpertService(db, NewLedgerService(db), testPolicy(), gen)

	user := createUser(t, db, models.RoleStudent, 10)

	_, err := svc.Chat(context.Background(), user.ID, "hello")
	assert.ErrorIs(t, err, ErrCollaborator)
	assert.Equal(t, 10, userBalance(t, db, user.ID))
}

func TestExpertChatAdminFree(t *testing.T) {
	db := testDB(t)
	gen := &fakeGenerator{chatReply: "hi"}
	svc := NewExpertService(db, NewLedgerService(db), testPolicy(), gen)

	admin := createUser(t, db, models.RoleAdministrator, 0)

	result, err := svc.Chat(context.Background(), admin.ID, "hello")
	require.NoError(t, err)
	assert.Zero(t, result.Charged)
	assert.Zero(t, userBalance(t, db, admin.ID))
}

func TestExpertChatUsesSelectedPrompt(t *testing.T) {
	db := testDB(t)
	gen := &fakeGenerator{chatReply: "answer"}
	svc := NewExpertService(db, NewLedgerService(db), testPolicy(), gen)

	admin := createUser(t, db, models.RoleAdministrator, 0)
	user := createUser(t, db, models.RoleStudent, 10)

	expert, err := svc.Create(admin.ID, &ExpertRequest{
		Name:        "Marie",
		Description: "French tutor",
		Prompt:      "You are a French tutor.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Select(user.ID, expert.ID))
	assert.ErrorIs(t, svc.Select(user.ID, 9999), ErrNotFound)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	require.NotNil(t, refreshed.SelectedExpertID)
	assert.Equal(t, expert.ID, *refreshed.SelectedExpertID)

	_, err = svc.Chat(context.Background(), user.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.chatCalls)
}

func TestExpertValidation(t *testing.T) {
	db := testDB(t)
	svc := NewExpertService(db, NewLedgerService(db), testPolicy(), &fakeGenerator{})
	user := createUser(t, db, models.RoleStudent, 10)

	_, err := svc.Chat(context.Background(), user.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, svc.Delete(9999), ErrNotFound)
}
