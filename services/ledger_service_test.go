package services

import (
	"testing"

	"eduplatform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerApply(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	user := createUser(t, db, models.RoleStudent, 100)

	require.NoError(t, ledger.Apply(db, user.ID, -30, models.TxLessonCost, "Lesson created"))
	require.NoError(t, ledger.Apply(db, user.ID, 20, models.TxDaily, "Daily reward"))

	assert.Equal(t, 90, userBalance(t, db, user.ID))
	assert.Equal(t, 90, ledgerSum(t, db, user.ID))

	ok, err := ledger.BalanceMatchesLedger(user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLedgerApplyInsufficientBalance(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	user := createUser(t, db, models.RoleStudent, 10)

	err := ledger.Apply(db, user.ID, -11, models.TxLessonCost, "Lesson created")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing changed and no entry was written.
	assert.Equal(t, 10, userBalance(t, db, user.ID))
	assert.Equal(t, 10, ledgerSum(t, db, user.ID))
}

func TestLedgerApplyExactBalance(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	user := createUser(t, db, models.RoleStudent, 10)

	require.NoError(t, ledger.Apply(db, user.ID, -10, models.TxExpertChat, "Expert chat"))
	assert.Equal(t, 0, userBalance(t, db, user.ID))
}

func TestLedgerApplyUnknownUser(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)

	err := ledger.Apply(db, 9999, -5, models.TxLessonCost, "Lesson created")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerSetBalance(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	user := createUser(t, db, models.RoleStudent, 100)

	require.NoError(t, ledger.SetBalance(db, user.ID, 250))
	assert.Equal(t, 250, userBalance(t, db, user.ID))
	assert.Equal(t, 250, ledgerSum(t, db, user.ID))

	// Lowering works too; the adjustment entry carries the delta.
	require.NoError(t, ledger.SetBalance(db, user.ID, 40))
	assert.Equal(t, 40, userBalance(t, db, user.ID))
	assert.Equal(t, 40, ledgerSum(t, db, user.ID))

	history, err := ledger.History(user.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, models.TxAdminAdjustment, history[0].TransactionType)
	assert.Equal(t, -210, history[0].Amount)
}

func TestLedgerHistoryOrderAndLimit(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)
	user := createUser(t, db, models.RoleStudent, 100)

	require.NoError(t, ledger.Apply(db, user.ID, 20, models.TxDaily, "Daily reward"))
	require.NoError(t, ledger.Apply(db, user.ID, -10, models.TxLessonCost, "Lesson created"))

	history, err := ledger.History(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, -10, history[0].Amount)
	assert.Equal(t, 20, history[1].Amount)
}
