package services

import (
	"fmt"

	"eduplatform/models"

	"gorm.io/gorm"
)

// LedgerService owns all token balance mutations. Every change goes
// through a single guarded UPDATE plus one TokenTransaction row in the
// same transaction, keeping the invariant that a user's balance equals
// the sum of their ledger entries.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Apply mutates the balance by amount (positive or negative) within tx.
// The WHERE clause makes the read-modify-write atomic, so concurrent
// debits cannot drive the balance negative or lose updates.
func (s *LedgerService) Apply(tx *gorm.DB, userID uint, amount int, txType models.TransactionType, description string) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND tokens + ? >= 0", userID, amount).
		Update("tokens", gorm.Expr("tokens + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("ledger apply: user %d: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("ledger apply: user %d needs %d tokens: %w", userID, -amount, ErrInsufficientBalance)
	}

	entry := models.TokenTransaction{
		UserID:          userID,
		Amount:          amount,
		TransactionType: txType,
		Description:     description,
	}
	return tx.Create(&entry).Error
}

// SetBalance sets an absolute balance (admin adjustment). The delta is
// recorded so the ledger keeps summing to the balance.
func (s *LedgerService) SetBalance(tx *gorm.DB, userID uint, newBalance int) error {
	if newBalance < 0 {
		return fmt.Errorf("balance cannot be negative: %w", ErrValidation)
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	delta := newBalance - user.Tokens
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("tokens", newBalance).Error; err != nil {
		return err
	}

	entry := models.TokenTransaction{
		UserID:          userID,
		Amount:          delta,
		TransactionType: models.TxAdminAdjustment,
		Description:     fmt.Sprintf("Admin balance adjustment: %d -> %d", user.Tokens, newBalance),
	}
	return tx.Create(&entry).Error
}

// Balance returns the current token balance.
func (s *LedgerService) Balance(userID uint) (int, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.Tokens, nil
}

// BalanceMatchesLedger audits the core invariant for one user.
func (s *LedgerService) BalanceMatchesLedger(userID uint) (bool, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return false, err
	}

	var sum int64
	err := s.db.Model(&models.TokenTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return false, err
	}
	return int(sum) == user.Tokens, nil
}

// History returns a user's ledger entries, newest first.
func (s *LedgerService) History(userID uint, limit int) ([]models.TokenTransaction, error) {
	var entries []models.TokenTransaction
	q := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}
