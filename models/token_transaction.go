package models

import "time"

type TransactionType string

const (
	TxInitial         TransactionType = "initial"
	TxDaily           TransactionType = "daily"
	TxLessonCost      TransactionType = "lesson_cost"
	TxQuizReward      TransactionType = "quiz_reward"
	TxExpertChat      TransactionType = "expert_chat"
	TxThemePurchase   TransactionType = "theme_purchase"
	TxThemeSale       TransactionType = "theme_sale"
	TxAdminAdjustment TransactionType = "admin_adjustment"
)

// TokenTransaction is an append-only ledger entry. The sum of a user's
// amounts must always equal the user's current token balance.
type TokenTransaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	Amount          int             `json:"amount" gorm:"not null"`
	TransactionType TransactionType `json:"transaction_type" gorm:"not null"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}
