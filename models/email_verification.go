package models

import "time"

// EmailVerificationCode is a short-lived, single-use code. Issuing a new
// code invalidates all prior unused codes for the same email.
type EmailVerificationCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex:idx_email_code"`
	Code      string    `json:"-" gorm:"size:6;not null;uniqueIndex:idx_email_code"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *EmailVerificationCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
