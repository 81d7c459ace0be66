package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"eduplatform/models"

	"gorm.io/gorm"
)

// VerificationService manages the email verification code lifecycle:
// 6-digit codes, short expiry, single use, one active code per email.
type VerificationService struct {
	db      *gorm.DB
	sender  EmailSender
	appName string
	ttl     time.Duration
	now     func() time.Time
}

func NewVerificationService(db *gorm.DB, sender EmailSender, appName string, ttl time.Duration) *VerificationService {
	return &VerificationService{
		db:      db,
		sender:  sender,
		appName: appName,
		ttl:     ttl,
		now:     time.Now,
	}
}

// IssueCode generates and emails a fresh code, invalidating every prior
// unused code for the same email.
func (s *VerificationService) IssueCode(user *models.User) error {
	if user.EmailVerified {
		return fmt.Errorf("email already verified: %w", ErrValidation)
	}

	code, err := randomCode()
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND used = ?", user.Email, false).
			Delete(&models.EmailVerificationCode{}).Error; err != nil {
			return err
		}

		record := models.EmailVerificationCode{
			Email:     user.Email,
			Code:      code,
			ExpiresAt: s.now().UTC().Add(s.ttl),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return err
	}

	minutes := int(s.ttl.Minutes())
	subject := fmt.Sprintf("%s email verification code", s.appName)
	text := fmt.Sprintf("Your verification code: %s\n\nThe code is valid for %d minutes.", code, minutes)
	html := fmt.Sprintf(
		"<h2>Email verification</h2><p>Your code: <strong>%s</strong></p><p>Valid for %d minutes. If you did not request this code, ignore this message.</p>",
		code, minutes)

	if err := s.sender.Send(user.Email, subject, text, html); err != nil {
		return fmt.Errorf("send verification email: %v: %w", err, ErrCollaborator)
	}
	return nil
}

// VerifyCode consumes a code and marks the user's email verified.
func (s *VerificationService) VerifyCode(user *models.User, code string) error {
	if len(code) != 6 {
		return fmt.Errorf("invalid code format: %w", ErrValidation)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var record models.EmailVerificationCode
		err := tx.Where("email = ? AND code = ? AND used = ?", user.Email, code, false).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invalid verification code: %w", ErrValidation)
			}
			return err
		}

		if record.Expired(s.now().UTC()) {
			return fmt.Errorf("verification code expired: %w", ErrValidation)
		}

		if err := tx.Model(&record).Update("used", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("email_verified", true).Error
	})
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
