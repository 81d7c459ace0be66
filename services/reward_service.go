package services

import (
	"fmt"
	"time"

	"eduplatform/models"

	"gorm.io/gorm"
)

// RewardService settles daily reward claims decided by the policy.
type RewardService struct {
	db     *gorm.DB
	ledger *LedgerService
	policy *RewardPolicy
}

func NewRewardService(db *gorm.DB, ledger *LedgerService, policy *RewardPolicy) *RewardService {
	return &RewardService{db: db, ledger: ledger, policy: policy}
}

type DailyClaimResult struct {
	Tokens        int        `json:"tokens_granted"`
	NewBalance    int        `json:"new_balance"`
	NextAvailable *time.Time `json:"next_available,omitempty"`
}

// ClaimDaily grants the daily reward if the policy allows it. The claim
// UPDATE is guarded by the policy's boundary instant so two concurrent
// claims cannot both succeed.
func (s *RewardService) ClaimDaily(userID uint) (*DailyClaimResult, error) {
	var result DailyClaimResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}

		decision := s.policy.DailyReward(&user)
		if !decision.Eligible {
			if !decision.NextAvailable.IsZero() {
				next := decision.NextAvailable
				result.NextAvailable = &next
			}
			return fmt.Errorf("%s: %w", decision.Reason, ErrCooldown)
		}

		now := s.policy.now().UTC()
		res := tx.Model(&models.User{}).
			Where("id = ? AND (last_daily_reward IS NULL OR last_daily_reward <= ?)", userID, decision.Boundary).
			Update("last_daily_reward", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent claim beat us to it.
			return fmt.Errorf("daily reward already claimed: %w", ErrCooldown)
		}

		if err := s.ledger.Apply(tx, userID, decision.Tokens, models.TxDaily, "Daily reward"); err != nil {
			return err
		}
		result.Tokens = decision.Tokens
		return nil
	})
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(userID)
	if err != nil {
		return nil, err
	}
	result.NewBalance = balance
	return &result, nil
}

type DailyStatus struct {
	CanClaim      bool       `json:"can_claim"`
	Tokens        int        `json:"tokens,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	NextAvailable *time.Time `json:"next_available,omitempty"`
	LastClaimed   *time.Time `json:"last_claimed,omitempty"`
}

// Status reports eligibility without claiming.
func (s *RewardService) Status(userID uint) (*DailyStatus, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	decision := s.policy.DailyReward(&user)
	status := &DailyStatus{
		CanClaim:    decision.Eligible,
		Tokens:      decision.Tokens,
		Reason:      decision.Reason,
		LastClaimed: user.LastDailyReward,
	}
	if !decision.NextAvailable.IsZero() {
		next := decision.NextAvailable
		status.NextAvailable = &next
	}
	return status, nil
}
