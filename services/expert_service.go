package services

import (
	"context"
	"errors"
	"fmt"

	"eduplatform/models"

	"gorm.io/gorm"
)

// ExpertService covers expert personas: selection, the paid chat, and
// the admin catalog.
type ExpertService struct {
	db        *gorm.DB
	ledger    *LedgerService
	policy    *RewardPolicy
	generator Generator
}

func NewExpertService(db *gorm.DB, ledger *LedgerService, policy *RewardPolicy, generator Generator) *ExpertService {
	return &ExpertService{db: db, ledger: ledger, policy: policy, generator: generator}
}

func (s *ExpertService) List() ([]models.Expert, error) {
	var experts []models.Expert
	err := s.db.Order("id").Find(&experts).Error
	return experts, err
}

// Select sets the user's active expert persona.
func (s *ExpertService) Select(userID, expertID uint) error {
	var expert models.Expert
	if err := s.db.First(&expert, expertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("selected_expert_id", expertID).Error
}

type ChatResult struct {
	Reply      string `json:"reply"`
	Charged    int    `json:"charged"`
	NewBalance int    `json:"new_balance"`
}

// Chat sends a message to the selected expert persona, charging the
// per-message cost first. A generator failure refunds by rollback.
func (s *ExpertService) Chat(ctx context.Context, userID uint, message string) (*ChatResult, error) {
	if message == "" {
		return nil, fmt.Errorf("message is required: %w", ErrValidation)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	prompt := ""
	if user.SelectedExpertID != nil {
		var expert models.Expert
		if err := s.db.First(&expert, *user.SelectedExpertID).Error; err == nil {
			prompt = expert.Prompt
		}
	}

	charge := s.policy.ExpertChatCharge(&user)
	if user.Tokens < charge {
		return nil, fmt.Errorf("expert chat costs %d tokens: %w", charge, ErrInsufficientBalance)
	}

	reply, err := s.generator.Chat(ctx, message, prompt)
	if err != nil {
		return nil, fmt.Errorf("expert chat: %v: %w", err, ErrCollaborator)
	}

	if charge > 0 {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			return s.ledger.Apply(tx, userID, -charge, models.TxExpertChat, "Expert chat message")
		})
		if err != nil {
			return nil, err
		}
	}

	balance, err := s.ledger.Balance(userID)
	if err != nil {
		return nil, err
	}
	return &ChatResult{Reply: reply, Charged: charge, NewBalance: balance}, nil
}

type ExpertRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Prompt      string `json:"prompt" binding:"required"`
	AvatarURL   string `json:"avatar_url"`
}

func (s *ExpertService) Create(adminID uint, req *ExpertRequest) (*models.Expert, error) {
	expert := models.Expert{
		Name:        req.Name,
		Description: req.Description,
		Prompt:      req.Prompt,
		AvatarURL:   req.AvatarURL,
		CreatedBy:   &adminID,
	}
	if err := s.db.Create(&expert).Error; err != nil {
		return nil, err
	}
	return &expert, nil
}

func (s *ExpertService) Delete(expertID uint) error {
	res := s.db.Delete(&models.Expert{}, expertID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
