package services

import (
	"errors"
	"fmt"
	"time"

	"eduplatform/models"

	"gorm.io/gorm"
)

type ThemeService struct {
	db     *gorm.DB
	ledger *LedgerService
	policy *RewardPolicy
}

func NewThemeService(db *gorm.DB, ledger *LedgerService, policy *RewardPolicy) *ThemeService {
	return &ThemeService{db: db, ledger: ledger, policy: policy}
}

type CreateThemeRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Price         int    `json:"price"`
	BgPrimary     string `json:"bg_primary"`
	BgSecondary   string `json:"bg_secondary"`
	TextPrimary   string `json:"text_primary"`
	TextSecondary string `json:"text_secondary"`
	Accent        string `json:"accent"`
	AccentHover   string `json:"accent_hover"`
	Border        string `json:"border"`
	Success       string `json:"success"`
	Error         string `json:"error"`
	CardBg        string `json:"card_bg"`
}

// CreateTheme stores a new theme pending admin approval.
func (s *ThemeService) CreateTheme(userID uint, req *CreateThemeRequest) (*models.Theme, error) {
	if !s.policy.ValidThemePrice(req.Price) {
		return nil, fmt.Errorf("theme price must be 0 or between 20 and 300 tokens: %w", ErrValidation)
	}

	theme := models.Theme{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		CreatedBy:     &userID,
		BgPrimary:     req.BgPrimary,
		BgSecondary:   req.BgSecondary,
		TextPrimary:   req.TextPrimary,
		TextSecondary: req.TextSecondary,
		Accent:        req.Accent,
		AccentHover:   req.AccentHover,
		Border:        req.Border,
		Success:       req.Success,
		Error:         req.Error,
		CardBg:        req.CardBg,
		IsActive:      true,
	}
	if err := s.db.Create(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

type MarketEntry struct {
	Theme          models.Theme `json:"theme"`
	IsPurchased    bool         `json:"is_purchased"`
	PurchasesCount int          `json:"purchases_count"`
}

// Market lists approved, active themes with the viewer's ownership flags.
func (s *ThemeService) Market(userID uint) ([]MarketEntry, error) {
	var themes []models.Theme
	err := s.db.Where("is_approved = ? AND is_active = ?", true, true).
		Preload("Purchases").
		Order("created_at DESC").
		Find(&themes).Error
	if err != nil {
		return nil, err
	}

	var purchases []models.ThemePurchase
	if err := s.db.Where("user_id = ?", userID).Find(&purchases).Error; err != nil {
		return nil, err
	}
	owned := make(map[uint]bool, len(purchases))
	for _, p := range purchases {
		owned[p.ThemeID] = true
	}

	entries := make([]MarketEntry, 0, len(themes))
	for _, t := range themes {
		isMine := t.CreatedBy != nil && *t.CreatedBy == userID
		entries = append(entries, MarketEntry{
			Theme:          t,
			IsPurchased:    owned[t.ID] || isMine || t.Price == 0,
			PurchasesCount: len(t.Purchases),
		})
	}
	return entries, nil
}

type PurchaseResult struct {
	Applied    bool `json:"applied"`
	Charged    int  `json:"charged"`
	NewBalance int  `json:"new_balance"`
}

// Purchase buys a theme and applies it. Free themes, own themes and
// repurchases are idempotent applies with no charge; a paid purchase
// debits the buyer, credits the creator 80% and records the purchase,
// all atomically.
func (s *ThemeService) Purchase(userID, themeID uint) (*PurchaseResult, error) {
	var result PurchaseResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var theme models.Theme
		if err := tx.First(&theme, themeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !theme.IsApproved || !theme.IsActive {
			return fmt.Errorf("theme is not available: %w", ErrForbidden)
		}

		isCreator := theme.CreatedBy != nil && *theme.CreatedBy == userID

		var existing int64
		err := tx.Model(&models.ThemePurchase{}).
			Where("theme_id = ? AND user_id = ?", themeID, userID).
			Count(&existing).Error
		if err != nil {
			return err
		}

		if theme.Price == 0 || existing > 0 || isCreator {
			result.Applied = true
			return applyTheme(tx, userID, &theme)
		}

		desc := fmt.Sprintf("Theme purchased: %q", theme.Name)
		if err := s.ledger.Apply(tx, userID, -theme.Price, models.TxThemePurchase, desc); err != nil {
			return err
		}

		creatorShare := s.policy.ThemeSplit(theme.Price)
		if theme.CreatedBy != nil {
			saleDesc := fmt.Sprintf("Theme sold: %q", theme.Name)
			if err := s.ledger.Apply(tx, *theme.CreatedBy, creatorShare, models.TxThemeSale, saleDesc); err != nil {
				return err
			}
		}

		purchase := models.ThemePurchase{
			ThemeID:         themeID,
			UserID:          userID,
			PricePaid:       theme.Price,
			CreatorReceived: creatorShare,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			if isDuplicateKey(err) {
				// Lost a race against our own concurrent purchase.
				return ErrConflict
			}
			return err
		}

		result.Applied = true
		result.Charged = theme.Price
		return applyTheme(tx, userID, &theme)
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

func applyTheme(tx *gorm.DB, userID uint, theme *models.Theme) error {
	return tx.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"theme":           "custom",
			"custom_theme_id": theme.ID,
		}).Error
}

// ApplyBuiltin switches to one of the built-in themes.
func (s *ThemeService) ApplyBuiltin(userID uint, name string) error {
	switch name {
	case "light", "dark", "base":
	default:
		return fmt.Errorf("unknown theme %q: %w", name, ErrValidation)
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"theme":           name,
			"custom_theme_id": nil,
		}).Error
}

// Approve marks a theme sellable. Admin only; the handler gates the role.
func (s *ThemeService) Approve(adminID, themeID uint) error {
	now := time.Now().UTC()
	res := s.db.Model(&models.Theme{}).Where("id = ?", themeID).
		Updates(map[string]interface{}{
			"is_approved": true,
			"approved_by": adminID,
			"approved_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reject deactivates a theme.
func (s *ThemeService) Reject(themeID uint) error {
	res := s.db.Model(&models.Theme{}).Where("id = ?", themeID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Pending lists themes awaiting moderation.
func (s *ThemeService) Pending() ([]models.Theme, error) {
	var themes []models.Theme
	err := s.db.Where("is_approved = ? AND is_active = ?", false, true).
		Order("created_at DESC").
		Find(&themes).Error
	return themes, err
}
