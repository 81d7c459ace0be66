package models

import (
	"time"

	"gorm.io/gorm"
)

// Theme is a user-created color theme sold on the marketplace. Price is
// either 0 (free) or within the configured bounds; themes require admin
// approval before they can be purchased.
type Theme struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	Price       int    `json:"price" gorm:"not null;default:0"`
	CreatedBy   *uint  `json:"created_by" gorm:"index"`

	BgPrimary     string `json:"bg_primary" gorm:"default:'#ffffff'"`
	BgSecondary   string `json:"bg_secondary" gorm:"default:'#f5f5f5'"`
	TextPrimary   string `json:"text_primary" gorm:"default:'#1a1a1a'"`
	TextSecondary string `json:"text_secondary" gorm:"default:'#666666'"`
	Accent        string `json:"accent" gorm:"default:'#007bff'"`
	AccentHover   string `json:"accent_hover" gorm:"default:'#0056b3'"`
	Border        string `json:"border" gorm:"default:'#dddddd'"`
	Success       string `json:"success" gorm:"default:'#28a745'"`
	Error         string `json:"error" gorm:"default:'#dc3545'"`
	CardBg        string `json:"card_bg" gorm:"default:'#ffffff'"`

	IsApproved bool       `json:"is_approved" gorm:"not null;default:false"`
	IsActive   bool       `json:"is_active" gorm:"not null;default:true"`
	ApprovedBy *uint      `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Purchases []ThemePurchase `json:"purchases,omitempty" gorm:"foreignKey:ThemeID"`
}

// ThemePurchase exists at most once per (user, theme); repurchases are
// idempotent applies with no charge.
type ThemePurchase struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ThemeID         uint      `json:"theme_id" gorm:"not null;uniqueIndex:idx_user_theme"`
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_theme"`
	PricePaid       int       `json:"price_paid" gorm:"not null"`
	CreatorReceived int       `json:"creator_received" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
}
