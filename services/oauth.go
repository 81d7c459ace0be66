package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"eduplatform/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

// OAuthService handles login-or-register and account linking for the
// supported providers. The token exchange itself is a thin collaborator;
// the service owns the identity invariants (one account per provider id).
type OAuthService struct {
	db      *gorm.DB
	ledger  *LedgerService
	auth    *AuthService
	configs map[string]*oauth2.Config
	initial int
}

func NewOAuthService(db *gorm.DB, ledger *LedgerService, auth *AuthService, githubID, githubSecret, googleID, googleSecret, redirectBase string, initialTokens int) *OAuthService {
	return &OAuthService{
		db:     db,
		ledger: ledger,
		auth:   auth,
		configs: map[string]*oauth2.Config{
			"github": {
				ClientID:     githubID,
				ClientSecret: githubSecret,
				Endpoint:     github.Endpoint,
				RedirectURL:  redirectBase + "/api/auth/oauth/github/callback",
				Scopes:       []string{"user:email"},
			},
			"google": {
				ClientID:     googleID,
				ClientSecret: googleSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  redirectBase + "/api/auth/oauth/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
			},
		},
		initial: initialTokens,
	}
}

// AuthURL returns the provider's consent page URL.
func (s *OAuthService) AuthURL(provider, state string) (string, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return "", fmt.Errorf("unknown provider %q: %w", provider, ErrValidation)
	}
	return cfg.AuthCodeURL(state), nil
}

type providerIdentity struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// LoginOrRegister exchanges the authorization code and signs the user in,
// creating an account on first login.
func (s *OAuthService) LoginOrRegister(ctx context.Context, provider, code string) (string, *models.User, error) {
	identity, err := s.fetchIdentity(ctx, provider, code)
	if err != nil {
		return "", nil, err
	}

	user, err := s.upsertIdentity(provider, *identity)
	if err != nil {
		return "", nil, err
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// upsertIdentity resolves a provider identity to a local account, creating
// one with the welcome bonus on first login.
func (s *OAuthService) upsertIdentity(provider string, identity providerIdentity) (*models.User, error) {
	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Provider id wins; fall back to linking by verified email.
		err := tx.Where(providerColumn(provider)+" = ?", identity.ID).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if identity.Email != "" {
			err = tx.Where("email = ?", strings.ToLower(identity.Email)).First(&user).Error
			if err == nil {
				return tx.Model(&user).Update(providerColumn(provider), identity.ID).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		email := strings.ToLower(identity.Email)
		if email == "" {
			// Some providers withhold the email; keep the unique column
			// populated with a stable placeholder.
			email = fmt.Sprintf("%s_%s@oauth.invalid", provider, identity.ID)
		}

		user = models.User{
			Email:         email,
			FirstName:     firstNonEmpty(identity.FirstName, provider),
			LastName:      firstNonEmpty(identity.LastName, "user"),
			Role:          models.RoleStudent,
			Theme:         "light",
			EmailVerified: identity.Email != "",
		}
		setProviderID(&user, provider, identity.ID)
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := s.ledger.Apply(tx, user.ID, s.initial, models.TxInitial, "Welcome bonus"); err != nil {
			return err
		}
		// Re-read so the login response carries the credited balance.
		return tx.First(&user, user.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Link attaches a provider identity to an existing account. A provider id
// already bound to another account is a conflict.
func (s *OAuthService) Link(ctx context.Context, userID uint, provider, code string) error {
	identity, err := s.fetchIdentity(ctx, provider, code)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.User{}).
			Where(providerColumn(provider)+" = ? AND id <> ?", identity.ID, userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("this %s account is already linked: %w", provider, ErrConflict)
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update(providerColumn(provider), identity.ID).Error
	})
}

func (s *OAuthService) fetchIdentity(ctx context.Context, provider, code string) (*providerIdentity, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q: %w", provider, ErrValidation)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %v: %w", err, ErrCollaborator)
	}

	client := cfg.Client(ctx, token)
	switch provider {
	case "github":
		return fetchGithubIdentity(client)
	case "google":
		return fetchGoogleIdentity(client)
	}
	return nil, fmt.Errorf("unknown provider %q: %w", provider, ErrValidation)
}

func fetchGithubIdentity(client *http.Client) (*providerIdentity, error) {
	var payload struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := fetchJSON(client, "https://api.github.com/user", &payload); err != nil {
		return nil, err
	}

	first, last := splitName(firstNonEmpty(payload.Name, payload.Login))
	return &providerIdentity{
		ID:        strconv.FormatInt(payload.ID, 10),
		Email:     payload.Email,
		FirstName: first,
		LastName:  last,
	}, nil
}

func fetchGoogleIdentity(client *http.Client) (*providerIdentity, error) {
	var payload struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := fetchJSON(client, "https://www.googleapis.com/oauth2/v2/userinfo", &payload); err != nil {
		return nil, err
	}

	return &providerIdentity{
		ID:        payload.ID,
		Email:     payload.Email,
		FirstName: payload.GivenName,
		LastName:  payload.FamilyName,
	}, nil
}

func fetchJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("oauth profile fetch: %v: %w", err, ErrCollaborator)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oauth profile fetch returned %d: %w", resp.StatusCode, ErrCollaborator)
	}
	return json.Unmarshal(data, out)
}

func providerColumn(provider string) string {
	if provider == "google" {
		return "google_id"
	}
	return "github_id"
}

func setProviderID(user *models.User, provider, id string) {
	if provider == "google" {
		user.GoogleID = &id
	} else {
		user.GithubID = &id
	}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "user", "user"
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
