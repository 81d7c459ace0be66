package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eduplatform/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxLoginFailures = 10
	loginFailureTTL  = 15 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthService struct {
	db            *gorm.DB
	ledger        *LedgerService
	redis         *redis.Client // optional; nil disables login throttling
	jwtSecret     string
	initialTokens int
}

func NewAuthService(db *gorm.DB, ledger *LedgerService, redisClient *redis.Client, jwtSecret string, initialTokens int) *AuthService {
	return &AuthService{
		db:            db,
		ledger:        ledger,
		redis:         redisClient,
		jwtSecret:     jwtSecret,
		initialTokens: initialTokens,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and credits the starting balance through
// the ledger, so the ledger-sum invariant holds from the first row.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("invalid email format: %w", ErrValidation)
	}
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || len(firstName) > 50 || lastName == "" || len(lastName) > 50 {
		return nil, fmt.Errorf("invalid name: %w", ErrValidation)
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() || role == models.RoleAdministrator {
		return nil, fmt.Errorf("invalid role %q: %w", req.Role, ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("user with this email already exists: %w", ErrValidation)
		}

		user = models.User{
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    firstName,
			LastName:     lastName,
			Role:         role,
			Theme:        "light",
		}
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("user with this email already exists: %w", ErrValidation)
			}
			return err
		}

		return s.ledger.Apply(tx, user.ID, s.initialTokens, models.TxInitial, "Welcome bonus")
	})
	if err != nil {
		return nil, err
	}

	user.Tokens = s.initialTokens
	return &user, nil
}

// Login verifies credentials and issues a JWT. Failed attempts are
// counted per IP in Redis with a TTL so the limit holds across instances.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, clientIP string) (string, *models.User, error) {
	if err := s.checkThrottle(ctx, clientIP); err != nil {
		return "", nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, clientIP)
			return "", nil, ErrUnauthorized
		}
		return "", nil, err
	}

	if user.PasswordHash == "" {
		// OAuth-only account.
		s.recordFailure(ctx, clientIP)
		return "", nil, ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailure(ctx, clientIP)
		return "", nil, ErrUnauthorized
	}

	s.clearFailures(ctx, clientIP)

	token, err := s.IssueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// IssueToken signs a 7-day JWT carrying the user id and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword verifies the old password before setting the new one.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", ErrValidation)
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
			return ErrUnauthorized
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", string(hash)).Error
}

func throttleKey(ip string) string { return "login_failures:" + ip }

func (s *AuthService) checkThrottle(ctx context.Context, ip string) error {
	if s.redis == nil || ip == "" {
		return nil
	}
	count, err := s.redis.Get(ctx, throttleKey(ip)).Int()
	if err != nil && err != redis.Nil {
		return nil // redis down must not block logins
	}
	if count >= maxLoginFailures {
		return ErrThrottled
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, ip string) {
	if s.redis == nil || ip == "" {
		return
	}
	pipe := s.redis.TxPipeline()
	pipe.Incr(ctx, throttleKey(ip))
	pipe.Expire(ctx, throttleKey(ip), loginFailureTTL)
	_, _ = pipe.Exec(ctx)
}

func (s *AuthService) clearFailures(ctx context.Context, ip string) {
	if s.redis == nil || ip == "" {
		return
	}
	_ = s.redis.Del(ctx, throttleKey(ip)).Err()
}
