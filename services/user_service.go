package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eduplatform/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	leaderboardKey = "leaderboard:students"
	leaderboardTTL = time.Minute
)

// UserService covers profiles, the leaderboard, parent/teacher links and
// the administrative user operations.
type UserService struct {
	db     *gorm.DB
	ledger *LedgerService
	redis  *redis.Client // optional; nil disables leaderboard caching
}

func NewUserService(db *gorm.DB, ledger *LedgerService, redisClient *redis.Client) *UserService {
	return &UserService{db: db, ledger: ledger, redis: redisClient}
}

type LeaderboardEntry struct {
	UserID         uint   `json:"user_id"`
	Name           string `json:"name"`
	Rating         int    `json:"rating"`
	TotalQuizzes   int    `json:"total_quizzes"`
	CorrectAnswers int    `json:"correct_answers"`
}

// Leaderboard ranks students by rating, ties broken by correct answers.
// The result is cached in Redis for a minute.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, leaderboardKey).Bytes(); err == nil {
			var cached []LeaderboardEntry
			if json.Unmarshal(data, &cached) == nil {
				return clampEntries(cached, limit), nil
			}
		}
	}

	var users []models.User
	err := s.db.Where("role = ?", models.RoleStudent).
		Order("rating DESC, total_correct_answers DESC").
		Limit(200).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:         u.ID,
			Name:           u.FullName(),
			Rating:         u.Rating,
			TotalQuizzes:   u.TotalQuizzes,
			CorrectAnswers: u.TotalCorrectAnswers,
		})
	}

	if s.redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			_ = s.redis.Set(ctx, leaderboardKey, data, leaderboardTTL).Err()
		}
	}
	return clampEntries(entries, limit), nil
}

func clampEntries(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// Children returns the students linked to a parent or teacher.
func (s *UserService) Children(linkedTo uint, asTeacher bool) ([]models.User, error) {
	column := "parent_id"
	if asTeacher {
		column = "teacher_id"
	}
	var children []models.User
	err := s.db.Where(column+" = ?", linkedTo).Find(&children).Error
	return children, err
}

// LinkChild attaches a student to a parent or teacher account.
func (s *UserService) LinkChild(linkedTo, childID uint, asTeacher bool) error {
	var child models.User
	if err := s.db.First(&child, childID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if child.Role != models.RoleStudent {
		return fmt.Errorf("only students can be linked: %w", ErrValidation)
	}

	column := "parent_id"
	if asTeacher {
		column = "teacher_id"
	}
	return s.db.Model(&models.User{}).Where("id = ?", childID).
		Update(column, linkedTo).Error
}

type ChildProgress struct {
	Child    models.User          `json:"child"`
	Attempts []models.QuizAttempt `json:"attempts"`
}

// Progress returns a linked child's counters and quiz attempt history.
// Viewing an unlinked student is forbidden.
func (s *UserService) Progress(linkedTo, childID uint, asTeacher bool) (*ChildProgress, error) {
	var child models.User
	if err := s.db.First(&child, childID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	linked := child.ParentID
	if asTeacher {
		linked = child.TeacherID
	}
	if linked == nil || *linked != linkedTo {
		return nil, fmt.Errorf("student is not linked to this account: %w", ErrForbidden)
	}

	var attempts []models.QuizAttempt
	err := s.db.Where("user_id = ?", childID).
		Order("completed_at DESC, id DESC").
		Limit(100).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return &ChildProgress{Child: child, Attempts: attempts}, nil
}

// SetBalance is the admin absolute balance adjustment.
func (s *UserService) SetBalance(userID uint, newBalance int) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.ledger.SetBalance(tx, userID, newBalance)
	})
	if err != nil {
		return 0, err
	}
	if s.redis != nil {
		_ = s.redis.Del(context.Background(), leaderboardKey).Err()
	}
	return newBalance, nil
}

// SetRole changes a user's role. Administrators cannot demote themselves.
func (s *UserService) SetRole(adminID, userID uint, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q: %w", role, ErrValidation)
	}
	if adminID == userID && role != models.RoleAdministrator {
		return fmt.Errorf("cannot change your own role from administrator: %w", ErrValidation)
	}

	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes an account and its personal records. Content the
// user authored (subjects, experts, lessons, themes) is kept with
// created_by nulled out.
func (s *UserService) DeleteUser(adminID, userID uint) error {
	if adminID == userID {
		return fmt.Errorf("cannot delete yourself: %w", ErrValidation)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Personal records go away with the account.
		for _, m := range []interface{}{
			&models.UserAnswer{},
			&models.QuizAttempt{},
			&models.UserAchievement{},
			&models.TokenTransaction{},
			&models.ThemePurchase{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}

		// Authored content survives without an owner.
		for _, m := range []interface{}{
			&models.Subject{},
			&models.Expert{},
			&models.Lesson{},
			&models.Theme{},
		} {
			if err := tx.Model(m).Where("created_by = ?", userID).
				Update("created_by", nil).Error; err != nil {
				return err
			}
		}

		// Unlink dependents.
		if err := tx.Model(&models.User{}).Where("parent_id = ?", userID).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("teacher_id = ?", userID).
			Update("teacher_id", nil).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&user).Error
	})
}

// ListUsers returns all accounts for the admin screen.
func (s *UserService) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("created_at").Find(&users).Error
	return users, err
}

// Achievements returns the catalog together with the user's earned set.
func (s *UserService) Achievements(userID uint) ([]models.Achievement, []models.UserAchievement, error) {
	var catalog []models.Achievement
	if err := s.db.Order("id").Find(&catalog).Error; err != nil {
		return nil, nil, err
	}

	var earned []models.UserAchievement
	if err := s.db.Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		return nil, nil, err
	}
	return catalog, earned, nil
}
