package services

import (
	"fmt"

	"eduplatform/models"

	"gorm.io/gorm"
)

// CatalogService manages the admin-maintained catalogs: subjects and
// achievements.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) Subjects() ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.db.Order("name").Find(&subjects).Error
	return subjects, err
}

type SubjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *CatalogService) CreateSubject(adminID uint, req *SubjectRequest) (*models.Subject, error) {
	subject := models.Subject{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   &adminID,
	}
	if err := s.db.Create(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *CatalogService) UpdateSubject(subjectID uint, req *SubjectRequest) error {
	res := s.db.Model(&models.Subject{}).Where("id = ?", subjectID).
		Updates(map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogService) DeleteSubject(subjectID uint) error {
	var lessons int64
	if err := s.db.Model(&models.Lesson{}).Where("subject_id = ?", subjectID).
		Count(&lessons).Error; err != nil {
		return err
	}
	if lessons > 0 {
		return fmt.Errorf("subject has lessons and cannot be deleted: %w", ErrConflict)
	}

	res := s.db.Delete(&models.Subject{}, subjectID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type AchievementRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Condition   string `json:"condition" binding:"required"`
	Icon        string `json:"icon"`
}

func (s *CatalogService) CreateAchievement(req *AchievementRequest) (*models.Achievement, error) {
	icon := req.Icon
	if icon == "" {
		icon = "🏆"
	}
	achievement := models.Achievement{
		Name:        req.Name,
		Description: req.Description,
		Condition:   req.Condition,
		Icon:        icon,
	}
	if err := s.db.Create(&achievement).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

// DeleteAchievement removes a catalog entry and the grants that point at
// it.
func (s *CatalogService) DeleteAchievement(achievementID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("achievement_id = ?", achievementID).
			Delete(&models.UserAchievement{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Achievement{}, achievementID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
