package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

var (
	errSlideTagNotFound = response.NewNotFound("slide tag not found")
	errSlideTagExists   = response.NewAlreadyExists("slide tag already exists")
)

// SlideTagService manages the labels attached to individual content blocks.
type SlideTagService struct {
	db *gorm.DB
}

func NewSlideTagService(db *gorm.DB) *SlideTagService {
	return &SlideTagService{db: db}
}

func (s *SlideTagService) List(ctx context.Context, userID uint) ([]models.SlideTag, error) {
	var tags []models.SlideTag
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *SlideTagService) Create(ctx context.Context, userID uint, name string) (*models.SlideTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}

	db := s.db.WithContext(ctx)
	if err := s.checkNameFree(db, userID, name, 0); err != nil {
		return nil, err
	}

	tag := &models.SlideTag{Name: name, UserID: userID}
	if err := db.Create(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errSlideTagExists
		}
		return nil, err
	}
	return tag, nil
}

func (s *SlideTagService) Update(ctx context.Context, userID, tagID uint, name string) (*models.SlideTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}

	db := s.db.WithContext(ctx)
	tag, err := findOwnedSlideTag(db, userID, tagID)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(db, userID, name, tag.ID); err != nil {
		return nil, err
	}
	if err := db.Model(tag).Update("name", name).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errSlideTagExists
		}
		return nil, err
	}
	return tag, nil
}

// Delete removes a slide tag and clears it from every block carrying it.
func (s *SlideTagService) Delete(ctx context.Context, userID, tagID uint) (*models.SlideTag, error) {
	var deleted *models.SlideTag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := findOwnedSlideTag(tx, userID, tagID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.ContentBlock{}).Where("slide_tag_id = ?", tag.ID).
			Update("slide_tag_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(tag).Error; err != nil {
			return err
		}
		deleted = tag
		return nil
	})
	return deleted, err
}

func (s *SlideTagService) checkNameFree(db *gorm.DB, userID uint, name string, exceptID uint) error {
	var count int64
	q := db.Model(&models.SlideTag{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errSlideTagExists
	}
	return nil
}

func findOwnedSlideTag(db *gorm.DB, userID, tagID uint) (*models.SlideTag, error) {
	var tag models.SlideTag
	if err := db.Where("id = ? AND user_id = ?", tagID, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSlideTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}
