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
	errTagNotFound = response.NewNotFound("tag not found")
	errTagExists   = response.NewAlreadyExists("tag already exists")
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

type TagRequest struct {
	Name string `json:"name" binding:"required,notblank,max=100"`
}

type ProjectTagRequest struct {
	TagID uint `json:"tagId" binding:"required"`
}

func (s *TagService) List(ctx context.Context, userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *TagService) Create(ctx context.Context, userID uint, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}

	db := s.db.WithContext(ctx)
	if err := s.checkNameFree(db, userID, name, 0); err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: name, UserID: userID}
	if err := db.Create(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errTagExists
		}
		return nil, err
	}
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, userID, tagID uint, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}

	db := s.db.WithContext(ctx)
	tag, err := findOwnedTag(db, userID, tagID)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(db, userID, name, tag.ID); err != nil {
		return nil, err
	}

	if err := db.Model(tag).Update("name", name).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errTagExists
		}
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag and every assignment of it.
func (s *TagService) Delete(ctx context.Context, userID, tagID uint) (*models.Tag, error) {
	var deleted *models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := findOwnedTag(tx, userID, tagID)
		if err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.ProjectTag{}).Error; err != nil {
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

func (s *TagService) checkNameFree(db *gorm.DB, userID uint, name string, exceptID uint) error {
	var count int64
	q := db.Model(&models.Tag{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errTagExists
	}
	return nil
}

// ListForProject returns the tag assignments of one project.
func (s *TagService) ListForProject(ctx context.Context, userID, projectID uint) ([]models.ProjectTag, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedProject(db, userID, projectID); err != nil {
		return nil, err
	}

	var assignments []models.ProjectTag
	err := db.Preload("Tag").Where("project_id = ?", projectID).Order("id ASC").Find(&assignments).Error
	return assignments, err
}

// AddToProject assigns a tag to a project. Assigning an existing pair returns
// the existing row with created=false.
func (s *TagService) AddToProject(ctx context.Context, userID, projectID, tagID uint) (*models.ProjectTag, bool, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedProject(db, userID, projectID); err != nil {
		return nil, false, err
	}
	tag, err := findOwnedTag(db, userID, tagID)
	if err != nil {
		return nil, false, err
	}

	if existing, err := findProjectTag(db, projectID, tagID); err != nil || existing != nil {
		return existing, false, err
	}

	assignment := &models.ProjectTag{ProjectID: projectID, TagID: tagID}
	if err := db.Create(assignment).Error; err != nil {
		if isUniqueViolation(err) {
			existing, ferr := findProjectTag(db, projectID, tagID)
			return existing, false, ferr
		}
		return nil, false, err
	}
	assignment.Tag = tag
	return assignment, true, nil
}

// RemoveFromProject unassigns a tag. Removing an absent pair is not an error.
func (s *TagService) RemoveFromProject(ctx context.Context, userID, projectID, tagID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedProject(db, userID, projectID); err != nil {
		return err
	}
	return db.Where("project_id = ? AND tag_id = ?", projectID, tagID).Delete(&models.ProjectTag{}).Error
}

func findOwnedTag(db *gorm.DB, userID, tagID uint) (*models.Tag, error) {
	var tag models.Tag
	if err := db.Where("id = ? AND user_id = ?", tagID, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func findProjectTag(db *gorm.DB, projectID, tagID uint) (*models.ProjectTag, error) {
	var assignment models.ProjectTag
	err := db.Preload("Tag").Where("project_id = ? AND tag_id = ?", projectID, tagID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}
