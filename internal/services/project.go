package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/metrics"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	cache PortfolioCache
}

func NewProjectService(db *gorm.DB, cache PortfolioCache) *ProjectService {
	if cache == nil {
		cache = NoopPortfolioCache{}
	}
	return &ProjectService{db: db, cache: cache}
}

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,notblank,max=200"`
	Description *string `json:"description"`
	Client      *string `json:"client" binding:"omitempty,max=200"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
	Client      *string `json:"client" binding:"omitempty,max=200"`
}

type ReorderProjectsRequest struct {
	Projects []uint `json:"projects" binding:"required,min=1"`
}

type CreateContentRequest struct {
	LanguageID uint `json:"languageId" binding:"required"`
}

// List returns the caller's projects in their display order.
func (s *ProjectService) List(ctx context.Context, userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Preload("Tags.Tag").
		Where("user_id = ?", userID).
		Order("sort_order ASC, id ASC").
		Find(&projects).Error
	return projects, err
}

// Get loads one project with its tags and every language content with ordered blocks.
func (s *ProjectService) Get(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("Tags.Tag").
		Preload("Contents.Language").
		Preload("Contents.Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Contents.Blocks.SlideTag").
		Where("id = ? AND user_id = ?", projectID, userID).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Create appends a project after the caller's existing ones.
func (s *ProjectService) Create(ctx context.Context, userID uint, req *CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}

	project := &models.Project{
		Name:        name,
		Description: trimmedOrNil(req.Description),
		Client:      trimmedOrNil(req.Client),
		UserID:      userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		project.Order = int(count)
		return tx.Create(project).Error
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	if req.Name == nil && req.Description == nil && req.Client == nil {
		return nil, response.NewBadRequest("no fields to update")
	}

	db := s.db.WithContext(ctx)
	project, err := findOwnedProject(db, userID, projectID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewBadRequest("name must not be blank")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = trimmedOrNil(req.Description)
	}
	if req.Client != nil {
		updates["client"] = trimmedOrNil(req.Client)
	}

	if err := db.Model(project).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidateForProjects(ctx, projectID)

	return s.Get(ctx, userID, projectID)
}

// Delete removes a project with its contents, blocks, tag assignments and
// portfolio links. Affected portfolios are renumbered.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	db := s.db.WithContext(ctx)

	// collected before the links disappear
	slugs, err := portfolioSlugsForProjects(db, projectID)
	if err != nil {
		return nil, err
	}

	var deleted *models.Project
	err = db.Transaction(func(tx *gorm.DB) error {
		project, err := findOwnedProject(tx, userID, projectID)
		if err != nil {
			return err
		}

		if err := deleteProjectContents(tx, projectID); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
			return err
		}

		var portfolioIDs []uint
		if err := tx.Model(&models.PortfolioProject{}).Where("project_id = ?", projectID).
			Pluck("portfolio_id", &portfolioIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.PortfolioProject{}).Error; err != nil {
			return err
		}
		for _, portfolioID := range portfolioIDs {
			if err := renumberLinks(tx, portfolioID); err != nil {
				return err
			}
			metrics.IncLinkChange("cascade")
		}

		if err := tx.Delete(project).Error; err != nil {
			return err
		}
		deleted = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, slugs...)
	logger.Info().Uint("user_id", userID).Uint("project_id", projectID).Int("portfolios", len(slugs)).Msg("project deleted")
	return deleted, nil
}

func deleteProjectContents(tx *gorm.DB, projectID uint) error {
	contentIDs := tx.Model(&models.ProjectContent{}).Select("id").Where("project_id = ?", projectID)
	if err := tx.Where("project_content_id IN (?)", contentIDs).Delete(&models.ContentBlock{}).Error; err != nil {
		return err
	}
	return tx.Where("project_id = ?", projectID).Delete(&models.ProjectContent{}).Error
}

// Reorder assigns order i to the i-th id. Every id must belong to the caller
// and appear once; nothing is written otherwise.
func (s *ProjectService) Reorder(ctx context.Context, userID uint, ids []uint) ([]models.Project, error) {
	if len(ids) == 0 {
		return nil, response.NewBadRequest("invalid order: project list is empty")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, response.NewBadRequest("invalid order: duplicate project id")
		}
		seen[id] = struct{}{}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Project{}).Where("user_id = ? AND id IN ?", userID, ids).Count(&owned).Error; err != nil {
			return err
		}
		if int(owned) != len(ids) {
			return response.NewForbidden("one or more projects do not belong to you")
		}

		for i, id := range ids {
			if err := tx.Model(&models.Project{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateForProjects(ctx, ids...)
	metrics.ProjectReorders.Inc()
	return s.List(ctx, userID)
}

// AddContent creates an empty content for a language on a project.
func (s *ProjectService) AddContent(ctx context.Context, userID, projectID, languageID uint) (*models.ProjectContent, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedProject(db, userID, projectID); err != nil {
		return nil, err
	}

	var language models.Language
	if err := db.First(&language, languageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLanguageNotFound
		}
		return nil, err
	}

	var existing int64
	if err := db.Model(&models.ProjectContent{}).
		Where("project_id = ? AND language_id = ?", projectID, languageID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, response.NewAlreadyExists("content already exists for this language")
	}

	content := &models.ProjectContent{ProjectID: projectID, LanguageID: languageID}
	if err := db.Create(content).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, response.NewAlreadyExists("content already exists for this language")
		}
		return nil, err
	}
	content.Language = &language
	return content, nil
}

// DeleteContent removes one language content and its blocks.
func (s *ProjectService) DeleteContent(ctx context.Context, userID, projectID, contentID uint) (*models.ProjectContent, error) {
	var deleted *models.ProjectContent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwnedProject(tx, userID, projectID); err != nil {
			return err
		}

		var content models.ProjectContent
		if err := tx.Where("id = ? AND project_id = ?", contentID, projectID).First(&content).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("project content not found")
			}
			return err
		}
		if err := tx.Where("project_content_id = ?", content.ID).Delete(&models.ContentBlock{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&content).Error; err != nil {
			return err
		}
		deleted = &content
		return nil
	})
	return deleted, err
}

// invalidateForProjects drops the cached public views that embed any of ids.
func (s *ProjectService) invalidateForProjects(ctx context.Context, ids ...uint) {
	slugs, err := portfolioSlugsForProjects(s.db.WithContext(ctx), ids...)
	if err != nil {
		logger.Warnf("[ProjectService] lookup portfolios of projects %v failed: %v", ids, err)
		return
	}
	s.cache.Invalidate(ctx, slugs...)
}
