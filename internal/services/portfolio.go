package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/internal/utils"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/metrics"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type PortfolioService struct {
	db    *gorm.DB
	cache PortfolioCache
}

func NewPortfolioService(db *gorm.DB, cache PortfolioCache) *PortfolioService {
	if cache == nil {
		cache = NoopPortfolioCache{}
	}
	return &PortfolioService{db: db, cache: cache}
}

type CreatePortfolioRequest struct {
	Name        string  `json:"name" binding:"required,notblank,max=200"`
	Description *string `json:"description"`
}

type UpdatePortfolioRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
}

type LinkProjectRequest struct {
	RelatedProject uint `json:"relatedProject" binding:"required"`
}

type UnlinkProjectRequest struct {
	RelatedProject uint `json:"relatedProject" binding:"required"` // link id
}

// PublicPortfolio is the anonymous view of a portfolio.
type PublicPortfolio struct {
	Portfolio *models.Portfolio     `json:"portfolio"`
	Theme     *models.ThemeSettings `json:"theme"`
}

// LinkableProject is one of the owner's projects flagged with its link state.
type LinkableProject struct {
	models.Project
	IsLinked bool  `json:"isLinked"`
	LinkID   *uint `json:"linkId,omitempty"`
}

// List returns the caller's portfolios, newest first.
func (s *PortfolioService) List(ctx context.Context, userID uint) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	err := s.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&portfolios).Error
	for i := range portfolios {
		ensureLinks(&portfolios[i])
	}
	return portfolios, err
}

// ensureLinks makes an unlinked portfolio serialize "links": [] rather than null.
func ensureLinks(p *models.Portfolio) {
	if p.Links == nil {
		p.Links = []models.PortfolioProject{}
	}
}

// Create stores a portfolio under a slug derived from its name. A taken slug
// gets a random suffix.
func (s *PortfolioService) Create(ctx context.Context, userID uint, req *CreatePortfolioRequest) (*models.Portfolio, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	portfolio := &models.Portfolio{
		Slug:        slug,
		Name:        name,
		Description: trimmedOrNil(req.Description),
		UserID:      userID,
	}
	if err := s.db.WithContext(ctx).Create(portfolio).Error; err != nil {
		return nil, err
	}

	ensureLinks(portfolio)
	logger.Info().Uint("user_id", userID).Str("slug", slug).Msg("portfolio created")
	return portfolio, nil
}

func (s *PortfolioService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.GenerateSlug(name)
	if base == "" {
		return utils.WithSlugSuffix("portfolio"), nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Portfolio{}).Where("slug = ?", base).Count(&count).Error; err != nil {
		return "", err
	}
	if count == 0 {
		return base, nil
	}
	return utils.WithSlugSuffix(base), nil
}

// GetBySlug loads a portfolio with its links in display order.
func (s *PortfolioService) GetBySlug(ctx context.Context, slug string) (*models.Portfolio, error) {
	return loadPortfolioWithLinks(s.db.WithContext(ctx), slug)
}

func loadPortfolioWithLinks(db *gorm.DB, slug string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := db.
		Preload("Links", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Links.Project").
		Where("slug = ?", slug).
		First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPortfolioNotFound
		}
		return nil, err
	}
	ensureLinks(&portfolio)
	return &portfolio, nil
}

// GetPublic returns the anonymous view of a portfolio with the owner's theme.
func (s *PortfolioService) GetPublic(ctx context.Context, slug string) (*PublicPortfolio, error) {
	if view, ok := s.cache.Get(ctx, slug); ok {
		return view, nil
	}

	portfolio, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	theme, err := findThemeSettings(s.db.WithContext(ctx), portfolio.UserID)
	if err != nil {
		return nil, err
	}

	view := &PublicPortfolio{Portfolio: portfolio, Theme: theme}
	s.cache.Set(ctx, slug, view)
	return view, nil
}

// Update changes name and/or description. The slug is kept on rename so
// shared links stay valid.
func (s *PortfolioService) Update(ctx context.Context, userID uint, slug string, req *UpdatePortfolioRequest) (*models.Portfolio, error) {
	if req.Name == nil && req.Description == nil {
		return nil, response.NewBadRequest("at least one of name or description is required")
	}

	db := s.db.WithContext(ctx)
	portfolio, err := findOwnedPortfolio(db, userID, slug, false)
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

	if err := db.Model(portfolio).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, slug)

	return loadPortfolioWithLinks(db, slug)
}

// Delete removes a portfolio and its links.
func (s *PortfolioService) Delete(ctx context.Context, userID uint, slug string) (*models.Portfolio, error) {
	var deleted *models.Portfolio
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		portfolio, err := findOwnedPortfolio(tx, userID, slug, true)
		if err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", portfolio.ID).Delete(&models.PortfolioProject{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(portfolio).Error; err != nil {
			return err
		}
		portfolio.Links = []models.PortfolioProject{}
		deleted = portfolio
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, slug)
	logger.Info().Uint("user_id", userID).Str("slug", slug).Msg("portfolio deleted")
	return deleted, nil
}

// AddProject appends one of the caller's projects to the end of a portfolio.
func (s *PortfolioService) AddProject(ctx context.Context, userID uint, slug string, projectID uint) (*models.Portfolio, error) {
	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		portfolio, err := findOwnedPortfolio(tx, userID, slug, true)
		if err != nil {
			return err
		}
		if _, err := findOwnedProject(tx, userID, projectID); err != nil {
			return err
		}

		var linked int64
		if err := tx.Model(&models.PortfolioProject{}).
			Where("portfolio_id = ? AND project_id = ?", portfolio.ID, projectID).
			Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return response.NewAlreadyExists("project is already linked to this portfolio")
		}

		var count int64
		if err := tx.Model(&models.PortfolioProject{}).Where("portfolio_id = ?", portfolio.ID).Count(&count).Error; err != nil {
			return err
		}

		link := &models.PortfolioProject{
			PortfolioID: portfolio.ID,
			ProjectID:   projectID,
			Order:       int(count),
		}
		if err := tx.Create(link).Error; err != nil {
			if isUniqueViolation(err) {
				return response.NewAlreadyExists("project is already linked to this portfolio")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncLinkChange("add")
	s.cache.Invalidate(ctx, slug)
	return loadPortfolioWithLinks(db, slug)
}

// RemoveProject deletes one link and closes the gap it leaves.
func (s *PortfolioService) RemoveProject(ctx context.Context, userID uint, slug string, linkID uint) (*models.Portfolio, error) {
	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		portfolio, err := findOwnedPortfolio(tx, userID, slug, true)
		if err != nil {
			return err
		}

		var link models.PortfolioProject
		if err := tx.Where("id = ? AND portfolio_id = ?", linkID, portfolio.ID).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("link not found in this portfolio")
			}
			return err
		}
		if err := tx.Delete(&link).Error; err != nil {
			return err
		}
		return renumberLinks(tx, portfolio.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncLinkChange("remove")
	s.cache.Invalidate(ctx, slug)
	return loadPortfolioWithLinks(db, slug)
}

// ListProjectsWithLinkFlag returns every project of the caller, each marked
// with whether it is linked into the portfolio.
func (s *PortfolioService) ListProjectsWithLinkFlag(ctx context.Context, userID uint, slug string) ([]LinkableProject, error) {
	db := s.db.WithContext(ctx)
	portfolio, err := findOwnedPortfolio(db, userID, slug, false)
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := db.Where("user_id = ?", userID).Order("sort_order ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	var links []models.PortfolioProject
	if err := db.Where("portfolio_id = ?", portfolio.ID).Find(&links).Error; err != nil {
		return nil, err
	}
	linkByProject := make(map[uint]uint, len(links))
	for _, l := range links {
		linkByProject[l.ProjectID] = l.ID
	}

	result := make([]LinkableProject, 0, len(projects))
	for _, p := range projects {
		item := LinkableProject{Project: p}
		if id, ok := linkByProject[p.ID]; ok {
			linkID := id
			item.IsLinked = true
			item.LinkID = &linkID
		}
		result = append(result, item)
	}
	return result, nil
}

// renumberLinks rewrites the orders of a portfolio's links to 0..n-1,
// keeping their relative order. Must run inside the caller's transaction.
func renumberLinks(tx *gorm.DB, portfolioID uint) error {
	var links []models.PortfolioProject
	if err := tx.Where("portfolio_id = ?", portfolioID).Order("sort_order ASC, id ASC").Find(&links).Error; err != nil {
		return err
	}
	for i, link := range links {
		if link.Order == i {
			continue
		}
		if err := tx.Model(&models.PortfolioProject{}).Where("id = ?", link.ID).Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// portfolioSlugsForProjects lists the slugs of portfolios linking any of projectIDs.
func portfolioSlugsForProjects(db *gorm.DB, projectIDs ...uint) ([]string, error) {
	var slugs []string
	if len(projectIDs) == 0 {
		return slugs, nil
	}
	err := db.Model(&models.Portfolio{}).
		Distinct("portfolios.slug").
		Joins("JOIN portfolio_projects ON portfolio_projects.portfolio_id = portfolios.id").
		Where("portfolio_projects.project_id IN ?", projectIDs).
		Pluck("portfolios.slug", &slugs).Error
	return slugs, err
}

// portfolioSlugsForUser lists the slugs of every portfolio owned by userID.
func portfolioSlugsForUser(db *gorm.DB, userID uint) ([]string, error) {
	var slugs []string
	err := db.Model(&models.Portfolio{}).Where("user_id = ?", userID).Pluck("slug", &slugs).Error
	return slugs, err
}
