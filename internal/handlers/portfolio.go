package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type PortfolioHandler struct {
	portfolioService *services.PortfolioService
}

func NewPortfolioHandler(db *gorm.DB, cache services.PortfolioCache) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: services.NewPortfolioService(db, cache),
	}
}

// List returns the caller's portfolios
// GET /api/portfolios
func (h *PortfolioHandler) List(c *gin.Context) {
	portfolios, err := h.portfolioService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"portfolios": portfolios})
}

// Create creates a portfolio
// POST /api/portfolios
func (h *PortfolioHandler) Create(c *gin.Context) {
	var req services.CreatePortfolioRequest
	if !bindJSON(c, &req) {
		return
	}

	portfolio, err := h.portfolioService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, portfolio)
}

// GetPublic returns a portfolio with its ordered projects and the owner's theme
// GET /api/portfolios/:slug
func (h *PortfolioHandler) GetPublic(c *gin.Context) {
	view, err := h.portfolioService.GetPublic(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// Update renames or redescribes a portfolio
// PUT /api/portfolios/:slug
func (h *PortfolioHandler) Update(c *gin.Context) {
	var req services.UpdatePortfolioRequest
	if !bindJSON(c, &req) {
		return
	}

	portfolio, err := h.portfolioService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("slug"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"updatedPortfolio": portfolio})
}

// Delete removes a portfolio and its links
// DELETE /api/portfolios/:slug
func (h *PortfolioHandler) Delete(c *gin.Context) {
	portfolio, err := h.portfolioService.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deletedPortfolio": portfolio})
}

// AddProject links one of the caller's projects at the end of the portfolio
// POST /api/portfolios/:slug/project
func (h *PortfolioHandler) AddProject(c *gin.Context) {
	var req services.LinkProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	portfolio, err := h.portfolioService.AddProject(c.Request.Context(), middleware.GetUserID(c), c.Param("slug"), req.RelatedProject)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "portfolio": portfolio})
}

// RemoveProject deletes a link by id
// DELETE /api/portfolios/:slug/project
func (h *PortfolioHandler) RemoveProject(c *gin.Context) {
	var req services.UnlinkProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	portfolio, err := h.portfolioService.RemoveProject(c.Request.Context(), middleware.GetUserID(c), c.Param("slug"), req.RelatedProject)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "portfolio": portfolio})
}

// ListProjects returns the caller's projects flagged with their link state
// GET /api/portfolios/:slug/projects
func (h *PortfolioHandler) ListProjects(c *gin.Context) {
	projects, err := h.portfolioService.ListProjectsWithLinkFlag(c.Request.Context(), middleware.GetUserID(c), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, projects)
}
