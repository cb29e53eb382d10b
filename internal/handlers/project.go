package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB, cache services.PortfolioCache) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db, cache),
	}
}

// List returns the caller's projects in display order
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"projects": projects})
}

// GetByID returns a project with its tags, contents and blocks
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"project": project})
}

// Create creates a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"project": project})
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"project": project})
}

// Delete deletes a project and everything hanging off it
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projectService.Delete(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deletedProject": project})
}

// Reorder assigns display orders from the position of each id
// PUT /api/projects/reorder
func (h *ProjectHandler) Reorder(c *gin.Context) {
	var req services.ReorderProjectsRequest
	if !bindJSON(c, &req) {
		return
	}

	projects, err := h.projectService.Reorder(c.Request.Context(), middleware.GetUserID(c), req.Projects)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "projects": projects})
}

// CreateContent adds a language variant to a project
// POST /api/projects/:id/contents
func (h *ProjectHandler) CreateContent(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	var req services.CreateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	content, err := h.projectService.AddContent(c.Request.Context(), middleware.GetUserID(c), id, req.LanguageID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"content": content})
}

// DeleteContent removes a language variant and its blocks
// DELETE /api/projects/:id/contents/:contentId
func (h *ProjectHandler) DeleteContent(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	contentID, ok := parseID(c, "contentId", "content")
	if !ok {
		return
	}

	content, err := h.projectService.DeleteContent(c.Request.Context(), middleware.GetUserID(c), id, contentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deletedContent": content})
}
