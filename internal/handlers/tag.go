package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type TagHandler struct {
	tagService *services.TagService
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{tagService: services.NewTagService(db)}
}

// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"tags": tags})
}

// POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req services.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.tagService.Create(c.Request.Context(), middleware.GetUserID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"tag": tag})
}

// PUT /api/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "tag")
	if !ok {
		return
	}
	var req services.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.tagService.Update(c.Request.Context(), middleware.GetUserID(c), id, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"tag": tag})
}

// DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "tag")
	if !ok {
		return
	}

	tag, err := h.tagService.Delete(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deletedTag": tag})
}

// ListForProject returns the tags attached to a project
// GET /api/projects/:id/tags
func (h *TagHandler) ListForProject(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	links, err := h.tagService.ListForProject(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"projectTags": links})
}

// AddToProject attaches a tag; attaching it twice returns the existing record
// POST /api/projects/:id/tags
func (h *TagHandler) AddToProject(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	var req services.ProjectTagRequest
	if !bindJSON(c, &req) {
		return
	}

	link, created, err := h.tagService.AddToProject(c.Request.Context(), middleware.GetUserID(c), id, req.TagID)
	if err != nil {
		fail(c, err)
		return
	}
	if created {
		response.Created(c, gin.H{"projectTag": link})
		return
	}
	response.Success(c, gin.H{"projectTag": link})
}

// RemoveFromProject detaches a tag; detaching an absent tag still succeeds
// DELETE /api/projects/:id/tags
func (h *TagHandler) RemoveFromProject(c *gin.Context) {
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	var req services.ProjectTagRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tagService.RemoveFromProject(c.Request.Context(), middleware.GetUserID(c), id, req.TagID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

type SlideTagHandler struct {
	slideTagService *services.SlideTagService
}

func NewSlideTagHandler(db *gorm.DB) *SlideTagHandler {
	return &SlideTagHandler{slideTagService: services.NewSlideTagService(db)}
}

// GET /api/slide-tags
func (h *SlideTagHandler) List(c *gin.Context) {
	tags, err := h.slideTagService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"slideTags": tags})
}

// POST /api/slide-tags
func (h *SlideTagHandler) Create(c *gin.Context) {
	var req services.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.slideTagService.Create(c.Request.Context(), middleware.GetUserID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"slideTag": tag})
}

// PUT /api/slide-tags/:id
func (h *SlideTagHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "slide tag")
	if !ok {
		return
	}
	var req services.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.slideTagService.Update(c.Request.Context(), middleware.GetUserID(c), id, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"slideTag": tag})
}

// DELETE /api/slide-tags/:id
func (h *SlideTagHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "slide tag")
	if !ok {
		return
	}

	tag, err := h.slideTagService.Delete(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deletedSlideTag": tag})
}
