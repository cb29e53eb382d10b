package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type ContentBlockHandler struct {
	blockService *services.ContentBlockService
}

func NewContentBlockHandler(db *gorm.DB) *ContentBlockHandler {
	return &ContentBlockHandler{blockService: services.NewContentBlockService(db)}
}

// Create adds a block to one of the project's contents
// POST /api/project/:id/block
func (h *ContentBlockHandler) Create(c *gin.Context) {
	projectID, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	var req services.CreateBlockRequest
	if !bindJSON(c, &req) {
		return
	}

	block, err := h.blockService.Create(c.Request.Context(), middleware.GetUserID(c), projectID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"block": block})
}

// Update changes a block's type, order, config or content
// PUT /api/project/:id/block
func (h *ContentBlockHandler) Update(c *gin.Context) {
	projectID, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	var req services.UpdateBlockRequest
	if !bindJSON(c, &req) {
		return
	}

	block, err := h.blockService.Update(c.Request.Context(), middleware.GetUserID(c), projectID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"block": block})
}

// DELETE /api/project/:id/block/:blockId
func (h *ContentBlockHandler) Delete(c *gin.Context) {
	projectID, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	blockID, ok := parseID(c, "blockId", "block")
	if !ok {
		return
	}

	block, err := h.blockService.Delete(c.Request.Context(), middleware.GetUserID(c), projectID, blockID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deletedBlock": block})
}

// SetSlideTag assigns or clears (tagId null) a block's slide tag
// PUT /api/project/:id/block/:blockId/tag
func (h *ContentBlockHandler) SetSlideTag(c *gin.Context) {
	projectID, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	blockID, ok := parseID(c, "blockId", "block")
	if !ok {
		return
	}
	var req services.BlockSlideTagRequest
	if !bindJSON(c, &req) {
		return
	}

	block, err := h.blockService.SetSlideTag(c.Request.Context(), middleware.GetUserID(c), projectID, blockID, req.TagID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"block": block})
}
