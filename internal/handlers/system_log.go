package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/response"
)

type ActivityHandler struct {
	logs *services.SystemLogService
}

func NewActivityHandler(logs *services.SystemLogService) *ActivityHandler {
	return &ActivityHandler{logs: logs}
}

// List pages through the caller's own activity entries
// GET /api/activity
func (h *ActivityHandler) List(c *gin.Context) {
	var req services.ActivityListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := h.logs.ListForUser(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, resp)
}
