package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the database, mail queue and cache.
type HealthHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
	cache services.PortfolioCache
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue, cache services.PortfolioCache) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, cache: cache}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	dbStatus := "ok"
	if err := models.Ping(h.db); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	cacheMode := "none"
	if h.cache != nil {
		cacheMode = h.cache.Mode()
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "folio",
		"components": gin.H{
			"database":   dbStatus,
			"queue_mode": services.QueueMode(h.queue),
			"cache_mode": cacheMode,
		},
	})
}
