package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/internal/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testCookie = "folio_session"

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("handler-test-secret")
	middleware.RegisterValidators()
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	queue  *services.SyncQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := models.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "folio_handlers.db"),
	}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	require.NoError(t, models.SeedDefaultData(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := config.DefaultConfig()
	cfg.JWT.Secret = "handler-test-secret"
	cache := services.NoopPortfolioCache{}
	queue := services.NewSyncQueue()
	queue.SetProcessor(func(context.Context, *services.MailTask) error { return nil })
	t.Cleanup(func() { queue.Close() })

	r := gin.New()
	r.Use(middleware.ErrorHandler())

	health := NewHealthHandler(db, queue, cache)
	r.GET("/health", health.CheckHealth)
	r.GET("/metrics", Metrics(db))

	authHandler := NewAuthHandler(db, cfg, queue)
	portfolioHandler := NewPortfolioHandler(db, cache)
	projectHandler := NewProjectHandler(db, cache)
	tagHandler := NewTagHandler(db)
	slideTagHandler := NewSlideTagHandler(db)
	blockHandler := NewContentBlockHandler(db)
	themeHandler := NewThemeSettingsHandler(db, cache)
	activityHandler := NewActivityHandler(services.NewSystemLogService(db))

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/portfolios/:slug", portfolioHandler.GetPublic)

	protected := api.Group("", middleware.AuthRequired(testCookie))
	protected.GET("/auth/me", authHandler.GetCurrentUser)
	protected.POST("/auth/logout", authHandler.Logout)
	protected.POST("/auth/change-password", authHandler.ChangePassword)

	protected.GET("/portfolios", portfolioHandler.List)
	protected.POST("/portfolios", portfolioHandler.Create)
	protected.PUT("/portfolios/:slug", portfolioHandler.Update)
	protected.DELETE("/portfolios/:slug", portfolioHandler.Delete)
	protected.POST("/portfolios/:slug/project", portfolioHandler.AddProject)
	protected.DELETE("/portfolios/:slug/project", portfolioHandler.RemoveProject)
	protected.GET("/portfolios/:slug/projects", portfolioHandler.ListProjects)

	protected.GET("/projects", projectHandler.List)
	protected.POST("/projects", projectHandler.Create)
	protected.PUT("/projects/reorder", projectHandler.Reorder)
	protected.GET("/projects/:id", projectHandler.GetByID)
	protected.PUT("/projects/:id", projectHandler.Update)
	protected.DELETE("/projects/:id", projectHandler.Delete)
	protected.POST("/projects/:id/contents", projectHandler.CreateContent)
	protected.DELETE("/projects/:id/contents/:contentId", projectHandler.DeleteContent)
	protected.GET("/projects/:id/tags", tagHandler.ListForProject)
	protected.POST("/projects/:id/tags", tagHandler.AddToProject)
	protected.DELETE("/projects/:id/tags", tagHandler.RemoveFromProject)

	protected.GET("/tags", tagHandler.List)
	protected.POST("/tags", tagHandler.Create)
	protected.PUT("/tags/:id", tagHandler.Update)
	protected.DELETE("/tags/:id", tagHandler.Delete)
	protected.GET("/slide-tags", slideTagHandler.List)
	protected.POST("/slide-tags", slideTagHandler.Create)
	protected.PUT("/slide-tags/:id", slideTagHandler.Update)
	protected.DELETE("/slide-tags/:id", slideTagHandler.Delete)

	protected.POST("/project/:id/block", blockHandler.Create)
	protected.PUT("/project/:id/block", blockHandler.Update)
	protected.DELETE("/project/:id/block/:blockId", blockHandler.Delete)
	protected.PUT("/project/:id/block/:blockId/tag", blockHandler.SetSlideTag)

	protected.GET("/theme-settings", themeHandler.Get)
	protected.POST("/theme-settings", themeHandler.Create)
	protected.PUT("/theme-settings", themeHandler.Update)
	protected.GET("/languages", themeHandler.Languages)
	protected.GET("/activity", activityHandler.List)

	return &testServer{t: t, db: db, router: r, queue: queue}
}

// login creates a user and returns a bearer token for it.
func (s *testServer) login(email string) (uint, string) {
	s.t.Helper()
	user := &models.User{Name: email, Email: email, Password: "x"}
	require.NoError(s.t, s.db.Create(user).Error)
	token, err := utils.GenerateToken(user.ID, user.Email, 1)
	require.NoError(s.t, err)
	return user.ID, token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// idOf pulls a numeric id out of a decoded JSON object.
func idOf(t *testing.T, v interface{}) uint {
	t.Helper()
	obj, ok := v.(map[string]interface{})
	require.True(t, ok, "expected object, got %T", v)
	id, ok := obj["id"].(float64)
	require.True(t, ok, "object has no id")
	return uint(id)
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var out []interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
