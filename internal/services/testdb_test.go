package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "folio_test.db"),
	}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	require.NoError(t, models.SeedDefaultData(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: email, Email: email, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProject(t *testing.T, svc *ProjectService, userID uint, name string) *models.Project {
	t.Helper()
	project, err := svc.Create(context.Background(), userID, &CreateProjectRequest{Name: name})
	require.NoError(t, err)
	return project
}

func languageByCode(t *testing.T, db *gorm.DB, code string) *models.Language {
	t.Helper()
	var lang models.Language
	require.NoError(t, db.Where("code = ?", code).First(&lang).Error)
	return &lang
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func uintPtr(u uint) *uint { return &u }

// memoryCache records cache traffic for assertions.
type memoryCache struct {
	mu          sync.Mutex
	views       map[string]*PublicPortfolio
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: map[string]*PublicPortfolio{}}
}

func (c *memoryCache) Get(_ context.Context, slug string) (*PublicPortfolio, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[slug]
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, slug string, view *PublicPortfolio) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[slug] = view
}

func (c *memoryCache) Invalidate(_ context.Context, slugs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slug := range slugs {
		delete(c.views, slug)
		c.invalidated = append(c.invalidated, slug)
	}
}

func (c *memoryCache) Mode() string { return "memory" }

func (c *memoryCache) Close() error { return nil }

func (c *memoryCache) cached(slug string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.views[slug]
	return ok
}
