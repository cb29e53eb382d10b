package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huangang/folio/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite" // pure Go SQLite driver registered as "sqlite"
)

// Open connects to the configured database. The returned handle is shared
// by every service for the lifetime of the process.
func Open(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		sqlDB, err := openSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Dialector{Conn: sqlDB}
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// openSQLite opens path through modernc.org/sqlite with WAL and a busy timeout.
// SQLite allows a single writer, so the pool is pinned to one connection.
func openSQLite(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return sqlDB, nil
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Language{},
		&Project{},
		&ProjectContent{},
		&ContentBlock{},
		&Tag{},
		&ProjectTag{},
		&SlideTag{},
		&Portfolio{},
		&PortfolioProject{},
		&ThemeSettings{},
		&SystemLog{},
		&SchedulerLock{},
	)
}

// DefaultLanguages are seeded on first start.
var DefaultLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "Français"},
}

// SeedDefaultData creates default data if not exists
func SeedDefaultData(db *gorm.DB) error {
	for _, lang := range DefaultLanguages {
		var count int64
		if err := db.Model(&Language{}).Where("code = ?", lang.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		l := lang
		if err := db.Create(&l).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ping checks that the underlying connection is alive.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
