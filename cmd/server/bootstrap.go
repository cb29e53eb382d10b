package main

import (
	"context"
	"fmt"

	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/internal/utils"
	"github.com/huangang/folio/backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// appServices holds the long-lived dependencies shared by the HTTP layer.
type appServices struct {
	cfg       *config.Config
	db        *gorm.DB
	cache     services.PortfolioCache
	taskQueue services.TaskQueue
	worker    *services.Worker
	logs      *services.SystemLogService
	scheduler *services.LogCleanupScheduler
	limiter   *middleware.RateLimiter
}

// connect opens the database, logging SQL only in debug mode.
func connect(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		level = gormlogger.Info
	}
	return models.Open(&cfg.Database, level)
}

// dial is swapped in tests to observe the handle openDatabase opens.
var dial = connect

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// openDatabase connects, migrates and seeds the database.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if err := models.SeedDefaultData(db); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}
	return db, nil
}

// bootstrap initializes all application dependencies: database, cache, mail queue, schedulers.
func bootstrap(ctx context.Context, cfg *config.Config) (*appServices, error) {
	utils.SetJWTSecret(cfg.JWT.Secret)
	middleware.RegisterValidators()

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	cache := services.NewPortfolioCache(ctx, &cfg.Redis, &cfg.Cache)

	// Mail goes through redis when enabled, otherwise an in-process goroutine
	emailService := services.NewEmailService(&cfg.Email)
	sendMail := func(_ context.Context, task *services.MailTask) error {
		return emailService.Send(task)
	}

	taskQueue := services.NewTaskQueue(&cfg.Redis)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(sendMail)
	}

	var worker *services.Worker
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis, sendMail)
		if worker != nil {
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start mail worker")
			}
		}
	}

	logs := services.NewSystemLogService(db)
	scheduler := services.NewLogCleanupScheduler(logs, cfg.Log.RetentionDays)
	if err := scheduler.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start log cleanup scheduler")
	}

	return &appServices{
		cfg:       cfg,
		db:        db,
		cache:     cache,
		taskQueue: taskQueue,
		worker:    worker,
		logs:      logs,
		scheduler: scheduler,
		limiter:   middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst),
	}, nil
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	s.limiter.Stop()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close task queue")
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close portfolio cache")
		}
	}

	closeDB(s.db)
}
