package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// LogCleanupSpec runs the retention sweep daily at 03:00.
const LogCleanupSpec = "0 3 * * *"

const (
	logCleanupLockName = "log_cleanup"
	schedulerLockTTL   = 48 * time.Hour
)

// LogCleanupScheduler periodically prunes the activity log.
type LogCleanupScheduler struct {
	cron          *cron.Cron
	logs          *SystemLogService
	retentionDays int
}

func NewLogCleanupScheduler(logs *SystemLogService, retentionDays int) *LogCleanupScheduler {
	return &LogCleanupScheduler{
		cron:          cron.New(),
		logs:          logs,
		retentionDays: retentionDays,
	}
}

// Start registers the job, runs one sweep immediately and starts the cron loop.
func (s *LogCleanupScheduler) Start() error {
	if s.retentionDays <= 0 {
		logger.Infof("[Scheduler] Log cleanup disabled (retention_days <= 0)")
		return nil
	}

	if _, err := s.cron.AddFunc(LogCleanupSpec, s.RunOnce); err != nil {
		return err
	}

	go s.RunOnce()
	s.cron.Start()
	logger.Infof("[Scheduler] Log cleanup scheduled (%s, keep %d days)", LogCleanupSpec, s.retentionDays)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *LogCleanupScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce performs a single retention sweep.
func (s *LogCleanupScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// One sweep per hour across every replica sharing the database
	key := time.Now().UTC().Format("2006-01-02T15")
	acquired, err := tryAcquireSchedulerLock(s.logs.db.WithContext(ctx), logCleanupLockName, key, schedulerLockTTL)
	if err != nil {
		logger.Errorf("[Scheduler] Failed to acquire log cleanup lock: %v", err)
		return
	}
	if !acquired {
		logger.Debug().Str("key", key).Msg("[Scheduler] Log cleanup already claimed")
		return
	}

	deleted, err := s.logs.CleanupOldLogs(ctx, s.retentionDays)
	if err != nil {
		logger.Errorf("[Scheduler] Failed to cleanup old logs: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("[Scheduler] Cleaned up %d logs older than %d days", deleted, s.retentionDays)
	}
}

// tryAcquireSchedulerLock claims (name, key) for this process. It returns
// false when another holder already claimed it. Expired claims are pruned.
func tryAcquireSchedulerLock(db *gorm.DB, name, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	if err := db.Where("expires_at < ?", now).Delete(&models.SchedulerLock{}).Error; err != nil {
		return false, err
	}

	lock := &models.SchedulerLock{
		LockName:  name,
		LockKey:   key,
		LockedBy:  lockHolder(),
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.Create(lock).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func lockHolder() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s/%d", host, os.Getpid())
}
