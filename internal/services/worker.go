package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/metrics"
)

const (
	mailWorkerConcurrency = 4
	mailShutdownTimeout   = 8 * time.Second
)

// Worker drains mail tasks enqueued by AsyncQueue.
type Worker struct {
	server  *asynq.Server
	send    MailProcessor
	mu      sync.Mutex
	started bool
}

// NewWorker builds the redis consumer for mail tasks. It returns nil when
// redis is disabled since SyncQueue already delivers in-process.
func NewWorker(cfg *config.RedisConfig, send MailProcessor) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(redisClientOpt(cfg), asynq.Config{
		Concurrency:     mailWorkerConcurrency,
		Queues:          map[string]int{"default": 1},
		ShutdownTimeout: mailShutdownTimeout,
		Logger:          asynqLogger{},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Warn().Err(err).Str("type", t.Type()).Int("retried", retried).Msg("[Worker] mail task failed")
		}),
	})

	return &Worker{server: server, send: send}
}

// Start launches the consumer goroutines. Calling it twice is a no-op.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeMail, w.processMail)
	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("start mail worker: %w", err)
	}
	w.started = true
	logger.Info().Int("concurrency", mailWorkerConcurrency).Msg("[Worker] mail worker started")
	return nil
}

// Stop waits for in-flight tasks up to the shutdown timeout.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.server.Shutdown()
	w.started = false
	logger.Info().Msg("[Worker] mail worker stopped")
}

func (w *Worker) processMail(ctx context.Context, t *asynq.Task) error {
	var task MailTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		metrics.IncMailTask("failed")
		return fmt.Errorf("decode mail task: %v: %w", err, asynq.SkipRetry)
	}
	if len(task.To) == 0 {
		metrics.IncMailTask("failed")
		return fmt.Errorf("mail task has no recipients: %w", asynq.SkipRetry)
	}
	if w.send == nil {
		logger.Warn().Str("subject", task.Subject).Msg("[Worker] no mail sender configured, task dropped")
		return nil
	}

	if err := w.send(ctx, &task); err != nil {
		metrics.IncMailTask("failed")
		return err
	}
	metrics.IncMailTask("sent")
	return nil
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { logger.Debug().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{})  { logger.Info().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{})  { logger.Warn().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { logger.Error().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) { logger.Fatal().Msg(fmt.Sprint(args...)) }
