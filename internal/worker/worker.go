package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/gestor/internal/config"
	"github.com/jimdaga/gestor/internal/notifications"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Run starts the worker server and blocks until a shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, creator notifications.Creator, logger *slog.Logger) error {
	srv, mux, err := newServer(cfg, creator, logger)
	if err != nil {
		return err
	}
	return srv.Run(mux)
}

// Start starts the worker in non-blocking mode and returns a stop function.
// Use this when the worker is embedded in the API process.
func Start(cfg *config.Config, creator notifications.Creator, logger *slog.Logger) (stop func(), err error) {
	srv, mux, err := newServer(cfg, creator, logger)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, creator notifications.Creator, logger *slog.Logger) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     cfg.WorkerConcurrency,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskCreateNotification, handleCreateNotification(logger, creator))

	logger.Info("Worker starting", "concurrency", cfg.WorkerConcurrency)
	return srv, mux, nil
}

// handleCreateNotification creates the queued notification unless the
// recipient switched its type off.
func handleCreateNotification(logger *slog.Logger, creator notifications.Creator) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var req notifications.Request
		if err := json.Unmarshal(task.Payload(), &req); err != nil {
			// Invalid payload - don't retry
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}
		if req.UserID == 0 || req.Type == "" {
			return fmt.Errorf("incomplete notification payload: %w", asynq.SkipRetry)
		}

		created, err := creator.CreateIfEnabled(ctx, req)
		if err != nil {
			// Database error - retryable
			return fmt.Errorf("failed to create notification: %w", err)
		}

		logger.Info("Processed notification:create task",
			"id_usuario", req.UserID,
			"tipo", req.Type,
			"created", created,
		)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		// Final failure: the task moves to the archive
		if retried >= maxRetry {
			logger.Error(
				"Task archived (all retries exhausted)",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}
