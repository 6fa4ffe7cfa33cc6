package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/gestor/internal/notifications"
)

// Task type constants
const (
	TaskCreateNotification = "notification:create"
)

// NewNotificationTask builds the asynq task carrying a notification request.
// It is retried up to 3 times and kept for an hour after completion.
func NewNotificationTask(req notifications.Request) (*asynq.Task, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	return asynq.NewTask(
		TaskCreateNotification,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Retention(time.Hour),
	), nil
}

// QueueDispatcher hands notifications to the worker through asynq.
// When enqueueing fails the notification is created inline instead.
type QueueDispatcher struct {
	client   *asynq.Client
	fallback notifications.Dispatcher
	logger   *slog.Logger
}

// NewQueueDispatcher connects an asynq client to redisURL
func NewQueueDispatcher(redisURL string, fallback notifications.Dispatcher, logger *slog.Logger) (*QueueDispatcher, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueDispatcher{
		client:   asynq.NewClient(opt),
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Dispatch enqueues the request, creating it inline if Redis refuses
func (d *QueueDispatcher) Dispatch(ctx context.Context, req notifications.Request) {
	task, err := NewNotificationTask(req)
	if err == nil {
		var info *asynq.TaskInfo
		if info, err = d.client.EnqueueContext(ctx, task); err == nil {
			d.logger.Debug("Notification enqueued", "task_id", info.ID, "id_usuario", req.UserID, "tipo", req.Type)
			return
		}
	}

	d.logger.Warn("Failed to enqueue notification, creating inline",
		"id_usuario", req.UserID,
		"tipo", req.Type,
		"error", err.Error(),
	)
	if d.fallback != nil {
		d.fallback.Dispatch(ctx, req)
	}
}

// Close closes the asynq client connection
func (d *QueueDispatcher) Close() error {
	return d.client.Close()
}
