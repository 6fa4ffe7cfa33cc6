package notifications

import (
	"context"
	"log/slog"
)

// Dispatcher sends best-effort notifications on behalf of other services.
// Dispatch never fails the caller; problems are logged.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request)
}

// Creator is the part of Service a dispatcher needs
type Creator interface {
	CreateIfEnabled(ctx context.Context, req Request) (bool, error)
}

// InlineDispatcher creates the notification synchronously within the request
type InlineDispatcher struct {
	creator Creator
	logger  *slog.Logger
}

// NewInlineDispatcher returns a dispatcher that calls creator directly
func NewInlineDispatcher(creator Creator, logger *slog.Logger) *InlineDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineDispatcher{creator: creator, logger: logger}
}

// Dispatch creates the notification now and logs any failure
func (d *InlineDispatcher) Dispatch(ctx context.Context, req Request) {
	created, err := d.creator.CreateIfEnabled(ctx, req)
	if err != nil {
		d.logger.Warn("Best-effort notification failed",
			"id_usuario", req.UserID,
			"tipo", req.Type,
			"error", err.Error(),
		)
		return
	}
	if !created {
		d.logger.Debug("Notification suppressed by user preference",
			"id_usuario", req.UserID,
			"tipo", req.Type,
		)
	}
}
