package streams

import (
	"log/slog"
)

// LogEvents returns a handler that writes every event to logger
func LogEvents(logger *slog.Logger) func(NotificationEvent) error {
	return func(event NotificationEvent) error {
		logger.Info("Notification created",
			"id_notificacion", event.NotificationID,
			"id_usuario", event.UserID,
			"tipo", event.Type,
			"titulo", event.Title,
			"fecha", event.CreatedAt,
		)
		return nil
	}
}
