package streams

import (
	"time"

	"github.com/jimdaga/gestor/internal/models"
)

// DefaultNotificationStream is used when no stream name is configured
const DefaultNotificationStream = "notifications:created"

// Event and schema constants
const (
	EventNotificationCreated = "notification.created"
	SchemaVersionV1          = "v1"
)

// Consumer group constants
const (
	GroupWatchers = "gestor-watchers"
)

// NotificationEvent is the payload published for every created notification
type NotificationEvent struct {
	Event          string    `json:"event"`
	NotificationID uint      `json:"id_notificacion"`
	UserID         uint      `json:"id_usuario"`
	Type           string    `json:"tipo"`
	Title          string    `json:"titulo"`
	Link           *string   `json:"link,omitempty"`
	CreatedAt      time.Time `json:"fecha"`
}

// NewNotificationEvent builds the event for a stored notification
func NewNotificationEvent(n models.Notification) NotificationEvent {
	return NotificationEvent{
		Event:          EventNotificationCreated,
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Link:           n.Link,
		CreatedAt:      n.CreatedAt,
	}
}
