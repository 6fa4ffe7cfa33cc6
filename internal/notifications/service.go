// Package notifications stores per-user notifications and the per-type
// preferences that decide whether one is created at all.
package notifications

import (
	"context"
	"log/slog"

	"github.com/jimdaga/gestor/internal/models"
)

// Request describes a notification to create
type Request struct {
	UserID uint    `json:"id_usuario"`
	Type   string  `json:"tipo"`
	Title  string  `json:"titulo"`
	Body   *string `json:"mensaje,omitempty"`
	Link   *string `json:"link,omitempty"`
}

// EventPublisher announces newly created notifications to realtime consumers
type EventPublisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// Service holds the notification use cases
type Service struct {
	repo   Repository
	events EventPublisher
	logger *slog.Logger
}

// NewService creates a Service. events may be nil.
func NewService(repo Repository, events EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, events: events, logger: logger}
}

// CreateIfEnabled creates the notification unless the user switched its
// type off. A failed preference lookup counts as enabled. Returns whether
// a notification was created.
func (s *Service) CreateIfEnabled(ctx context.Context, req Request) (bool, error) {
	pref, err := s.repo.FindPreference(ctx, req.UserID, req.Type)
	if err != nil {
		s.logger.Warn("Notification preference lookup failed, treating as enabled",
			"id_usuario", req.UserID,
			"tipo", req.Type,
			"error", err.Error(),
		)
	} else if pref != nil && !pref.Active {
		return false, nil
	}

	if _, err := s.Create(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a notification without consulting preferences
func (s *Service) Create(ctx context.Context, req Request) (*models.Notification, error) {
	n := &models.Notification{
		UserID: req.UserID,
		Type:   req.Type,
		Title:  req.Title,
		Body:   req.Body,
		Link:   req.Link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishNotification(ctx, *n); err != nil {
			s.logger.Warn("Failed to publish notification event",
				"id_notificacion", n.ID,
				"error", err.Error(),
			)
		}
	}
	return n, nil
}

// ListForUser returns a user's notifications, newest first
func (s *Service) ListForUser(ctx context.Context, userID uint, filter ListFilter) ([]models.Notification, error) {
	return s.repo.ListForUser(ctx, userID, filter)
}

// MarkRead sets the read flag. Repeating the call is harmless.
func (s *Service) MarkRead(ctx context.Context, id uint, read bool) (*models.Notification, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetRead(ctx, id, read); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Preferences returns the stored preference rows of a user
func (s *Service) Preferences(ctx context.Context, userID uint) ([]models.NotificationPreference, error) {
	return s.repo.ListPreferences(ctx, userID)
}

// SetPreferences validates the raw batch, upserts every item, and returns
// the resulting rows. An invalid item rejects the batch before any write.
func (s *Service) SetPreferences(ctx context.Context, userID uint, raw []byte) ([]models.NotificationPreference, error) {
	items, err := ParsePreferences(raw)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertPreferences(ctx, userID, items); err != nil {
		return nil, err
	}
	return s.repo.ListPreferences(ctx, userID)
}
