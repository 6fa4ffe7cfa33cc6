package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"gorm.io/gorm"
)

// ListFilter narrows a user's notification list
type ListFilter struct {
	Read  *bool
	Limit *int
}

// PreferenceItem is one (type, active) pair of a preferences batch
type PreferenceItem struct {
	Type   string `json:"tipo"`
	Active bool   `json:"activo"`
}

// Repository is the persistence surface of the notification service
type Repository interface {
	FindPreference(ctx context.Context, userID uint, notificationType string) (*models.NotificationPreference, error)
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id uint) (*models.Notification, error)
	ListForUser(ctx context.Context, userID uint, filter ListFilter) ([]models.Notification, error)
	SetRead(ctx context.Context, id uint, read bool) error
	ListPreferences(ctx context.Context, userID uint) ([]models.NotificationPreference, error)
	UpsertPreferences(ctx context.Context, userID uint, items []PreferenceItem) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a Repository over notificaciones and config_notificaciones
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindPreference returns nil without error when no row exists
func (r *gormRepository) FindPreference(ctx context.Context, userID uint, notificationType string) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("id_usuario = ? AND tipo = ?", userID, notificationType).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notification preference: %w", err)
	}
	return &pref, nil
}

func (r *gormRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *gormRepository) Get(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Notificación no existe")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

func (r *gormRepository) ListForUser(ctx context.Context, userID uint, filter ListFilter) ([]models.Notification, error) {
	notifications := []models.Notification{}
	if filter.Limit != nil && *filter.Limit == 0 {
		return notifications, nil
	}

	q := r.db.WithContext(ctx).Where("id_usuario = ?", userID)
	if filter.Read != nil {
		q = q.Where("leida = ?", *filter.Read)
	}
	if filter.Limit != nil {
		q = q.Limit(*filter.Limit)
	}
	if err := q.Order("fecha DESC, id_notificacion DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *gormRepository) SetRead(ctx context.Context, id uint, read bool) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id_notificacion = ?", id).
		Update("leida", read).Error
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

func (r *gormRepository) ListPreferences(ctx context.Context, userID uint) ([]models.NotificationPreference, error) {
	prefs := []models.NotificationPreference{}
	if err := r.db.WithContext(ctx).Where("id_usuario = ?", userID).Order("tipo").Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to list notification preferences: %w", err)
	}
	return prefs, nil
}

// UpsertPreferences applies the whole batch in one transaction: update by
// (user, type), insert when nothing was updated.
func (r *gormRepository) UpsertPreferences(ctx context.Context, userID uint, items []PreferenceItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&models.NotificationPreference{}).
				Where("id_usuario = ? AND tipo = ?", userID, item.Type).
				Update("activo", item.Active)
			if res.Error != nil {
				return fmt.Errorf("failed to update preference %s: %w", item.Type, res.Error)
			}
			if res.RowsAffected > 0 {
				continue
			}
			pref := models.NotificationPreference{UserID: userID, Type: item.Type, Active: item.Active}
			if err := tx.Create(&pref).Error; err != nil {
				return fmt.Errorf("failed to insert preference %s: %w", item.Type, err)
			}
		}
		return nil
	})
}
