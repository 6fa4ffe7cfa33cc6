package models

import (
	"time"
)

// Notification types emitted by the services
const (
	NotificationTaskAssigned = "tarea_asignada"
	NotificationKPICreated   = "kpi_creada"
	NotificationTest         = "prueba"
)

// Notification is a per-user message. Only the read flag is ever updated.
type Notification struct {
	ID        uint      `gorm:"column:id_notificacion;primaryKey" json:"id_notificacion"`
	UserID    uint      `gorm:"column:id_usuario;not null;index" json:"id_usuario"`
	Type      string    `gorm:"column:tipo;size:50;not null" json:"tipo"`
	Title     string    `gorm:"column:titulo;size:200;not null" json:"titulo"`
	Body      *string   `gorm:"column:mensaje;type:text" json:"mensaje"`
	Link      *string   `gorm:"column:link;size:300" json:"link"`
	CreatedAt time.Time `gorm:"column:fecha;autoCreateTime" json:"fecha"`
	Read      bool      `gorm:"column:leida;not null;default:false" json:"leida"`
}

func (Notification) TableName() string { return "notificaciones" }

// NotificationPreference toggles one notification type for one user.
// A missing row means the type is enabled.
type NotificationPreference struct {
	UserID uint   `gorm:"column:id_usuario;primaryKey;autoIncrement:false" json:"id_usuario"`
	Type   string `gorm:"column:tipo;size:50;primaryKey" json:"tipo"`
	Active bool   `gorm:"column:activo;not null" json:"activo"`
}

func (NotificationPreference) TableName() string { return "config_notificaciones" }

// All lists every model, in dependency order, for AutoMigrate in tests and dev
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Task{},
		&TimeEntry{},
		&KPI{},
		&Notification{},
		&NotificationPreference{},
	}
}
