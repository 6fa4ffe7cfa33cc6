package models

import (
	"time"
)

// Task priority constants
const (
	PriorityAlta  = "Alta"
	PriorityMedia = "Media"
	PriorityBaja  = "Baja"
)

// Task status constants
const (
	TaskStatusPendiente  = "Pendiente"
	TaskStatusEnProgreso = "En progreso"
	TaskStatusCompletada = "Completada"
)

// Task represents a unit of work inside a project.
// TotalHours is aggregated from tiempo_tareas on read and never stored.
type Task struct {
	ID          uint      `gorm:"column:id_tarea;primaryKey" json:"id_tarea"`
	ProjectID   uint      `gorm:"column:id_proyecto;not null;index" json:"id_proyecto"`
	AssigneeID  *uint     `gorm:"column:id_usuario_asignado;index" json:"id_usuario_asignado"`
	Title       string    `gorm:"column:titulo;size:150;not null" json:"titulo"`
	Description *string   `gorm:"column:descripcion;type:text" json:"descripcion"`
	CreatedAt   time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
	DueDate     *Date     `gorm:"column:fecha_vencimiento" json:"fecha_vencimiento"`
	Priority    string    `gorm:"column:prioridad;size:10;not null" json:"prioridad"`
	Progress    float64   `gorm:"column:progreso;not null" json:"progreso"`
	Status      string    `gorm:"column:estado;size:15;not null" json:"estado"`
	TotalHours  float64   `gorm:"-" json:"total_horas"`
}

func (Task) TableName() string { return "tareas" }

// IsTaskStatus reports whether s is one of the three task statuses
func IsTaskStatus(s string) bool {
	switch s {
	case TaskStatusPendiente, TaskStatusEnProgreso, TaskStatusCompletada:
		return true
	}
	return false
}

// DeriveStatus maps a progress percentage to a status, clamping the
// progress to [0, 100] at the edges.
func DeriveStatus(progress float64) (float64, string) {
	switch {
	case progress >= 100:
		return 100, TaskStatusCompletada
	case progress <= 0:
		return 0, TaskStatusPendiente
	default:
		return progress, TaskStatusEnProgreso
	}
}

// TimeEntry is one logged block of hours against a task
type TimeEntry struct {
	ID         uint      `gorm:"column:id_registro;primaryKey" json:"id_registro"`
	TaskID     uint      `gorm:"column:id_tarea;not null;index" json:"id_tarea"`
	UserID     uint      `gorm:"column:id_usuario;not null" json:"id_usuario"`
	Hours      float64   `gorm:"column:horas;not null" json:"horas"`
	RecordedAt time.Time `gorm:"column:fecha_registro;autoCreateTime" json:"fecha_registro"`
	Note       *string   `gorm:"column:nota;type:text" json:"nota,omitempty"`
}

func (TimeEntry) TableName() string { return "tiempo_tareas" }
