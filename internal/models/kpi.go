package models

import (
	"time"
)

// KPI type constants
const (
	KPITypeFinanciero  = "Financiero"
	KPITypeOperacional = "Operacional"
	KPITypeCliente     = "Cliente"
	KPITypeMarketing   = "Marketing"
)

// KPI tracks a current value against an optional target
type KPI struct {
	ID           uint      `gorm:"column:id_kpi;primaryKey" json:"id_kpi"`
	Name         string    `gorm:"column:nombre;size:150;not null" json:"nombre"`
	Description  *string   `gorm:"column:descripcion;type:text" json:"descripcion"`
	TargetValue  *float64  `gorm:"column:valor_objetivo" json:"valor_objetivo"`
	CurrentValue float64   `gorm:"column:valor_actual;not null;default:0" json:"valor_actual"`
	Type         string    `gorm:"column:tipo;size:20;not null" json:"tipo"`
	ProjectID    *uint     `gorm:"column:id_proyecto;index" json:"id_proyecto"`
	CreatedAt    time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
}

func (KPI) TableName() string { return "kpis" }
