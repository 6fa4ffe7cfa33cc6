package models

import (
	"time"
)

// Role values accepted on registration
const (
	RolePM          = "PM"
	RoleColaborador = "Colaborador"
	RoleStakeholder = "Stakeholder"
)

// User represents an account in the pre-existing usuarios table
type User struct {
	ID           uint      `gorm:"column:id_usuario;primaryKey" json:"id_usuario"`
	Email        string    `gorm:"column:email;size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         string    `gorm:"column:rol;size:20;not null" json:"rol"`
	Name         *string   `gorm:"column:nombre;size:150" json:"nombre"`
	RegisteredAt time.Time `gorm:"column:fecha_registro;autoCreateTime" json:"fecha_registro"`
	Active       bool      `gorm:"column:activo;not null" json:"activo"`
}

func (User) TableName() string { return "usuarios" }
