package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/gestor/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DevUserEmail is the PM account created by SeedDevData
const DevUserEmail = "dev@gestor.local"

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	var existingUser models.User
	err := db.Where("email = ?", DevUserEmail).First(&existingUser).Error
	if err == nil {
		slog.Info("Seed data already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check seed data: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("dev-password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash dev password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		name := "Dev PM"
		user := models.User{
			Email:        DevUserEmail,
			PasswordHash: string(hash),
			Role:         models.RolePM,
			Name:         &name,
			Active:       true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		description := "Proyecto de ejemplo para desarrollo"
		project := models.Project{
			Name:        "Proyecto Demo",
			Description: &description,
			PMID:        &user.ID,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		task := models.Task{
			ProjectID:  project.ID,
			AssigneeID: &user.ID,
			Title:      "Configurar entorno",
			Priority:   models.PriorityAlta,
			Status:     models.TaskStatusPendiente,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		target := 100.0
		kpi := models.KPI{
			Name:        "Tareas completadas",
			TargetValue: &target,
			Type:        models.KPITypeOperacional,
			ProjectID:   &project.ID,
		}
		if err := tx.Create(&kpi).Error; err != nil {
			return err
		}

		slog.Info("Seeded dev data: 1 user, 1 project, 1 task, 1 KPI", "email", DevUserEmail)
		return nil
	})
}
