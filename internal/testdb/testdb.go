// Package testdb opens throwaway SQLite databases for package tests.
package testdb

import (
	"strings"
	"testing"

	"github.com/jimdaga/gestor/internal/database"
	"github.com/jimdaga/gestor/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory database unique to t with every model migrated
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db := OpenEmpty(t)
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// OpenEmpty returns an in-memory database with no tables, for tests that
// need to shape the schema themselves.
func OpenEmpty(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user row and fails the test on error
func CreateUser(t *testing.T, db *gorm.DB, email string, active bool) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleColaborador,
		Active:       active,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateProject inserts a project row and fails the test on error
func CreateProject(t *testing.T, db *gorm.DB, name string, pmID *uint) models.Project {
	t.Helper()
	project := models.Project{Name: name, PMID: pmID}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}
