package testutil

import (
	"testing"

	"anoa.com/tanyajawab/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens an in-memory SQLite database with every table migrated.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// A single connection so every session (including concurrent test
	// goroutines) sees the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Level{},
		&model.XpLog{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Task{},
		&model.UserTask{},
		&model.AchievementLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}
