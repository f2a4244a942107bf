package db

import (
	"fmt"

	"github.com/warungpos/backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenLocal opens the device-local SQLite store holding the pending mutation
// queue. The schema is migrated in place since a till has no external
// migration step.
func OpenLocal(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("local store path is required")
	}

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	if err := conn.AutoMigrate(&models.PendingMutation{}); err != nil {
		return nil, fmt.Errorf("migrating local store: %w", err)
	}

	return conn, nil
}
