package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/FSE-2025/helpdesk-service/internal/config"
	"github.com/FSE-2025/helpdesk-service/internal/models"
)

// InitDatabase opens the postgres connection and applies the schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Invite{},
		&models.OneTimePassword{},
		&models.Message{},
		&models.Question{},
		&models.Answer{},
		&models.PrivateMessage{},
		&models.Announcement{},
		&models.StaffMessage{},
		&models.ReadMessage{},
		&models.AdminRequest{},
		&models.ReviewerRequest{},
		&models.Review{},
		&models.AuditLog{},
	)
}
