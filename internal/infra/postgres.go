package infra

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/pkg/config"
)

func InitPostgresql(cfg *config.Config) *gorm.DB {
	// TranslateError lets repositories detect unique-index violations
	// as gorm.ErrDuplicatedKey (webhook redelivery dedupe).
	db, err := gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("Error connecting to database: %v", err)
	}

	if err := db.AutoMigrate(
		&db_models.User{},
		&db_models.Analysis{},
		&db_models.PaymentLog{},
	); err != nil {
		logrus.Fatalf("Error migrating database schema: %v", err)
	}

	return db
}

func ClosePostgresql(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Errorf("Error getting database instance: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.Errorf("Error closing database connection: %v", err)
	}
}
