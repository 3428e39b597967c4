package config

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/outreachhq/sequencer/models"
)

var DB *gorm.DB

// ConnectDB opens the Postgres connection pool and runs AutoMigrate
// against every model the engine owns.
func ConnectDB(cfg *Config) error {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	return migrateDB(db)
}

func migrateDB(db *gorm.DB) error {
	log.Println("running auto-migration")
	if err := db.AutoMigrate(
		&models.Sender{},
		&models.Signature{},
		&models.Sequence{},
		&models.SequenceStep{},
		&models.Template{},
		&models.Recipient{},
		&models.Enrollment{},
		&models.LogEntry{},
		&models.WarmupCount{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
