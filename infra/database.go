package infra

import (
	"errors"
	"fmt"
	"time"

	infrarepo "github.com/monegment/monegment/infra/repository"
	"github.com/monegment/monegment/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrMissingDatabaseURL is returned when DATABASE_URL is empty.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// NewDBConnection opens the Postgres pool. SQL is logged in development only.
func NewDBConnection(cnf *config.DB, appEnv string) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, ErrMissingDatabaseURL
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	connection, err := gorm.Open(postgres.Open(cnf.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return connection, nil
}

// AutoMigrate creates or updates the transactions, goals and budgets tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(infrarepo.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
