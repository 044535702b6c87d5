// Package database opens the postgres connection and keeps the schema
// current.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/snapdish/snapdish-api/config"
	"github.com/snapdish/snapdish-api/internal/models"
)

// New connects to postgres with pooling suitable for a small API fleet.
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey, which the ingest dedup path relies on.
func New(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	return db, nil
}

// Migrate installs the pgvector extension and migrates the recipe tables.
// Safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("installing vector extension: %w", err)
		}
	}

	return db.AutoMigrate(
		&models.Recipe{},
		&models.DescriptionEmbedding{},
		&models.IngredientsEmbedding{},
	)
}
