// Package db owns the database connection and schema for the quote builder.
package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmcsuite/quotebuilder/internal/config"
	"github.com/dmcsuite/quotebuilder/internal/models"
)

// Connect opens the database (postgres when a DSN is configured, the sqlite
// file otherwise), migrates the schema, and seeds when DB_SEED is set.
func Connect(cfg config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var conn *gorm.DB
	var err error
	if dsn := NormalizeDSN(cfg.DatabaseDSN); dsn != "" {
		for i := 0; i < 10; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Println("[db] retrying connection...", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("connect postgres after retries: %w", err)
		}
	} else {
		conn, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(conn)
	}
	return conn, nil
}

// Migrate applies the schema for every record collection.
func Migrate(conn *gorm.DB) error {
	for _, m := range []any{&models.Quote{}, &models.QuoteDay{}, &models.QuoteItem{}, &models.CatalogEntry{}} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// seed inserts a small starter catalog so a fresh install has something to
// drag onto the timeline.
func seed(conn *gorm.DB) {
	starters := []models.CatalogEntry{
		{Category: models.CategoryAccommodations, Name: "Strandhotel Zeezicht", Location: "Zandvoort", Description: "Double room, breakfast included", StandardRate: 145, Source: models.SourceCatalog, Starred: true},
		{Category: models.CategoryTransfers, Name: "Airport transfer (private)", Location: "Schiphol", StandardRate: 60, Source: models.SourceCatalog},
		{Category: models.CategoryExcursions, Name: "Canal cruise", Location: "Amsterdam", Description: "90 minutes, skip the line", StandardRate: 24.5, Source: models.SourceCatalog},
		{Category: models.CategoryPackages, Name: "Weekend city break", Location: "Rotterdam", StandardRate: 320, Source: models.SourceCatalog},
		{Category: models.CategoryFlights, Name: "AMS - PMI return", StandardRate: 189, Source: models.SourceCatalog},
	}
	for _, e := range starters {
		var existing models.CatalogEntry
		if err := conn.Where("category = ? AND name = ?", e.Category, e.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			conn.Create(&e)
		}
	}
}
