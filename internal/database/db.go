package database

import (
	"fmt"
	"time"

	"tiffin/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var db *gorm.DB

// InitDB initializes the database connection. Dialect is "sqlite3" or
// "postgres"; dsn is a file path for sqlite and a connection string for
// postgres.
func InitDB(dialect, dsn string) (*gorm.DB, error) {
	var err error
	db, err = gorm.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.DB().SetConnMaxLifetime(time.Hour)

	return db, nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Migrate creates and updates all required tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.UserInteraction{},
	).Error
}
