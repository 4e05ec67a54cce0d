package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ewen-lbh/loca7/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.EmailValidation{},
		&entities.PasswordReset{},
		&entities.Appartment{},
		&entities.Photo{},
		&entities.PublicTransportStation{},
		&entities.TravelTimeToSchool{},
		&entities.AppartmentLike{},
		&entities.Report{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListTables returns every user table in the database, excluding
// SQLite's internal bookkeeping tables.
func (d *Database) ListTables() ([]string, error) {
	var tables []string
	err := d.DB.
		Raw(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).
		Scan(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// Truncate removes every row of a table and resets its autoincrement
// counter if it has one.
func (d *Database) Truncate(table string) error {
	if err := d.DB.Exec(fmt.Sprintf("DELETE FROM %q", table)).Error; err != nil {
		return fmt.Errorf("failed to truncate table %s: %w", table, err)
	}
	// sqlite_sequence only exists once an AUTOINCREMENT table was created.
	d.DB.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
	return nil
}

// SetForeignKeyChecks toggles referential-integrity enforcement for the
// current connection. Used around destructive bulk operations.
func (d *Database) SetForeignKeyChecks(enabled bool) error {
	pragma := "OFF"
	if enabled {
		pragma = "ON"
	}
	if err := d.DB.Exec("PRAGMA foreign_keys = " + pragma).Error; err != nil {
		return fmt.Errorf("failed to set foreign_keys pragma: %w", err)
	}
	return nil
}
