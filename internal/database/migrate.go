package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/models"
)

// LedgerTable records applied SQL migrations
const LedgerTable = "schema_migrations"

// RunMigrations brings the schema up to date. SQLite uses gorm
// auto-migration, PostgreSQL applies the SQL files in migrationsDir.
func RunMigrations(db *gorm.DB, migrationsDir string) error {
	if db.Dialector.Name() == "sqlite" {
		log.Printf("Using GORM auto-migration for SQLite")
		return db.AutoMigrate(models.All()...)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	_, err = ApplySQLMigrations(sqlDB, migrationsDir)
	return err
}

// MigrationFiles lists the forward migration files in name order
func MigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// MigrationVersion is the file name prefix before the first underscore
func MigrationVersion(file string) string {
	return strings.SplitN(file, "_", 2)[0]
}

// ApplySQLMigrations runs every pending migration in its own transaction and
// returns the names of the files applied
func ApplySQLMigrations(db *sql.DB, dir string) ([]string, error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ` + LedgerTable + ` (
			version VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := MigrationFiles(dir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		version := MigrationVersion(file)

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM "+LedgerTable+" WHERE version = $1", version).Scan(&count); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Printf("Skipping migration %s (already applied)", file)
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return applied, fmt.Errorf("failed to start transaction: %w", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
		if _, err := tx.Exec("INSERT INTO "+LedgerTable+" (version, name) VALUES ($1, $2)", version, file); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %s: %w", file, err)
		}

		log.Printf("Applied migration %s", file)
		applied = append(applied, file)
	}
	return applied, nil
}

// RollbackLast undoes the most recent migration using its _rollback.sql file
func RollbackLast(db *sql.DB, dir string) (string, error) {
	var version, name string
	err := db.QueryRow("SELECT version, name FROM " + LedgerTable + " ORDER BY applied_at DESC, version DESC LIMIT 1").Scan(&version, &name)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(dir, strings.TrimSuffix(name, ".sql")+"_rollback.sql")
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return "", fmt.Errorf("rollback file not found: %s: %w", rollbackPath, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to execute rollback: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM "+LedgerTable+" WHERE version = $1", version); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit rollback: %w", err)
	}
	return name, nil
}
