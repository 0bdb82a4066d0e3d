// Package database opens the SQLite file behind the bot and maps its tables with GORM.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultPath is used when Open is given an empty path.
const DefaultPath = "Data/Database.sqlite"

// Open opens (or creates) a SQLite database file and wraps it with GORM.
// Query logging is disabled.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	d, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{Conn: d}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}
	return db, nil
}

// dsn appends the connection parameters go-sqlite3 applies to every pooled connection.
// In-memory databases have no journal file, so WAL is only requested for files.
func dsn(path string) string {
	params := "_busy_timeout=5000"
	if !strings.Contains(path, ":memory:") && !strings.Contains(path, "mode=memory") {
		params += "&_journal_mode=WAL"
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// Sync creates or alters tables so that they match the registered models.
func Sync(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("failed to sync schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	d, err := db.DB()
	if err != nil {
		return err
	}
	return d.Close()
}
