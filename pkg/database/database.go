package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"teamtask/configs"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const pingTimeout = 5 * time.Second

// DSN builds a modernc sqlite DSN with foreign keys enforced.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)
}

// ConnectDB opens the SQLite file from cfg, creating its directory if needed.
func ConnectDB(cfg configs.Config) (*sqlx.DB, error) {
	if cfg.DBPath != ":memory:" {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}
	return Open(cfg.DBPath)
}

// Open connects to path (":memory:" is accepted) and verifies the connection.
//
// SQLite serializes writers anyway; a single connection keeps an in-memory
// database alive and shared for the life of the pool.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
