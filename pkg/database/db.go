package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SharedMemoryDSN keeps the card store in shared-cache memory so every
// connection in the process (readers and the ingest writer) sees the same
// database without touching disk.
const SharedMemoryDSN = "file:cardmirror?mode=memory&cache=shared"

type Config struct {
	DSN string
}

func DefaultConfig() Config {
	if dsn := os.Getenv("CARDMIRROR_DB_DSN"); dsn != "" {
		return Config{DSN: dsn}
	}
	return Config{DSN: SharedMemoryDSN}
}

func Open(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	// WAL only makes sense for file-backed stores
	if !strings.Contains(cfg.DSN, "mode=memory") && cfg.DSN != ":memory:" {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma journal_mode: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

func MustOpen(cfg Config) *sql.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	return db
}

// KeepAlive pins one connection for the process lifetime. A shared-memory
// sqlite database is dropped when its last connection closes, and the pool
// is free to close idle connections at any time.
func KeepAlive(ctx context.Context, db *sql.DB) (*sql.Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("keep-alive conn: %w", err)
	}
	return conn, nil
}
