// Package db opens the SQLite database backing the quote server.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Memory is the DSN of a private in-memory database.
const Memory = ":memory:"

// Open opens a SQLite database, sets recommended pragmas, and validates connectivity.
// An in-memory database is pinned to one connection so every query sees the
// same data.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	pragmas := `
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`
	if dbPath == Memory {
		db.SetMaxOpenConns(1)
		pragmas = `PRAGMA foreign_keys = ON;`
	}

	if _, err := db.Exec(pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}
