// Package seed fills a fresh database with the admin user and the default
// price book.
package seed

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// PriceBook, when set, replaces the price_book table so it matches the
	// book exactly. Nil only fills in missing default prices.
	PriceBook *pricebook.PriceBook
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
	Deletes int
}

// Run executes the startup seed in an idempotent way. Without a configured
// price book, prices already in the table are left alone so edits made
// through the admin API survive restarts.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if cfg.PriceBook != nil {
		err = replacePrices(tx, cfg.PriceBook, &stats)
	} else {
		err = ensurePrices(tx, pricebook.Default(), &stats)
	}
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hash); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("generate bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func ensurePrices(tx *sql.Tx, book *pricebook.PriceBook, stats *Stats) error {
	for _, key := range book.Keys() {
		price, _ := book.Lookup(key)
		res, err := tx.Exec(`INSERT INTO price_book (key, price) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`, key, price)
		if err != nil {
			return fmt.Errorf("insert price %s: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count inserted price %s: %w", key, err)
		}
		stats.Inserts += int(n)
	}
	return nil
}

// replacePrices makes the table hold exactly the prices in book.
func replacePrices(tx *sql.Tx, book *pricebook.PriceBook, stats *Stats) error {
	rows, err := tx.Query(`SELECT key, price FROM price_book`)
	if err != nil {
		return fmt.Errorf("query price book: %w", err)
	}
	current := make(map[string]float64)
	for rows.Next() {
		var key string
		var price float64
		if err := rows.Scan(&key, &price); err != nil {
			rows.Close()
			return fmt.Errorf("scan price: %w", err)
		}
		current[key] = price
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate prices: %w", err)
	}
	rows.Close()

	for key := range current {
		if _, ok := book.Lookup(key); ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM price_book WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete price %s: %w", key, err)
		}
		stats.Deletes++
	}
	for _, key := range book.Keys() {
		price, _ := book.Lookup(key)
		old, ok := current[key]
		switch {
		case !ok:
			if _, err := tx.Exec(`INSERT INTO price_book (key, price) VALUES (?, ?)`, key, price); err != nil {
				return fmt.Errorf("insert price %s: %w", key, err)
			}
			stats.Inserts++
		case old != price:
			if _, err := tx.Exec(`UPDATE price_book SET price = ?, updated_at = CURRENT_TIMESTAMP WHERE key = ?`, price, key); err != nil {
				return fmt.Errorf("update price %s: %w", key, err)
			}
			stats.Updates++
		}
	}
	return nil
}
