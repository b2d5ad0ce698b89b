// Package store persists quotes and the editable price book in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
)

// createdLayout sorts lexically in time order.
const createdLayout = "2006-01-02 15:04:05.000000"

// ErrNotFound is returned when a quote number does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a quote number is already stored.
var ErrDuplicate = errors.New("quote number already exists")

// Store reads and writes quotes and prices. The schema comes from the
// migrations package.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Summary is one row of the quote list.
type Summary struct {
	QuoteNumber string    `json:"quote_number"`
	ProjectName string    `json:"project_name"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	Total       float64   `json:"total"`
}

// Save stores a quote snapshot. Stored quotes are never replaced; a number
// that is already taken fails with ErrDuplicate.
func (s *Store) Save(q quote.Quote) error {
	if q.QuoteNumber == "" {
		return fmt.Errorf("save quote: quote number is required")
	}
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", q.QuoteNumber, err)
	}
	res, err := s.db.Exec(`
		INSERT INTO quotes (quote_number, project_name, quote_date, created_at, total, notes, quote_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(quote_number) DO NOTHING
	`,
		q.QuoteNumber,
		q.ProjectName,
		q.Date,
		q.CreatedAt.UTC().Format(createdLayout),
		quote.RoundCents(q.Total()),
		strings.Join(q.Notes, "\n"),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", q.QuoteNumber, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", q.QuoteNumber, err)
	}
	if n == 0 {
		return fmt.Errorf("save quote %s: %w", q.QuoteNumber, ErrDuplicate)
	}
	return nil
}

// List returns stored quotes newest first. A non-empty query filters by
// project name, quote number or notes.
func (s *Store) List(query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT quote_number, project_name, quote_date, created_at, total
		FROM quotes
		WHERE (? = '' OR project_name LIKE ? OR quote_number LIKE ? OR notes LIKE ?)
		ORDER BY created_at DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var item Summary
		var created string
		if err := rows.Scan(&item.QuoteNumber, &item.ProjectName, &item.Date, &created, &item.Total); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		item.CreatedAt, _ = time.Parse(createdLayout, created)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return out, nil
}

// Get loads the stored snapshot of a quote without repricing it.
func (s *Store) Get(number string) (quote.Quote, error) {
	var data string
	err := s.db.QueryRow(`SELECT quote_json FROM quotes WHERE quote_number = ?`, number).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return quote.Quote{}, fmt.Errorf("quote %s: %w", number, ErrNotFound)
	}
	if err != nil {
		return quote.Quote{}, fmt.Errorf("query quote %s: %w", number, err)
	}
	var q quote.Quote
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		return quote.Quote{}, fmt.Errorf("decode quote %s: %w", number, err)
	}
	return q, nil
}

// Prices returns the stored price table.
func (s *Store) Prices() (map[string]float64, error) {
	rows, err := s.db.Query(`SELECT key, price FROM price_book ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query price book: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64)
	for rows.Next() {
		var key string
		var price float64
		if err := rows.Scan(&key, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices[key] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price book: %w", err)
	}
	return prices, nil
}

// PriceBook builds a price book from the stored table. An empty table yields
// the built-in defaults.
func (s *Store) PriceBook() (*pricebook.PriceBook, error) {
	prices, err := s.Prices()
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return pricebook.Default(), nil
	}
	return pricebook.New(prices)
}

// SetPrice inserts or updates one price.
func (s *Store) SetPrice(key string, price float64) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return &pricebook.ConfigurationError{Err: fmt.Errorf("price key is required")}
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return &pricebook.ConfigurationError{Err: fmt.Errorf("price for %q must be a non-negative number", key)}
	}
	_, err := s.db.Exec(`
		INSERT INTO price_book (key, price, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET price = excluded.price, updated_at = CURRENT_TIMESTAMP
	`, key, price)
	if err != nil {
		return fmt.Errorf("upsert price %s: %w", key, err)
	}
	return nil
}
