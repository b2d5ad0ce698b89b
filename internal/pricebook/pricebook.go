// Package pricebook maps price keys to unit prices. Prices are pre-markup;
// callers apply the markup multiplier where the price is used.
package pricebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// Fallback prices used by the calculator when a key is missing from the book.
const (
	FallbackInsulation     = 5.00
	FallbackFacing         = 1.25
	FallbackAluminumJacket = 8.50
	FallbackMastic         = 0.75
	FallbackStainlessBands = 2.50
)

// Keys the calculator looks up directly.
const (
	KeyFSKFacing      = "fsk_facing"
	KeyAluminumJacket = "aluminum_jacket"
	KeyMastic         = "mastic"
	KeyStainlessBands = "stainless_bands"
	KeyPVCJacket20Mil = "pvc_jacket_20mil"
)

var defaultPrices = map[string]float64{
	// insulation, per LF
	"fiberglass_1.5":     4.50,
	"fiberglass_2.0":     5.75,
	"elastomeric_0.5":    3.25,
	"elastomeric_1.0":    4.50,
	"cellular_glass_1.0": 6.75,
	"mineral_wool_1.5":   5.25,

	// facings and jackets, per SF
	"fsk_facing":       1.25,
	"asj_facing":       1.75,
	"aluminum_jacket":  8.50,
	"pvc_jacket_20mil": 3.75,
	"pvc_jacket_30mil": 4.50,
	"stainless_jacket": 12.50,

	// accessories
	"mastic":             0.75,
	"stainless_bands":    2.50,
	"pvc_fitting_covers": 8.50,
	"adhesive":           12.50,
	"vapor_seal":         15.00,
	"metal_corner_beads": 1.25,
	"self_adhering_tape": 0.45,

	// labor modifiers
	"standard_labor": 1.0,
	"premium_labor":  1.25,
	"outdoor_labor":  1.15,
	"height_labor":   1.20,
}

// ConfigurationError reports an unusable price book source.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "price book: " + e.Err.Error()
	}
	return fmt.Sprintf("price book %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// PriceBook is immutable after construction and safe for concurrent reads.
type PriceBook struct {
	prices map[string]float64
}

// Default returns the built-in price table.
func Default() *PriceBook {
	b, _ := New(defaultPrices)
	return b
}

// New copies prices into a book. Negative or non-finite prices are rejected.
func New(prices map[string]float64) (*PriceBook, error) {
	cp := make(map[string]float64, len(prices))
	for k, v := range prices {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ConfigurationError{Err: fmt.Errorf("price %q is not a finite number", k)}
		}
		if v < 0 {
			return nil, &ConfigurationError{Err: fmt.Errorf("price %q is negative", k)}
		}
		cp[k] = v
	}
	return &PriceBook{prices: cp}, nil
}

// Load returns the default book for an empty path, otherwise the file's prices
// used as-is. Keys missing from the file fall back per call site, not to the
// default table.
func Load(path string) (*PriceBook, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	book, err := Parse(bytes.NewReader(b))
	if err != nil {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) {
			cerr.Path = path
			return nil, cerr
		}
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return book, nil
}

// Parse reads a flat JSON object of key to price.
func Parse(r io.Reader) (*PriceBook, error) {
	var raw map[string]json.Number
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("decode: %w", err)}
	}
	prices := make(map[string]float64, len(raw))
	for k, n := range raw {
		f, err := n.Float64()
		if err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("price %q is not numeric", k)}
		}
		prices[k] = f
	}
	return New(prices)
}

// PriceFor returns the price for key, or fallback when the key is absent.
func (b *PriceBook) PriceFor(key string, fallback float64) float64 {
	if b == nil {
		return fallback
	}
	if p, ok := b.prices[key]; ok {
		return p
	}
	return fallback
}

// Lookup reports the price for key and whether it is present.
func (b *PriceBook) Lookup(key string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	p, ok := b.prices[key]
	return p, ok
}

// Keys returns the book's keys in sorted order.
func (b *PriceBook) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, 0, len(b.prices))
	for k := range b.prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prices returns a copy of the table.
func (b *PriceBook) Prices() map[string]float64 {
	out := make(map[string]float64, len(b.Keys()))
	for _, k := range b.Keys() {
		out[k] = b.prices[k]
	}
	return out
}

// Len is the number of priced keys.
func (b *PriceBook) Len() int {
	if b == nil {
		return 0
	}
	return len(b.prices)
}

// With returns a copy of the book with key set to price.
func (b *PriceBook) With(key string, price float64) (*PriceBook, error) {
	p := b.Prices()
	p[key] = price
	return New(p)
}

// WriteJSON writes the book as a flat, indented JSON object.
func (b *PriceBook) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b.Prices())
}
