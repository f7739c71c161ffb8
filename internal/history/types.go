package history

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("history storage disabled")

// Config configures price-history persistence.
//
// Driver values:
//   - "file": single JSON file, dependency-free (default)
//   - "sqlite": SQLite database file (optional build tag)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// PriceRecord is one store's price inside a check.
type PriceRecord struct {
	Store       string  `json:"store"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	URL         string  `json:"url,omitempty"`
}

// Check is one full verification pass across all stores.
type Check struct {
	At     time.Time     `json:"timestamp"`
	Prices []PriceRecord `json:"prices"`
}

// TrendPoint is one observation of a single store over time.
type TrendPoint struct {
	At          time.Time `json:"timestamp"`
	Price       float64   `json:"price"`
	ProductName string    `json:"product_name"`
}
