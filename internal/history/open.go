package history

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "pricemon/pkg/logx"
)

// Store is the persistence API the monitor uses for price history.
// A returned nil *Check means "no history yet", not an error.
type Store interface {
	AppendCheck(ctx context.Context, c Check) error
	LatestCheck(ctx context.Context) (*Check, error)
	PreviousCheck(ctx context.Context) (*Check, error)
	Trend(ctx context.Context, store string) ([]TrendPoint, error)
	LowestPrice(ctx context.Context, store string) (*PriceRecord, time.Time, error)
	Close() error
}

// Open initializes the configured store. An empty driver defaults to the
// file backend.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown history driver: " + driver)
	}
}
