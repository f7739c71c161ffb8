//go:build sqlite
// +build sqlite

package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "pricemon/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendCheck(ctx context.Context, c Check) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO checks(at) VALUES(?)`, c.At.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	checkID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, p := range c.Prices {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO prices(check_id, store, product_name, price, currency, url) VALUES(?,?,?,?,?,?)`,
			checkID, p.Store, nullStr(p.ProductName), p.Price, nullStr(p.Currency), nullStr(p.URL),
		)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Debug("price check saved", logx.Int("stores", len(c.Prices)))
	return nil
}

func (s *sqliteStore) checkByOffset(ctx context.Context, offset int) (*Check, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	var id int64
	var at string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, at FROM checks ORDER BY id DESC LIMIT 1 OFFSET ?`, offset,
	).Scan(&id, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c := &Check{}
	c.At, _ = time.Parse(time.RFC3339Nano, at)

	rows, err := s.db.QueryContext(ctx,
		`SELECT store, COALESCE(product_name,''), price, COALESCE(currency,''), COALESCE(url,'')
		 FROM prices WHERE check_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p PriceRecord
		if err := rows.Scan(&p.Store, &p.ProductName, &p.Price, &p.Currency, &p.URL); err != nil {
			return nil, err
		}
		c.Prices = append(c.Prices, p)
	}
	return c, rows.Err()
}

func (s *sqliteStore) LatestCheck(ctx context.Context) (*Check, error) {
	return s.checkByOffset(ctx, 0)
}

func (s *sqliteStore) PreviousCheck(ctx context.Context) (*Check, error) {
	return s.checkByOffset(ctx, 1)
}

func (s *sqliteStore) Trend(ctx context.Context, store string) ([]TrendPoint, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.at, p.price, COALESCE(p.product_name,'')
		 FROM prices p JOIN checks c ON c.id = p.check_id
		 WHERE p.store = ? ORDER BY c.id`, store)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []TrendPoint
	for rows.Next() {
		var at string
		var tp TrendPoint
		if err := rows.Scan(&at, &tp.Price, &tp.ProductName); err != nil {
			return nil, err
		}
		tp.At, _ = time.Parse(time.RFC3339Nano, at)
		trend = append(trend, tp)
	}
	return trend, rows.Err()
}

func (s *sqliteStore) LowestPrice(ctx context.Context, store string) (*PriceRecord, time.Time, error) {
	if s == nil || s.db == nil {
		return nil, time.Time{}, ErrDisabled
	}
	q := `SELECT c.at, p.store, COALESCE(p.product_name,''), p.price, COALESCE(p.currency,''), COALESCE(p.url,'')
	      FROM prices p JOIN checks c ON c.id = p.check_id
	      WHERE p.price > 0`
	args := []any{}
	if store != "" {
		q += ` AND p.store = ?`
		args = append(args, store)
	}
	q += ` ORDER BY p.price ASC LIMIT 1`

	var at string
	var p PriceRecord
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&at, &p.Store, &p.ProductName, &p.Price, &p.Currency, &p.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, _ := time.Parse(time.RFC3339Nano, at)
	return &p, ts, nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
