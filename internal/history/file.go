package history

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "pricemon/pkg/logx"
)

const defaultFilePath = "./price_history.json"

// fileStore keeps the whole history in one JSON document, matching the layout
// the monitor has always written:
//
//	{"created_at": "...", "history": [{"timestamp": "...", "prices": [...]}]}
type fileStore struct {
	mu   sync.Mutex
	path string
	log  logx.Logger
}

type fileDoc struct {
	CreatedAt time.Time `json:"created_at"`
	History   []Check   `json:"history"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = defaultFilePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	st := &fileStore{path: path, log: log}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := st.write(fileDoc{CreatedAt: time.Now()}); err != nil {
			return nil, err
		}
		log.Debug("history file created", logx.String("path", path))
	}
	return st, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) read() (fileDoc, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileDoc{CreatedAt: time.Now()}, nil
		}
		return fileDoc{}, err
	}
	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return fileDoc{}, err
	}
	return doc, nil
}

func (s *fileStore) write(doc fileDoc) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	// Write-then-rename so a crash mid-write can't truncate the history.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *fileStore) AppendCheck(ctx context.Context, c Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.At.IsZero() {
		c.At = time.Now()
	}
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.History = append(doc.History, c)
	if err := s.write(doc); err != nil {
		return err
	}
	s.log.Debug("price check saved", logx.Int("stores", len(c.Prices)))
	return nil
}

func (s *fileStore) LatestCheck(ctx context.Context) (*Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if len(doc.History) == 0 {
		return nil, nil
	}
	c := doc.History[len(doc.History)-1]
	return &c, nil
}

func (s *fileStore) PreviousCheck(ctx context.Context) (*Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if len(doc.History) < 2 {
		return nil, nil
	}
	c := doc.History[len(doc.History)-2]
	return &c, nil
}

func (s *fileStore) Trend(ctx context.Context, store string) ([]TrendPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	trend := make([]TrendPoint, 0, len(doc.History))
	for _, check := range doc.History {
		for _, p := range check.Prices {
			if p.Store == store {
				trend = append(trend, TrendPoint{At: check.At, Price: p.Price, ProductName: p.ProductName})
			}
		}
	}
	return trend, nil
}

func (s *fileStore) LowestPrice(ctx context.Context, store string) (*PriceRecord, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, time.Time{}, err
	}
	var lowest *PriceRecord
	var at time.Time
	for _, check := range doc.History {
		for i := range check.Prices {
			p := check.Prices[i]
			if store != "" && p.Store != store {
				continue
			}
			if p.Price <= 0 {
				continue
			}
			if lowest == nil || p.Price < lowest.Price {
				cp := p
				lowest = &cp
				at = check.At
			}
		}
	}
	return lowest, at, nil
}
