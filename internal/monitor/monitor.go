package monitor

import (
	"context"
	"fmt"
	"time"

	"pricemon/internal/config"
	"pricemon/internal/history"
	"pricemon/internal/notify"
	"pricemon/internal/scrape"
	logx "pricemon/pkg/logx"
)

// fallbackMaxPrice applies when neither the product nor default_max_price
// sets a threshold.
const fallbackMaxPrice = 600.0

// Monitor runs price checks: scrape every configured store, persist the
// check, compare against thresholds and alert on opportunities.
//
// It always reads the latest committed config from the manager, so the
// scheduled mode picks up edits between runs.
type Monitor struct {
	mgr *config.Manager
	log logx.Logger
}

func New(mgr *config.Manager, log logx.Logger) *Monitor {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Monitor{mgr: mgr, log: log}
}

// RunCheck executes one full verification pass. It fails only when no store
// yielded a price (so a scheduled oneshot run reports a meaningful exit
// status); a partial scrape or a failed alert send is logged, not fatal.
func (m *Monitor) RunCheck(ctx context.Context) error {
	cfg := m.mgr.Get()
	if cfg == nil {
		return fmt.Errorf("no config loaded")
	}

	start := time.Now()
	m.log.Info("starting price check", logx.Int("products", len(cfg.Products)))

	prices := m.scrapeAll(ctx, cfg)
	if len(prices) == 0 {
		m.log.Warn("no prices obtained in this check")
		return fmt.Errorf("no prices obtained from %d store(s)", len(cfg.Products))
	}

	store, err := m.openHistory(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	// Previous check is read before appending so "previous" means the prior run.
	prev, err := store.LatestCheck(ctx)
	if err != nil {
		m.log.Warn("could not load previous prices", logx.Err(err))
	}
	if err := store.AppendCheck(ctx, history.Check{At: start, Prices: prices}); err != nil {
		return fmt.Errorf("save check: %w", err)
	}

	opportunities := findOpportunities(cfg, prices, prev, m.log)
	if len(opportunities) == 0 {
		m.log.Info("no opportunities found",
			logx.Int("stores", len(prices)),
			logx.Duration("took", time.Since(start)))
		return nil
	}

	notifier, err := notify.New(cfg.Email, m.log)
	if err != nil {
		m.log.Error("notifier misconfigured", logx.Err(err))
		return nil
	}
	if notifier == nil {
		m.log.Warn("opportunities found but email is not configured",
			logx.Int("opportunities", len(opportunities)))
		return nil
	}
	if err := notifier.SendAlert(ctx, opportunities); err != nil {
		m.log.Error("alert send failed", logx.Err(err))
	}
	return nil
}

func (m *Monitor) scrapeAll(ctx context.Context, cfg *config.Config) []history.PriceRecord {
	delay, _ := config.ParseDurationOrDefault("settings.request_delay", cfg.Settings.RequestDelay, 5*time.Second)
	timeout, _ := config.ParseDurationOrDefault("settings.request_timeout", cfg.Settings.RequestTimeout, 30*time.Second)

	client := scrape.NewClient(scrape.Options{
		Delay:     delay,
		Timeout:   timeout,
		UserAgent: cfg.Settings.UserAgent,
		Log:       m.log,
	})

	prices := make([]history.PriceRecord, 0, len(cfg.Products))
	for _, product := range cfg.Products {
		if ctx.Err() != nil {
			break
		}
		m.log.Info("checking store", logx.String("store", product.Store))
		res, err := client.Fetch(ctx, product)
		if err != nil {
			m.log.Warn("store check failed", logx.String("store", product.Store), logx.Err(err))
			continue
		}
		prices = append(prices, history.PriceRecord{
			Store:       res.Store,
			ProductName: res.ProductName,
			Price:       res.Price,
			Currency:    res.Currency,
			URL:         res.URL,
		})
		m.log.Info("price obtained",
			logx.String("store", res.Store),
			logx.Float64("price", res.Price),
			logx.String("product", res.ProductName))
	}
	m.log.Info("check finished",
		logx.Int("ok", len(prices)),
		logx.Int("total", len(cfg.Products)))
	return prices
}

func (m *Monitor) openHistory(cfg *config.Config) (history.Store, error) {
	hcfg := history.Config{}
	if st := cfg.Storage; st != nil {
		hcfg.Driver = st.Driver
		hcfg.Path = st.Path
		bt, err := config.ParseDurationField("storage.busy_timeout", st.BusyTimeout)
		if err != nil {
			return nil, err
		}
		hcfg.BusyTimeout = bt
	}
	return history.Open(hcfg, m.log)
}

// findOpportunities applies the per-product (or default) max-price threshold
// to the current prices and pairs each hit with its previous price when known.
func findOpportunities(cfg *config.Config, current []history.PriceRecord, prev *history.Check, log logx.Logger) []notify.Opportunity {
	defaultMax := cfg.DefaultMax
	if defaultMax <= 0 {
		defaultMax = fallbackMaxPrice
	}

	maxFor := func(store string) float64 {
		for _, p := range cfg.Products {
			if p.Store == store && p.MaxPrice > 0 {
				return p.MaxPrice
			}
		}
		return defaultMax
	}
	prevFor := func(store string) float64 {
		if prev == nil {
			return 0
		}
		for _, p := range prev.Prices {
			if p.Store == store {
				return p.Price
			}
		}
		return 0
	}

	var opportunities []notify.Opportunity
	for _, p := range current {
		if p.Price <= 0 {
			continue
		}
		max := maxFor(p.Store)
		if p.Price > max {
			continue
		}
		opp := notify.Opportunity{
			Store:       p.Store,
			ProductName: p.ProductName,
			Price:       p.Price,
			Currency:    p.Currency,
			URL:         p.URL,
			Reason:      fmt.Sprintf("Price %.2f is below the %.2f target", p.Price, max),
			PrevPrice:   prevFor(p.Store),
		}
		opportunities = append(opportunities, opp)
		log.Info("opportunity found",
			logx.String("store", p.Store),
			logx.Float64("price", p.Price),
			logx.Float64("target", max))
	}
	return opportunities
}
