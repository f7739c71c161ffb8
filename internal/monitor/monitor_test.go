package monitor

import (
	"testing"
	"time"

	"pricemon/internal/config"
	"pricemon/internal/history"
	logx "pricemon/pkg/logx"
)

func testConfig() *config.Config {
	return &config.Config{
		Products: []config.ProductConfig{
			{Name: "Widget", Store: "alpha", URL: "https://alpha.example/w", MaxPrice: 550},
			{Name: "Widget", Store: "beta", URL: "https://beta.example/w"},
		},
		DefaultMax: 500,
	}
}

func TestFindOpportunitiesThresholds(t *testing.T) {
	t.Parallel()
	current := []history.PriceRecord{
		{Store: "alpha", ProductName: "Widget", Price: 529.90, Currency: "BRL"}, // under per-product 550
		{Store: "beta", ProductName: "Widget", Price: 520.00, Currency: "BRL"},  // over default 500
	}

	opps := findOpportunities(testConfig(), current, nil, logx.Nop())
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].Store != "alpha" || opps[0].Price != 529.90 {
		t.Fatalf("unexpected opportunity: %+v", opps[0])
	}
	if opps[0].PrevPrice != 0 {
		t.Fatalf("PrevPrice = %v, want 0 without prior check", opps[0].PrevPrice)
	}
}

func TestFindOpportunitiesUsesDefaultMax(t *testing.T) {
	t.Parallel()
	current := []history.PriceRecord{
		{Store: "beta", ProductName: "Widget", Price: 499.00},
	}
	opps := findOpportunities(testConfig(), current, nil, logx.Nop())
	if len(opps) != 1 || opps[0].Store != "beta" {
		t.Fatalf("expected beta under default_max_price, got %+v", opps)
	}
}

func TestFindOpportunitiesCarriesPreviousPrice(t *testing.T) {
	t.Parallel()
	current := []history.PriceRecord{
		{Store: "alpha", ProductName: "Widget", Price: 529.90},
	}
	prev := &history.Check{
		At: time.Now().Add(-6 * time.Hour),
		Prices: []history.PriceRecord{
			{Store: "alpha", ProductName: "Widget", Price: 580.00},
		},
	}
	opps := findOpportunities(testConfig(), current, prev, logx.Nop())
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].PrevPrice != 580.00 {
		t.Fatalf("PrevPrice = %v, want 580.00", opps[0].PrevPrice)
	}
	if opps[0].Discount() <= 0 {
		t.Fatalf("expected positive discount, got %v", opps[0].Discount())
	}
}

func TestFindOpportunitiesIgnoresNonPositivePrices(t *testing.T) {
	t.Parallel()
	current := []history.PriceRecord{
		{Store: "alpha", ProductName: "Widget", Price: 0},
		{Store: "alpha", ProductName: "Widget", Price: -1},
	}
	if opps := findOpportunities(testConfig(), current, nil, logx.Nop()); len(opps) != 0 {
		t.Fatalf("expected no opportunities, got %+v", opps)
	}
}

func TestFindOpportunitiesFallbackMax(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.DefaultMax = 0 // unset in config
	current := []history.PriceRecord{
		{Store: "beta", ProductName: "Widget", Price: fallbackMaxPrice - 1},
	}
	if opps := findOpportunities(cfg, current, nil, logx.Nop()); len(opps) != 1 {
		t.Fatalf("expected fallback threshold to apply, got %+v", opps)
	}
}
