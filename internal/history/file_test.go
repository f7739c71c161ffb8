package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "pricemon/pkg/logx"
)

func openTempFileStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "history.json")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTempFileStore(t)

	latest, err := st.LatestCheck(ctx)
	if err != nil {
		t.Fatalf("LatestCheck error: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected empty history, got %+v", latest)
	}

	first := Check{
		At: time.Date(2026, 8, 27, 6, 0, 0, 0, time.UTC),
		Prices: []PriceRecord{
			{Store: "alpha", ProductName: "Widget", Price: 550.00, Currency: "BRL", URL: "https://alpha.example/w"},
			{Store: "beta", ProductName: "Widget", Price: 580.00, Currency: "BRL", URL: "https://beta.example/w"},
		},
	}
	second := Check{
		At: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
		Prices: []PriceRecord{
			{Store: "alpha", ProductName: "Widget", Price: 529.90, Currency: "BRL", URL: "https://alpha.example/w"},
		},
	}
	if err := st.AppendCheck(ctx, first); err != nil {
		t.Fatalf("AppendCheck error: %v", err)
	}
	if err := st.AppendCheck(ctx, second); err != nil {
		t.Fatalf("AppendCheck error: %v", err)
	}

	latest, err = st.LatestCheck(ctx)
	if err != nil {
		t.Fatalf("LatestCheck error: %v", err)
	}
	if latest == nil || len(latest.Prices) != 1 || latest.Prices[0].Price != 529.90 {
		t.Fatalf("unexpected latest check: %+v", latest)
	}

	prev, err := st.PreviousCheck(ctx)
	if err != nil {
		t.Fatalf("PreviousCheck error: %v", err)
	}
	if prev == nil || len(prev.Prices) != 2 || !prev.At.Equal(first.At) {
		t.Fatalf("unexpected previous check: %+v", prev)
	}
}

func TestFileStoreTrendAndLowest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTempFileStore(t)

	base := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	for i, price := range []float64{580, 549.90, 565} {
		check := Check{
			At: base.AddDate(0, 0, i),
			Prices: []PriceRecord{
				{Store: "alpha", ProductName: "Widget", Price: price},
				{Store: "beta", ProductName: "Widget", Price: price + 20},
			},
		}
		if err := st.AppendCheck(ctx, check); err != nil {
			t.Fatalf("AppendCheck error: %v", err)
		}
	}

	trend, err := st.Trend(ctx, "alpha")
	if err != nil {
		t.Fatalf("Trend error: %v", err)
	}
	if len(trend) != 3 {
		t.Fatalf("trend has %d points, want 3", len(trend))
	}
	if trend[1].Price != 549.90 {
		t.Fatalf("trend[1].Price = %v, want 549.90", trend[1].Price)
	}

	lowest, at, err := st.LowestPrice(ctx, "alpha")
	if err != nil {
		t.Fatalf("LowestPrice error: %v", err)
	}
	if lowest == nil || lowest.Price != 549.90 {
		t.Fatalf("unexpected lowest: %+v", lowest)
	}
	if !at.Equal(base.AddDate(0, 0, 1)) {
		t.Fatalf("lowest at %v, want %v", at, base.AddDate(0, 0, 1))
	}

	// Empty store matches everything.
	lowest, _, err = st.LowestPrice(ctx, "")
	if err != nil {
		t.Fatalf("LowestPrice error: %v", err)
	}
	if lowest == nil || lowest.Price != 549.90 {
		t.Fatalf("unexpected global lowest: %+v", lowest)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
