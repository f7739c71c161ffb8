package notify

import (
	"strings"
	"testing"

	"pricemon/internal/config"
	logx "pricemon/pkg/logx"
)

func TestNewProviderPresets(t *testing.T) {
	t.Parallel()
	n, err := New(config.EmailConfig{
		Provider:       "gmail",
		SenderEmail:    "sender@example.com",
		RecipientEmail: "me@example.com",
	}, logx.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if n == nil {
		t.Fatal("expected configured notifier")
	}
	if n.server != "smtp.gmail.com" || n.port != 587 {
		t.Fatalf("unexpected preset resolution: %s:%d", n.server, n.port)
	}
}

func TestNewUnconfiguredIsNil(t *testing.T) {
	t.Parallel()
	n, err := New(config.EmailConfig{}, logx.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if n != nil {
		t.Fatal("expected nil notifier when email is unset")
	}
}

func TestNewCustomRequiresServer(t *testing.T) {
	t.Parallel()
	_, err := New(config.EmailConfig{
		Provider:       "custom",
		SenderEmail:    "sender@example.com",
		RecipientEmail: "me@example.com",
	}, logx.Nop())
	if err == nil {
		t.Fatal("expected error for custom provider without smtp_server")
	}
}

func TestDiscount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opp  Opportunity
		want float64
	}{
		{name: "cheaper", opp: Opportunity{Price: 80, PrevPrice: 100}, want: 20},
		{name: "no previous", opp: Opportunity{Price: 80}, want: 0},
		{name: "more expensive", opp: Opportunity{Price: 120, PrevPrice: 100}, want: 0},
		{name: "unchanged", opp: Opportunity{Price: 100, PrevPrice: 100}, want: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opp.Discount(); got != tt.want {
				t.Fatalf("Discount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()
	opps := []Opportunity{
		{
			Store:       "alpha",
			ProductName: "Widget",
			Price:       529.90,
			Currency:    "BRL",
			URL:         "https://alpha.example/widget",
			Reason:      "Price 529.90 is below the 550.00 target",
			PrevPrice:   580.00,
		},
		{
			Store:       "beta",
			ProductName: "Widget",
			Price:       540.00,
			Currency:    "BRL",
			URL:         "https://beta.example/widget",
			Reason:      "Price 540.00 is below the 550.00 target",
		},
	}
	html, err := renderHTML(opps)
	if err != nil {
		t.Fatalf("renderHTML error: %v", err)
	}
	for _, want := range []string{
		"alpha", "beta",
		"R$ 529.90", "R$ 540.00",
		"R$ 580.00", "% OFF",
		`href="https://alpha.example/widget"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q", want)
		}
	}
	// Second opportunity has no previous price; exactly one discount block.
	if strings.Count(html, "old-price\">") != 1 {
		t.Fatalf("expected exactly one old-price span:\n%s", html)
	}
}

func TestRenderText(t *testing.T) {
	t.Parallel()
	text := renderText([]Opportunity{{
		Store:       "alpha",
		ProductName: "Widget",
		Price:       529.90,
		Currency:    "BRL",
		URL:         "https://alpha.example/widget",
		PrevPrice:   580.00,
	}})
	for _, want := range []string{"alpha", "R$ 529.90", "R$ 580.00", "https://alpha.example/widget"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text missing %q in:\n%s", want, text)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		currency string
		amount   float64
		want     string
	}{
		{"BRL", 549.9, "R$ 549.90"},
		{"", 100, "R$ 100.00"},
		{"USD", 99.99, "$ 99.99"},
		{"EUR", 10, "€ 10.00"},
		{"GBP", 10, "GBP 10.00"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.currency, tt.amount); got != tt.want {
			t.Fatalf("formatAmount(%q, %v) = %q, want %q", tt.currency, tt.amount, got, tt.want)
		}
	}
}
