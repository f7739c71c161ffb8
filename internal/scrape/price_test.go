package scrape

import "testing"

func TestParsePrice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "brazilian", raw: "R$ 1.234,56", want: 1234.56},
		{name: "us", raw: "$1,234.56", want: 1234.56},
		{name: "comma decimal", raw: "549,90", want: 549.90},
		{name: "dot decimal", raw: "549.90", want: 549.90},
		{name: "dot thousands", raw: "1.234", want: 1234},
		{name: "comma thousands", raw: "1,234", want: 1234},
		{name: "plain integer", raw: "499", want: 499},
		{name: "single decimal digit", raw: "12.5", want: 12.5},
		{name: "embedded text", raw: "por apenas R$ 389,99 à vista", want: 389.99},
		{name: "trailing separator", raw: "550,", want: 550},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			if !ok {
				t.Fatalf("ParsePrice(%q): no price", tt.raw)
			}
			if got != tt.want {
				t.Fatalf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParsePriceRejects(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "free", "R$", "0", "0,00", ".,"} {
		if v, ok := ParsePrice(raw); ok {
			t.Fatalf("ParsePrice(%q) = %v, expected rejection", raw, v)
		}
	}
}
