package scrape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricemon/internal/config"
)

// ErrNoPrice reports that no extraction strategy found a usable price.
var ErrNoPrice = fmt.Errorf("no price found on page")

// extract tries the strategies in decreasing order of reliability:
// explicit selector override, OpenGraph/meta tags, schema.org JSON-LD,
// data-price attributes, then itemprop/price-class text.
func extract(doc *goquery.Document, product config.ProductConfig) (*Result, error) {
	res := &Result{Currency: "BRL"}

	if sel := product.Selectors; sel != nil && sel.Price != "" {
		if price, ok := priceFromSelection(doc.Find(sel.Price).First()); ok {
			res.Price = price
		}
	}
	if res.Price == 0 {
		if price, ok := priceFromMeta(doc); ok {
			res.Price = price
		}
	}
	if res.Price == 0 {
		if price, cur, ok := priceFromJSONLD(doc); ok {
			res.Price = price
			if cur != "" {
				res.Currency = cur
			}
		}
	}
	if res.Price == 0 {
		if price, ok := priceFromDataAttrs(doc); ok {
			res.Price = price
		}
	}
	if res.Price == 0 {
		if price, ok := priceFromText(doc); ok {
			res.Price = price
		}
	}
	if res.Price == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPrice, product.URL)
	}

	res.ProductName = extractName(doc, product)
	return res, nil
}

func priceFromSelection(sel *goquery.Selection) (float64, bool) {
	if sel.Length() == 0 {
		return 0, false
	}
	if content, ok := sel.Attr("content"); ok {
		if p, ok := ParsePrice(content); ok {
			return p, true
		}
	}
	return ParsePrice(sel.Text())
}

func priceFromMeta(doc *goquery.Document) (float64, bool) {
	for _, prop := range []string{"product:price:amount", "og:price:amount"} {
		sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, prop)).First()
		if content, ok := sel.Attr("content"); ok {
			if p, ok := ParsePrice(content); ok {
				return p, true
			}
		}
	}
	return 0, false
}

// priceFromJSONLD walks schema.org Product structures, including @graph
// wrappers and top-level arrays.
func priceFromJSONLD(doc *goquery.Document) (price float64, currency string, found bool) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true // keep scanning
		}
		if p, cur, ok := productOffer(v); ok {
			price, currency, found = p, cur, true
			return false
		}
		return true
	})
	return price, currency, found
}

func productOffer(v any) (float64, string, bool) {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if p, cur, ok := productOffer(item); ok {
				return p, cur, true
			}
		}
	case map[string]any:
		if graph, ok := x["@graph"]; ok {
			if p, cur, ok := productOffer(graph); ok {
				return p, cur, true
			}
		}
		if t, _ := x["@type"].(string); t == "Product" {
			return offerPrice(x["offers"])
		}
	}
	return 0, "", false
}

func offerPrice(offers any) (float64, string, bool) {
	switch o := offers.(type) {
	case []any:
		for _, item := range o {
			if p, cur, ok := offerPrice(item); ok {
				return p, cur, true
			}
		}
	case map[string]any:
		cur, _ := o["priceCurrency"].(string)
		for _, key := range []string{"price", "lowPrice"} {
			switch pv := o[key].(type) {
			case float64:
				if pv > 0 {
					return pv, cur, true
				}
			case string:
				if p, ok := ParsePrice(pv); ok {
					return p, cur, true
				}
			}
		}
	}
	return 0, "", false
}

func priceFromDataAttrs(doc *goquery.Document) (float64, bool) {
	for _, attr := range []string{"data-price", "data-product-price", "data-price-amount"} {
		sel := doc.Find(fmt.Sprintf("[%s]", attr)).First()
		if val, ok := sel.Attr(attr); ok {
			if p, ok := ParsePrice(val); ok {
				return p, true
			}
		}
	}
	return 0, false
}

func priceFromText(doc *goquery.Document) (float64, bool) {
	if p, ok := priceFromSelection(doc.Find(`[itemprop="price"]`).First()); ok {
		return p, true
	}
	// Common price keywords in class names, most specific first.
	for _, pattern := range []string{"price", "preco", "precio", "prix", "cost", "value"} {
		var price float64
		var found bool
		doc.Find(fmt.Sprintf(`[class*=%q]`, pattern)).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			// Skip containers whose text is too long to be just a price.
			if text == "" || len(text) > 40 {
				return true
			}
			if p, ok := ParsePrice(text); ok {
				price, found = p, true
				return false
			}
			return true
		})
		if found {
			return price, true
		}
	}
	return 0, false
}

func extractName(doc *goquery.Document, product config.ProductConfig) string {
	if sel := product.Selectors; sel != nil && sel.Name != "" {
		if name := strings.TrimSpace(doc.Find(sel.Name).First().Text()); name != "" {
			return name
		}
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if name := strings.TrimSpace(content); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(doc.Find("h1").First().Text()); name != "" {
		return name
	}
	return ""
}
