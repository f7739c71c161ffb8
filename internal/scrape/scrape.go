package scrape

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"pricemon/internal/config"
	logx "pricemon/pkg/logx"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Result is one successfully extracted price.
type Result struct {
	Store       string
	ProductName string
	Price       float64
	Currency    string
	URL         string
	CheckedAt   time.Time
}

// Client fetches store pages sequentially, paced so stores don't see bursts.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       logx.Logger
}

type Options struct {
	// Delay is the minimum spacing between page fetches. Default 5s.
	Delay time.Duration
	// Timeout bounds one page fetch. Default 30s.
	Timeout   time.Duration
	UserAgent string
	Log       logx.Logger
}

func NewClient(opts Options) *Client {
	delay := opts.Delay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		userAgent: ua,
		log:       log,
	}
}

// Fetch downloads one product page and extracts its price and name.
// The limiter gates the request, so back-to-back calls are naturally paced.
func (c *Client) Fetch(ctx context.Context, product config.ProductConfig) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, product.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", product.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", product.URL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", product.URL, err)
	}

	res, err := extract(doc, product)
	if err != nil {
		return nil, err
	}
	res.URL = product.URL
	res.Store = product.Store
	res.CheckedAt = time.Now()
	if res.ProductName == "" {
		res.ProductName = product.Name
	}
	c.log.Debug("price extracted",
		logx.String("store", product.Store),
		logx.Float64("price", res.Price),
		logx.String("product", res.ProductName))
	return res, nil
}
