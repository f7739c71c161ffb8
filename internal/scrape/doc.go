// Package scrape extracts product prices from store pages.
//
// Extraction is generic: OpenGraph meta tags, schema.org JSON-LD, data-price
// attributes and price-class text, in that order, with optional per-product
// CSS selector overrides for stores the generic strategies miss. Requests are
// paced with a rate limiter so sequential checks don't hammer a store.
package scrape
