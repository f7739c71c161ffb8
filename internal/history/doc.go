// Package history persists price checks so the monitor can compare against
// the previous run and report trends.
//
// The default backend is a single JSON file (the format the monitor has
// always used); an SQLite backend is available behind the "sqlite" build tag.
package history
