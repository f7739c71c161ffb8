// Package monitor orchestrates price checks: scraping configured stores,
// recording results in history, detecting buying opportunities and sending
// alerts. It runs either once (for oneshot scheduler units) or on an
// in-process daily schedule.
package monitor
