package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"pricemon/internal/schedule"
)

// DefaultTimezone is the reference zone trigger times are expressed in.
// The original deployment targeted Brasília; using the IANA zone (rather than
// a fixed UTC-3 offset) keeps triggers aligned if the zone ever observes DST.
const DefaultTimezone = "America/Sao_Paulo"

// Validate checks the sections both binaries depend on.
// Setup-only requirements are checked separately by ValidateSetup.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if len(cfg.Products) == 0 {
		return fmt.Errorf("products: at least one product required")
	}
	for i, p := range cfg.Products {
		if strings.TrimSpace(p.URL) == "" {
			return fmt.Errorf("products[%d]: url required", i)
		}
		u, err := url.Parse(p.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("products[%d]: invalid url %q", i, p.URL)
		}
		if p.MaxPrice < 0 {
			return fmt.Errorf("products[%d]: max_price must be >= 0", i)
		}
	}
	if cfg.DefaultMax < 0 {
		return fmt.Errorf("default_max_price must be >= 0")
	}

	if len(cfg.Scheduling.Times) == 0 {
		return fmt.Errorf("scheduling.times: at least one time required")
	}
	for _, t := range cfg.Scheduling.Times {
		if _, err := schedule.ParseTimeOfDay(t); err != nil {
			return fmt.Errorf("scheduling.times: %w", err)
		}
	}
	if tz := strings.TrimSpace(cfg.Scheduling.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("scheduling.timezone: unknown zone %q: %w", tz, err)
		}
	}

	if _, err := ParseDurationField("settings.request_delay", cfg.Settings.RequestDelay); err != nil {
		return err
	}
	if _, err := ParseDurationField("settings.request_timeout", cfg.Settings.RequestTimeout); err != nil {
		return err
	}

	if st := cfg.Storage; st != nil {
		switch strings.ToLower(strings.TrimSpace(st.Driver)) {
		case "", "file", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", st.Driver)
		}
		if _, err := ParseDurationField("storage.busy_timeout", st.BusyTimeout); err != nil {
			return err
		}
	}

	if cfg.Email.SenderEmail != "" || cfg.Email.RecipientEmail != "" {
		if cfg.Email.SenderEmail == "" || cfg.Email.RecipientEmail == "" {
			return fmt.Errorf("email: sender_email and recipient_email must both be set")
		}
	}

	return nil
}

// ValidateSetup checks the extra fields the setup CLI needs.
func ValidateSetup(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Setup.BaseName) == "" {
		return fmt.Errorf("setup.base_name required")
	}
	if strings.TrimSpace(cfg.Setup.WorkerPath) == "" {
		return fmt.Errorf("setup.worker_path required")
	}
	return nil
}

// Timezone returns the configured reference zone, defaulting to Brasília.
func (c *Config) Timezone() string {
	if tz := strings.TrimSpace(c.Scheduling.Timezone); tz != "" {
		return tz
	}
	return DefaultTimezone
}
