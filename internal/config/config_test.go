package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
logging:
  level: INFO
  console: true
products:
  - name: Widget
    store: alpha
    url: https://alpha.example/widget
    max_price: 550
  - name: Widget
    store: beta
    url: https://beta.example/widget
default_max_price: 600
email:
  provider: gmail
  sender_email: sender@example.com
  recipient_email: me@example.com
scheduling:
  times: ["06:00", "12:00", "18:00", "00:00"]
settings:
  request_delay: 2s
  request_timeout: 10s
setup:
  base_name: PriceMonitor
  worker_path: /usr/local/bin/pricemon
  catch_up_missed_run: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestManagerLoadYAML(t *testing.T) {
	t.Parallel()
	mgr := NewManager(writeConfig(t, sampleYAML))
	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(cfg.Products))
	}
	if cfg.Products[0].MaxPrice != 550 {
		t.Fatalf("MaxPrice = %v, want 550", cfg.Products[0].MaxPrice)
	}
	if cfg.DefaultMax != 600 {
		t.Fatalf("DefaultMax = %v, want 600", cfg.DefaultMax)
	}
	if len(cfg.Scheduling.Times) != 4 {
		t.Fatalf("got %d times, want 4", len(cfg.Scheduling.Times))
	}
	if cfg.Setup.BaseName != "PriceMonitor" || !cfg.Setup.CatchUpMissedRun {
		t.Fatalf("unexpected setup section: %+v", cfg.Setup)
	}
	if got := mgr.Get(); got != cfg {
		t.Fatal("Get did not return the committed config")
	}
}

func TestManagerRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	mgr := NewManager(writeConfig(t, sampleYAML+"\nshceduling_typo:\n  oops: true\n"))
	if _, err := mgr.Load(); err == nil {
		t.Fatal("expected error for unknown top-level key")
	}
}

func TestEnvPasswordOverride(t *testing.T) {
	t.Setenv("EMAIL_PASSWORD", "supersecret")
	mgr := NewManager(writeConfig(t, sampleYAML))
	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Email.SenderPassword != "supersecret" {
		t.Fatalf("SenderPassword = %q, want env override", cfg.Email.SenderPassword)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	mgr := NewManager(writeConfig(t, sampleYAML))
	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if err := ValidateSetup(cfg); err != nil {
		t.Fatalf("ValidateSetup error: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{name: "no products", mutate: func(c *Config) { c.Products = nil }, substr: "products"},
		{name: "bad url", mutate: func(c *Config) { c.Products[0].URL = "ftp://x" }, substr: "url"},
		{name: "no times", mutate: func(c *Config) { c.Scheduling.Times = nil }, substr: "times"},
		{name: "bad time", mutate: func(c *Config) { c.Scheduling.Times = []string{"25:00"} }, substr: "times"},
		{name: "bad timezone", mutate: func(c *Config) { c.Scheduling.Timezone = "Mars/Olympus" }, substr: "timezone"},
		{name: "bad delay", mutate: func(c *Config) { c.Settings.RequestDelay = "fast" }, substr: "request_delay"},
		{name: "bad driver", mutate: func(c *Config) { c.Storage = &StorageConfig{Driver: "redis"} }, substr: "driver"},
		{name: "half email", mutate: func(c *Config) { c.Email.RecipientEmail = "" }, substr: "email"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(writeConfig(t, sampleYAML))
			cfg, err := mgr.Load()
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			tt.mutate(cfg)
			err = Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Fatalf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func TestValidateSetupRequiresWorker(t *testing.T) {
	t.Parallel()
	mgr := NewManager(writeConfig(t, sampleYAML))
	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	cfg.Setup.WorkerPath = ""
	if err := ValidateSetup(cfg); err == nil {
		t.Fatal("expected error for missing worker_path")
	}
}

func TestTimezoneDefault(t *testing.T) {
	t.Parallel()
	c := &Config{}
	if got := c.Timezone(); got != DefaultTimezone {
		t.Fatalf("Timezone() = %q, want default", got)
	}
	c.Scheduling.Timezone = "UTC"
	if got := c.Timezone(); got != "UTC" {
		t.Fatalf("Timezone() = %q, want UTC", got)
	}
}
