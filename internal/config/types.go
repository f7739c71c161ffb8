package config

// Config is the single YAML file shared by the worker and the setup CLI.
//
// YAML is accepted on disk but decoded through the strict JSON path
// (DisallowUnknownFields), so typos in section or key names fail loudly
// instead of being silently ignored.
type Config struct {
	Logging    LoggingConfig    `json:"logging"`
	Products   []ProductConfig  `json:"products"`
	DefaultMax float64          `json:"default_max_price,omitempty"`
	Email      EmailConfig      `json:"email"`
	Scheduling SchedulingConfig `json:"scheduling"`
	Settings   SettingsConfig   `json:"settings,omitempty"`
	Storage    *StorageConfig   `json:"storage,omitempty"`
	Setup      SetupConfig      `json:"setup"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ProductConfig is one tracked store page.
type ProductConfig struct {
	Name     string  `json:"name"`
	Store    string  `json:"store"`
	URL      string  `json:"url"`
	MaxPrice float64 `json:"max_price,omitempty"` // falls back to default_max_price

	// Optional CSS selector overrides when the generic extraction strategies
	// don't work for a store.
	Selectors *SelectorConfig `json:"selectors,omitempty"`
}

type SelectorConfig struct {
	Price string `json:"price,omitempty"`
	Name  string `json:"name,omitempty"`
}

// EmailConfig configures SMTP alerts. Provider presets cover the common
// hosts; otherwise set smtp_server/smtp_port explicitly.
// The sender password may also come from the EMAIL_PASSWORD environment
// variable, which overrides the file value.
type EmailConfig struct {
	Provider       string `json:"provider,omitempty"` // gmail | outlook | hotmail | yahoo | custom
	SMTPServer     string `json:"smtp_server,omitempty"`
	SMTPPort       int    `json:"smtp_port,omitempty"`
	SenderEmail    string `json:"sender_email"`
	SenderPassword string `json:"sender_password,omitempty"`
	RecipientEmail string `json:"recipient_email"`
}

// SchedulingConfig holds the daily check times.
// Times is a list of "HH:MM" strings in Timezone.
type SchedulingConfig struct {
	Times    []string `json:"times"`
	Timezone string   `json:"timezone,omitempty"` // IANA zone; default America/Sao_Paulo
}

// SettingsConfig tunes the scraper. Durations are Go duration strings.
type SettingsConfig struct {
	RequestDelay   string `json:"request_delay,omitempty"`   // pacing between stores; default "5s"
	RequestTimeout string `json:"request_timeout,omitempty"` // per-page timeout; default "30s"
	UserAgent      string `json:"user_agent,omitempty"`
}

// StorageConfig controls the price history backend.
//
// Driver values:
//   - "file": dependency-free JSON history (the default)
//   - "sqlite": SQLite database file (optional build tag)
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// SetupConfig drives OS-scheduler registration (the setup CLI).
type SetupConfig struct {
	// BaseName prefixes every task identity, e.g. "PriceMonitor" ->
	// PriceMonitor_0600, PriceMonitor_1200, ...
	BaseName string `json:"base_name"`

	// WorkerPath is the worker executable the scheduler invokes. The
	// single-shot flag and config path are appended by construction, so a
	// registration can never start the long-running mode.
	WorkerPath string   `json:"worker_path"`
	WorkerArgs []string `json:"worker_args,omitempty"`
	WorkDir    string   `json:"workdir,omitempty"`

	// UnitDir overrides where unit files are written (tests, staging).
	UnitDir string `json:"unit_dir,omitempty"`

	RunOnBattery     bool `json:"run_on_battery"`
	CatchUpMissedRun bool `json:"catch_up_missed_run"`
	WakeSystem       bool `json:"wake_system,omitempty"`

	User  string `json:"user,omitempty"`
	Group string `json:"group,omitempty"`
}
