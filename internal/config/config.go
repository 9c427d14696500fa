// Package config loads the budgetbot configuration file and its
// environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetbot/internal/budget"
	"github.com/theirongolddev/budgetbot/internal/model"
)

// Backend names accepted by [classifier] backend.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config holds all budgetbot configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Budget     BudgetConfig     `toml:"budget"`
	Classifier ClassifierConfig `toml:"classifier"`
	Store      StoreConfig      `toml:"store"`
	Events     EventsConfig     `toml:"events"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency string `toml:"currency"`
}

// BudgetConfig holds the starting category limits. Categories missing from
// the file get no allowance.
type BudgetConfig struct {
	Limits map[string]float64 `toml:"limits"`
}

// ClassifierConfig selects and tunes the text classifier.
type ClassifierConfig struct {
	Backend    string `toml:"backend"`
	Endpoint   string `toml:"endpoint,omitempty"`
	Model      string `toml:"model,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
	MaxRetries int    `toml:"max_retries"`
	APIToken   string `toml:"api_token,omitempty"`
}

// StoreConfig holds journal settings.
type StoreConfig struct {
	Path     string `toml:"path,omitempty"`
	Disabled bool   `toml:"disabled"`
}

// EventsConfig holds broker settings. An empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string `toml:"amqp_url,omitempty"`
	Exchange string `toml:"exchange"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	limits := make(map[string]float64, len(model.Categories))
	for c, amt := range budget.DefaultLimits() {
		limits[string(c)] = amt.InexactFloat64()
	}
	return Config{
		General: GeneralConfig{Currency: "USD"},
		Budget:  BudgetConfig{Limits: limits},
		Classifier: ClassifierConfig{
			Backend:    BackendLocal,
			TimeoutSec: 10,
			MaxRetries: 3,
		},
		Events: EventsConfig{Exchange: "budgetbot"},
		Server: ServerConfig{Addr: "127.0.0.1:8787"},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetbot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budgetbot")
}

// DataDir returns the XDG-compliant data directory holding the journal.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetbot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "budgetbot")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or the default path when empty,
// returning defaults if it doesn't exist.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// A file with a [budget.limits] table replaces the default limits
	// instead of merging into them.
	cfg.Budget.Limits = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Budget.Limits == nil {
		cfg.Budget.Limits = DefaultConfig().Budget.Limits
	}

	return cfg, nil
}

// Save writes the config to path, or the default path when empty.
func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-supplied config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadEnv reads a .env file from the working directory, if present, without
// overriding variables that are already set.
func LoadEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overlays environment overrides onto cfg.
func ApplyEnv(cfg *Config) {
	cfg.Classifier.APIToken = firstEnv(cfg.Classifier.APIToken, "BUDGETBOT_CLASSIFIER_TOKEN", "HF_API_TOKEN")
	cfg.Classifier.Endpoint = firstEnv(cfg.Classifier.Endpoint, "BUDGETBOT_CLASSIFIER_ENDPOINT")
	cfg.Events.AMQPURL = firstEnv(cfg.Events.AMQPURL, "BUDGETBOT_AMQP_URL")
}

func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return fallback
}

// Limits converts the configured limits into budget amounts.
func (c Config) Limits() (map[model.Category]decimal.Decimal, error) {
	out := make(map[model.Category]decimal.Decimal, len(c.Budget.Limits))
	for name, v := range c.Budget.Limits {
		cat, err := model.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("budget limit %q: %w", name, err)
		}
		out[cat] = decimal.NewFromFloat(v).Round(2)
	}
	return out, nil
}

// hostedModels is the inference base URL a bare model name resolves against.
const hostedModels = "https://api-inference.huggingface.co/models/"

// ResolvedEndpoint returns the explicit endpoint, else the hosted URL for
// Model, else "" so the client picks its default.
func (c ClassifierConfig) ResolvedEndpoint() string {
	switch {
	case c.Endpoint != "":
		return c.Endpoint
	case c.Model != "":
		return hostedModels + strings.TrimPrefix(c.Model, "/")
	}
	return ""
}

// Timeout returns the classifier deadline.
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// JournalPath returns the journal database path.
func (c StoreConfig) JournalPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(DataDir(), "journal.db")
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	names := make([]string, 0, len(c.Budget.Limits))
	for name := range c.Budget.Limits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := model.ParseCategory(name); err != nil {
			problems = append(problems, fmt.Sprintf("unknown budget category %q", name))
		}
		if c.Budget.Limits[name] < 0 {
			problems = append(problems, fmt.Sprintf("budget limit for %q must not be negative", name))
		}
	}

	switch c.Classifier.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.Classifier.Endpoint != "" {
			u, err := url.Parse(c.Classifier.Endpoint)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				problems = append(problems, fmt.Sprintf("invalid classifier endpoint %q", c.Classifier.Endpoint))
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown classifier backend %q: want %s or %s",
			c.Classifier.Backend, BackendLocal, BackendRemote))
	}
	if c.Classifier.TimeoutSec < 1 {
		problems = append(problems, fmt.Sprintf("invalid classifier timeout %ds: must be at least 1 second", c.Classifier.TimeoutSec))
	}
	if c.Classifier.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("invalid classifier max_retries %d: must not be negative", c.Classifier.MaxRetries))
	}

	if c.Events.AMQPURL != "" {
		if !strings.HasPrefix(c.Events.AMQPURL, "amqp://") && !strings.HasPrefix(c.Events.AMQPURL, "amqps://") {
			problems = append(problems, "events amqp_url must start with amqp:// or amqps://")
		}
		if c.Events.Exchange == "" {
			problems = append(problems, "events exchange is required when amqp_url is set")
		}
	}

	if c.Server.Addr == "" {
		problems = append(problems, "server addr is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
