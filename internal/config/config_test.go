package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetbot/internal/model"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.Backend != BackendLocal {
		t.Errorf("backend = %q, want %q", cfg.Classifier.Backend, BackendLocal)
	}
	if len(cfg.Budget.Limits) != len(model.Categories) {
		t.Errorf("got %d limits, want %d", len(cfg.Budget.Limits), len(model.Categories))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Classifier.Backend = BackendRemote
	cfg.Budget.Limits["food_dining"] = 425.5
	cfg.Appearance.Theme = "tokyo-night"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Classifier.Backend != BackendRemote || got.Appearance.Theme != "tokyo-night" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Budget.Limits["food_dining"] != 425.5 {
		t.Errorf("food limit = %v, want 425.5", got.Budget.Limits["food_dining"])
	}
}

func TestLoad_LimitsTableReplacesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[budget.limits]\nfood_dining = 100\ntravel = 50\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	limits, err := cfg.Limits()
	if err != nil {
		t.Fatalf("Limits: %v", err)
	}
	if len(limits) != 2 {
		t.Fatalf("got %d limits, want 2: %v", len(limits), limits)
	}
	if !limits[model.CategoryTravel].Equal(decimal.NewFromInt(50)) {
		t.Errorf("travel = %s, want 50", limits[model.CategoryTravel])
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != DefaultConfig().Server.Addr {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v, want parsing error", err)
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Budget.Limits["rent"] = 900
	cfg.Budget.Limits["travel"] = -1
	cfg.Classifier.Backend = "gpt"
	cfg.Classifier.TimeoutSec = 0
	cfg.Events.AMQPURL = "http://broker"
	cfg.Server.Addr = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{
		`unknown budget category "rent"`,
		`budget limit for "travel" must not be negative`,
		`unknown classifier backend "gpt"`,
		"invalid classifier timeout",
		"amqp_url must start with",
		"server addr is required",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestValidate_RemoteEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classifier.Backend = BackendRemote
	cfg.Classifier.Endpoint = "ftp://models"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid endpoint error")
	}
	cfg.Classifier.Endpoint = "https://models.example.com/zero-shot"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BUDGETBOT_CLASSIFIER_TOKEN", "")
	t.Setenv("HF_API_TOKEN", "hf_secret")
	t.Setenv("BUDGETBOT_CLASSIFIER_ENDPOINT", "https://example.com/classify")
	t.Setenv("BUDGETBOT_AMQP_URL", "")

	cfg := DefaultConfig()
	cfg.Events.AMQPURL = "amqp://from-file"
	ApplyEnv(&cfg)

	if cfg.Classifier.APIToken != "hf_secret" {
		t.Errorf("token = %q", cfg.Classifier.APIToken)
	}
	if cfg.Classifier.Endpoint != "https://example.com/classify" {
		t.Errorf("endpoint = %q", cfg.Classifier.Endpoint)
	}
	if cfg.Events.AMQPURL != "amqp://from-file" {
		t.Errorf("amqp url = %q, want file value kept", cfg.Events.AMQPURL)
	}
}

func TestResolvedEndpoint(t *testing.T) {
	tests := []struct {
		cfg  ClassifierConfig
		want string
	}{
		{ClassifierConfig{}, ""},
		{ClassifierConfig{Model: "facebook/bart-large-mnli"}, hostedModels + "facebook/bart-large-mnli"},
		{ClassifierConfig{Model: "x", Endpoint: "https://e"}, "https://e"},
	}
	for _, tt := range tests {
		if got := tt.cfg.ResolvedEndpoint(); got != tt.want {
			t.Errorf("ResolvedEndpoint(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestDirsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := ConfigPath(); got != "/tmp/cfg/budgetbot/config.toml" {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := (StoreConfig{}).JournalPath(); got != "/tmp/data/budgetbot/journal.db" {
		t.Errorf("JournalPath = %q", got)
	}
	if got := (StoreConfig{Path: "/x.db"}).JournalPath(); got != "/x.db" {
		t.Errorf("JournalPath override = %q", got)
	}
}
