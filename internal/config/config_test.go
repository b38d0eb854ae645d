package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "archive"
log_level = "debug"

[strategy]
scorer = "naive"
top_n = 5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "archive" || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: mode=%s log_level=%s", cfg.Mode, cfg.LogLevel)
	}
	if cfg.Strategy.Scorer != "naive" || cfg.Strategy.TopN != 5 {
		t.Fatalf("strategy not merged: %+v", cfg.Strategy)
	}
	// Untouched sections keep defaults.
	if cfg.Strategy.BuyVenue != "stockx" {
		t.Fatalf("default buy venue lost: %s", cfg.Strategy.BuyVenue)
	}
	if len(cfg.Venues) != 3 {
		t.Fatalf("default venues lost: %v", cfg.Venues)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SNEAKY_MODE", "report")
	t.Setenv("SNEAKY_STRATEGY_SELL_VENUES", "du, flightclub")
	t.Setenv("SNEAKY_POSTGRES_ENABLED", "true")
	t.Setenv("SNEAKY_STRATEGY_CONCURRENCY", "3")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Mode != "report" {
		t.Fatalf("mode %s want report", cfg.Mode)
	}
	if len(cfg.Strategy.SellVenues) != 2 || cfg.Strategy.SellVenues[0] != "du" {
		t.Fatalf("sell venues %v", cfg.Strategy.SellVenues)
	}
	if !cfg.Postgres.Enabled {
		t.Fatalf("postgres.enabled not overridden")
	}
	if cfg.Strategy.Concurrency != 3 {
		t.Fatalf("concurrency %d want 3", cfg.Strategy.Concurrency)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "sideways"
	cfg.Strategy.BuyVenue = "goat"
	cfg.Strategy.Scorer = "magic"
	delete(cfg.Fees, "du")

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	for _, want := range []string{"unknown mode", "buy_venue", "scorer", "missing fee schedule"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error missing %q: %v", want, err)
		}
	}
}

func TestValidateSellVenueMustBeSellSide(t *testing.T) {
	cfg := Defaults()
	cfg.Strategy.SellVenues = []string{"stockx"}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "not marked sell_side") {
		t.Fatalf("err %v", err)
	}
}
