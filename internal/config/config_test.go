package config

import (
	"path/filepath"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Port:            "8081",
		LogLevel:        "info",
		DataBackend:     "sqlite",
		SQLiteDBPath:    filepath.Join(dir, "ledger.db"),
		StateFilePath:   filepath.Join(dir, "state.json"),
		DefaultCurrency: "SAR",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port = %s", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Fatalf("default backend = %s", cfg.DataBackend)
	}
	if cfg.DefaultCurrency != "SAR" {
		t.Fatalf("default currency = %s", cfg.DefaultCurrency)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "jsonfile")
	cfg := Load()
	if cfg.Port != "9090" || cfg.DataBackend != "jsonfile" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-numeric port", func(c *Config) { c.Port = "abc" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"unknown backend", func(c *Config) { c.DataBackend = "redis" }},
		{"empty sqlite path", func(c *Config) { c.SQLiteDBPath = "" }},
		{"empty jsonfile path", func(c *Config) { c.DataBackend = "jsonfile"; c.StateFilePath = "" }},
		{"unknown currency", func(c *Config) { c.DefaultCurrency = "XXX" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
