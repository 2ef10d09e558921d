package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Thresholds.CapacityWarning != 70.0 {
		t.Errorf("CapacityWarning = %v, want 70.0", cfg.Thresholds.CapacityWarning)
	}
	if cfg.Thresholds.CapacityCritical != 85.0 {
		t.Errorf("CapacityCritical = %v, want 85.0", cfg.Thresholds.CapacityCritical)
	}
	if cfg.Thresholds.RatioStability != 5.0 {
		t.Errorf("RatioStability = %v, want 5.0", cfg.Thresholds.RatioStability)
	}
	if cfg.Report.Timezone != "US/Eastern" {
		t.Errorf("Timezone = %q, want US/Eastern", cfg.Report.Timezone)
	}
	if cfg.Secrets.Provider != "aws" {
		t.Errorf("Secrets.Provider = %q, want aws", cfg.Secrets.Provider)
	}
	if cfg.Delivery.Mode != "slack" {
		t.Errorf("Delivery.Mode = %q, want slack", cfg.Delivery.Mode)
	}
	if cfg.Delivery.SpoolMaxSizeMB != 10 {
		t.Errorf("SpoolMaxSizeMB = %d, want 10", cfg.Delivery.SpoolMaxSizeMB)
	}
}

func TestLoadFromBytes(t *testing.T) {
	data := []byte(`
newrelic:
  account_id: "1234567"
  dashboard_guid: "ABC-GUID"
thresholds:
  capacity_warning: 60
report:
  event_name: "Holiday Readiness"
schedule:
  interval: 24h
`)

	cfg, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}

	if cfg.NewRelic.AccountID != "1234567" {
		t.Errorf("AccountID = %q", cfg.NewRelic.AccountID)
	}
	if cfg.Thresholds.CapacityWarning != 60 {
		t.Errorf("CapacityWarning = %v, want 60", cfg.Thresholds.CapacityWarning)
	}
	// Unset fields keep their defaults.
	if cfg.Thresholds.CapacityCritical != 85.0 {
		t.Errorf("CapacityCritical = %v, want default 85.0", cfg.Thresholds.CapacityCritical)
	}
	if cfg.Report.EventName != "Holiday Readiness" {
		t.Errorf("EventName = %q", cfg.Report.EventName)
	}
	if cfg.Schedule.Interval.Duration != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", cfg.Schedule.Interval.Duration)
	}
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	if _, err := LoadFromBytes([]byte("newrelic: [not a map")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromBytes_InvalidDuration(t *testing.T) {
	if _, err := LoadFromBytes([]byte("schedule:\n  interval: weekly")); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Delivery.Mode != "slack" {
		t.Errorf("Mode = %q, want default slack", cfg.Delivery.Mode)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_GUID", "ENV-GUID")
	t.Setenv("THRESHOLD_CAPACITY_WARNING", "65.5")
	t.Setenv("EMAIL_RECIPIENTS", "a@example.com, b@example.com ,")
	t.Setenv("SECRET_ID_SLACK_WEBHOOK", "prod/slack/webhook")

	cfg, err := LoadFromBytes(nil)
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}

	if cfg.NewRelic.DashboardGUID != "ENV-GUID" {
		t.Errorf("DashboardGUID = %q", cfg.NewRelic.DashboardGUID)
	}
	if cfg.Thresholds.CapacityWarning != 65.5 {
		t.Errorf("CapacityWarning = %v", cfg.Thresholds.CapacityWarning)
	}
	if len(cfg.Delivery.Recipients) != 2 || cfg.Delivery.Recipients[1] != "b@example.com" {
		t.Errorf("Recipients = %v", cfg.Delivery.Recipients)
	}
	if cfg.Secrets.Refs.SlackWebhook != "prod/slack/webhook" {
		t.Errorf("SlackWebhook ref = %q", cfg.Secrets.Refs.SlackWebhook)
	}
}

func TestLoadLayered_Precedence(t *testing.T) {
	embedded := []byte(`
newrelic:
  account_id: "embedded-account"
  dashboard_guid: "embedded-guid"
report:
  event_name: "Embedded Event"
`)

	dir := t.TempDir()
	filePath := filepath.Join(dir, "reporter.yaml")
	fileData := []byte(`
newrelic:
  dashboard_guid: "file-guid"
report:
  event_name: "File Event"
`)
	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EVENT_NAME", "Env Event")

	cli := CLIOverrides{EventName: "CLI Event"}

	cfg, err := LoadLayered(cli, embedded, filePath)
	if err != nil {
		t.Fatalf("LoadLayered: %v", err)
	}

	// Untouched by file, env, and CLI: the embedded layer survives.
	if cfg.NewRelic.AccountID != "embedded-account" {
		t.Errorf("AccountID = %q, want embedded-account", cfg.NewRelic.AccountID)
	}
	// File overrides embedded.
	if cfg.NewRelic.DashboardGUID != "file-guid" {
		t.Errorf("DashboardGUID = %q, want file-guid", cfg.NewRelic.DashboardGUID)
	}
	// CLI wins over env, file, and embedded.
	if cfg.Report.EventName != "CLI Event" {
		t.Errorf("EventName = %q, want CLI Event", cfg.Report.EventName)
	}
}

func TestLoadLayered_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "reporter.yaml")
	if err := os.WriteFile(filePath, []byte("report:\n  event_name: \"File Event\""), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVENT_NAME", "Env Event")

	cfg, err := LoadLayered(CLIOverrides{}, nil, filePath)
	if err != nil {
		t.Fatalf("LoadLayered: %v", err)
	}
	if cfg.Report.EventName != "Env Event" {
		t.Errorf("EventName = %q, want Env Event", cfg.Report.EventName)
	}
}

func TestLoadLayered_NoExternalFile(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatalf("LoadLayered: %v", err)
	}
	if cfg.Report.EventName != "Weekend Performance Report" {
		t.Errorf("EventName = %q, want default", cfg.Report.EventName)
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NewRelic.AccountID = "1234567"
	cfg.Schedule.Interval = Duration{Duration: time.Hour}

	path := filepath.Join(t.TempDir(), "nested", "reporter.yaml")
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.NewRelic.AccountID != "1234567" {
		t.Errorf("AccountID = %q", loaded.NewRelic.AccountID)
	}
	if loaded.Schedule.Interval.Duration != time.Hour {
		t.Errorf("Interval = %v", loaded.Schedule.Interval.Duration)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.NewRelic.AccountID = "1234567"
		cfg.NewRelic.DashboardGUID = "GUID"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing account", func(c *Config) { c.NewRelic.AccountID = "" }, true},
		{"missing guid", func(c *Config) { c.NewRelic.DashboardGUID = "" }, true},
		{"warning above critical", func(c *Config) { c.Thresholds.CapacityWarning = 90 }, true},
		{"empty timezone", func(c *Config) { c.Report.Timezone = "" }, true},
		{"bad delivery mode", func(c *Config) { c.Delivery.Mode = "carrier-pigeon" }, true},
		{"ssm provider", func(c *Config) { c.Secrets.Provider = "ssm" }, false},
		{"vault without addr", func(c *Config) { c.Secrets.Provider = "vault" }, true},
		{"vault with addr", func(c *Config) {
			c.Secrets.Provider = "vault"
			c.Secrets.VaultAddr = "https://vault.example.com"
		}, false},
		{"unknown provider", func(c *Config) { c.Secrets.Provider = "gcp" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
