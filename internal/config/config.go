// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15m", "24h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all reporter configuration.
type Config struct {
	NewRelic   NewRelicConfig   `yaml:"newrelic"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Report     ReportConfig     `yaml:"report"`
	Secrets    SecretsConfig    `yaml:"secrets"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// NewRelicConfig identifies the dashboard the report is built from.
type NewRelicConfig struct {
	AccountID     string `yaml:"account_id"`
	DashboardGUID string `yaml:"dashboard_guid"`
}

// ThresholdsConfig holds the numeric cutoffs the trend rules compare against.
type ThresholdsConfig struct {
	CapacityWarning  float64 `yaml:"capacity_warning"`
	CapacityCritical float64 `yaml:"capacity_critical"`
	RatioStability   float64 `yaml:"ratio_stability"`
}

// ReportConfig holds human-facing report metadata.
type ReportConfig struct {
	Timezone     string `yaml:"timezone"`
	EventName    string `yaml:"event_name"`
	DashboardURL string `yaml:"dashboard_url"`
	UserName     string `yaml:"user_name"`
	TemplatesDir string `yaml:"templates_dir"`
}

// SecretsConfig selects the secrets provider and names the logical
// secrets the reporter needs from it.
type SecretsConfig struct {
	Provider   string     `yaml:"provider"` // aws | ssm | vault
	Region     string     `yaml:"region"`
	VaultAddr  string     `yaml:"vault_addr"`
	VaultMount string     `yaml:"vault_mount"`
	Refs       SecretRefs `yaml:"refs"`
}

// SecretRefs are the store-specific identifiers of each credential.
type SecretRefs struct {
	APIKey       string `yaml:"api_key"`
	SlackWebhook string `yaml:"slack_webhook"`
	O365         string `yaml:"o365_credentials"`
}

// DeliveryConfig selects channels and their settings.
type DeliveryConfig struct {
	Mode           string   `yaml:"mode"` // console | slack | email | both | all
	Recipients     []string `yaml:"recipients"`
	SpoolDir       string   `yaml:"spool_dir"`
	SpoolMaxSizeMB int      `yaml:"spool_max_size_mb"`
}

// ScheduleConfig controls repeated runs. A zero interval means run once.
type ScheduleConfig struct {
	Interval Duration `yaml:"interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdsConfig{
			CapacityWarning:  70.0,
			CapacityCritical: 85.0,
			RatioStability:   5.0,
		},
		Report: ReportConfig{
			Timezone:  "US/Eastern",
			EventName: "Weekend Performance Report",
			UserName:  "SRE Automation",
		},
		Secrets: SecretsConfig{
			Provider:   "aws",
			VaultMount: "secret",
			Refs: SecretRefs{
				APIKey: "prod/newrelic/api-key",
			},
		},
		Delivery: DeliveryConfig{
			Mode:           "slack",
			SpoolDir:       "./spool",
			SpoolMaxSizeMB: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take precedence over values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist — use defaults + env overrides
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	DashboardGUID string
	DeliveryMode  string
	EventName     string
	TemplatesDir  string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	candidates := configSearchPaths()
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	// Layer 1: embedded config (lowest priority data layer)
	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	// Layer 2: external YAML file
	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0] // caller-supplied (may be "")
	} else {
		filePath = Locate() // auto-discover
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	// Layer 3: environment variables
	applyEnvOverrides(cfg)

	// Layer 4: CLI flags (highest priority)
	if cli.DashboardGUID != "" {
		cfg.NewRelic.DashboardGUID = cli.DashboardGUID
	}
	if cli.DeliveryMode != "" {
		cfg.Delivery.Mode = cli.DeliveryMode
	}
	if cli.EventName != "" {
		cfg.Report.EventName = cli.EventName
	}
	if cli.TemplatesDir != "" {
		cfg.Report.TemplatesDir = cli.TemplatesDir
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setString("NEW_RELIC_ACCOUNT_ID", &cfg.NewRelic.AccountID)
	setString("DASHBOARD_GUID", &cfg.NewRelic.DashboardGUID)
	setFloat("THRESHOLD_CAPACITY_WARNING", &cfg.Thresholds.CapacityWarning)
	setFloat("THRESHOLD_CAPACITY_CRITICAL", &cfg.Thresholds.CapacityCritical)
	setFloat("THRESHOLD_RATIO_STABILITY", &cfg.Thresholds.RatioStability)
	setString("REPORT_TIMEZONE", &cfg.Report.Timezone)
	setString("EVENT_NAME", &cfg.Report.EventName)
	setString("DASHBOARD_URL", &cfg.Report.DashboardURL)
	setString("REPORT_USER_NAME", &cfg.Report.UserName)
	setString("SECRETS_PROVIDER", &cfg.Secrets.Provider)
	setString("AWS_REGION", &cfg.Secrets.Region)
	setString("VAULT_ADDR", &cfg.Secrets.VaultAddr)
	setString("VAULT_MOUNT", &cfg.Secrets.VaultMount)
	setString("SECRET_ID_NEW_RELIC_API_KEY", &cfg.Secrets.Refs.APIKey)
	setString("SECRET_ID_SLACK_WEBHOOK", &cfg.Secrets.Refs.SlackWebhook)
	setString("SECRET_ID_O365_CREDENTIALS", &cfg.Secrets.Refs.O365)
	setString("LOG_LEVEL", &cfg.Logging.Level)

	if v := os.Getenv("EMAIL_RECIPIENTS"); v != "" {
		var recipients []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
		cfg.Delivery.Recipients = recipients
	}
}

// validDeliveryModes are the accepted values for Delivery.Mode.
var validDeliveryModes = map[string]bool{
	"console": true,
	"slack":   true,
	"email":   true,
	"both":    true,
	"all":     true,
}

// Validate checks that the configuration is complete enough to run.
func (c *Config) Validate() error {
	if c.NewRelic.AccountID == "" {
		return fmt.Errorf("newrelic account_id is required")
	}
	if c.NewRelic.DashboardGUID == "" {
		return fmt.Errorf("newrelic dashboard_guid is required")
	}
	if c.Thresholds.CapacityWarning >= c.Thresholds.CapacityCritical {
		return fmt.Errorf("capacity_warning (%.1f) must be below capacity_critical (%.1f)",
			c.Thresholds.CapacityWarning, c.Thresholds.CapacityCritical)
	}
	if c.Report.Timezone == "" {
		return fmt.Errorf("report timezone is required")
	}
	if !validDeliveryModes[c.Delivery.Mode] {
		return fmt.Errorf("unknown delivery mode %q", c.Delivery.Mode)
	}
	switch c.Secrets.Provider {
	case "aws", "ssm":
	case "vault":
		if c.Secrets.VaultAddr == "" {
			return fmt.Errorf("vault provider requires vault_addr (or VAULT_ADDR)")
		}
	default:
		return fmt.Errorf("unsupported secrets provider %q", c.Secrets.Provider)
	}
	return nil
}
