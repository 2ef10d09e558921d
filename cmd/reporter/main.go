// Package main is the entry point for the TPS report generator.
// It initializes configuration, resolves credentials from the secrets
// store, wires the delivery channels, and runs the report pipeline once
// or on a fixed interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tpsbot/reporter/internal/config"
	"github.com/tpsbot/reporter/internal/delivery"
	"github.com/tpsbot/reporter/internal/newrelic"
	"github.com/tpsbot/reporter/internal/pipeline"
	"github.com/tpsbot/reporter/internal/report"
	"github.com/tpsbot/reporter/internal/schedule"
	"github.com/tpsbot/reporter/internal/secrets"
	"github.com/tpsbot/reporter/internal/spool"
	"github.com/tpsbot/reporter/internal/translate"
	"github.com/tpsbot/reporter/internal/widget"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath   = flag.String("config", "", "Path to configuration file (default: auto-discover)")
	deliveryMode = flag.String("delivery", "", "Delivery target: console, slack, email, both, all")
	eventName    = flag.String("event-name", "", "Override event name in the report")
	templatesDir = flag.String("templates-dir", "", "Directory containing report templates")
	once         = flag.Bool("once", false, "Run a single report and exit, ignoring any schedule")
	showVersion  = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("tps-reporter %s\n", version)
		os.Exit(0)
	}

	cli := config.CLIOverrides{
		DeliveryMode: *deliveryMode,
		EventName:    *eventName,
		TemplatesDir: *templatesDir,
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadLayered(cli, embeddedConfig, *configPath)
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting TPS reporter",
		zap.String("version", version),
		zap.String("dashboard_guid", cfg.NewRelic.DashboardGUID))

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Report run failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Reporter stopped")
}

// run builds the pipeline from configuration and executes it, once or on
// the configured interval. Returns the last run's error so a one-shot
// invocation exits non-zero on failure.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.Report.Timezone, err)
	}

	provider, err := secrets.New(ctx, cfg.Secrets)
	if err != nil {
		return fmt.Errorf("building secrets provider: %w", err)
	}

	apiKey, err := resolveAPIKey(ctx, provider, cfg.Secrets.Refs.APIKey)
	if err != nil {
		return err
	}

	sp, err := spool.New(cfg.Delivery.SpoolDir, cfg.Delivery.SpoolMaxSizeMB, logger)
	if err != nil {
		return fmt.Errorf("initializing spool: %w", err)
	}

	registry := delivery.NewRegistry(sp, logger)
	registerDeliveries(ctx, cfg, provider, registry, logger)

	renderer, err := report.NewRenderer(cfg.Report.TemplatesDir)
	if err != nil {
		return err
	}

	pipe := pipeline.New(
		newrelic.New(apiKey, cfg.NewRelic.DashboardGUID, logger),
		widget.NewNormalizer(logger),
		translate.New(translate.Thresholds{
			CapacityWarning:  cfg.Thresholds.CapacityWarning,
			CapacityCritical: cfg.Thresholds.CapacityCritical,
			RatioStability:   cfg.Thresholds.RatioStability,
		}),
		report.NewBuilder(report.Meta{
			UserName:     cfg.Report.UserName,
			EventName:    cfg.Report.EventName,
			DashboardURL: cfg.Report.DashboardURL,
		}, loc),
		renderer,
		registry,
		logger,
	)

	interval := cfg.Schedule.Interval.Duration
	if *once {
		interval = 0
	}

	var lastErr error
	runner := schedule.New(interval, logger)
	runner.Start(ctx, func(ctx context.Context) {
		if _, err := pipe.Run(ctx, cfg.Report.EventName); err != nil {
			logger.Error("Report generation failed", zap.Error(err))
			lastErr = err
			return
		}
		lastErr = nil
	})
	return lastErr
}

// resolveAPIKey fetches the New Relic API key from the secrets store.
func resolveAPIKey(ctx context.Context, provider secrets.Provider, secretID string) (string, error) {
	payload, err := provider.GetSecret(ctx, secretID)
	if err != nil {
		return "", fmt.Errorf("fetching API key secret: %w", err)
	}
	return secrets.RequireField(payload, secretID, "api_key", "key")
}

// registerDeliveries resolves channel credentials and registers the
// channels the configured mode asks for. Channels missing credentials are
// skipped with a warning rather than failing the run.
func registerDeliveries(
	ctx context.Context,
	cfg *config.Config,
	provider secrets.Provider,
	registry *delivery.Registry,
	logger *zap.Logger,
) {
	mode := cfg.Delivery.Mode

	if mode == "console" || mode == "all" {
		registry.Register(delivery.NewConsole(os.Stdout))
	}

	if mode == "slack" || mode == "both" || mode == "all" {
		registry.Register(delivery.NewSlack(resolveSlackWebhook(ctx, cfg, provider, logger), logger))
	}

	if mode == "email" || mode == "both" || mode == "all" {
		registry.Register(delivery.NewO365Mail(
			resolveO365Credentials(ctx, cfg, provider, logger),
			cfg.Delivery.Recipients,
			logger,
		))
	}
}

func resolveSlackWebhook(ctx context.Context, cfg *config.Config, provider secrets.Provider, logger *zap.Logger) string {
	secretID := cfg.Secrets.Refs.SlackWebhook
	if secretID == "" {
		logger.Warn("Slack delivery requested but no slack_webhook secret configured")
		return ""
	}
	payload, err := provider.GetSecret(ctx, secretID)
	if err != nil {
		logger.Warn("Failed to fetch Slack webhook secret", zap.Error(err))
		return ""
	}
	webhook := secrets.ExtractField(payload, "url", "webhook")
	if webhook == "" {
		logger.Warn("Slack secret did not contain a webhook URL",
			zap.String("secret_id", secretID))
	}
	return webhook
}

func resolveO365Credentials(ctx context.Context, cfg *config.Config, provider secrets.Provider, logger *zap.Logger) delivery.O365Credentials {
	secretID := cfg.Secrets.Refs.O365
	if secretID == "" {
		logger.Warn("Email delivery requested but no o365_credentials secret configured")
		return delivery.O365Credentials{}
	}
	payload, err := provider.GetSecret(ctx, secretID)
	if err != nil {
		logger.Warn("Failed to fetch O365 credentials secret", zap.Error(err))
		return delivery.O365Credentials{}
	}
	creds := delivery.O365Credentials{
		TenantID:     secrets.ExtractField(payload, "tenant_id", "tenant"),
		ClientID:     secrets.ExtractField(payload, "client_id", "app_id"),
		ClientSecret: secrets.ExtractField(payload, "client_secret", "secret"),
		SenderEmail:  secrets.ExtractField(payload, "sender_email", "from"),
	}
	if creds.TenantID == "" || creds.ClientID == "" || creds.ClientSecret == "" || creds.SenderEmail == "" {
		logger.Warn("O365 secret missing required fields",
			zap.String("secret_id", secretID))
	}
	return creds
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
