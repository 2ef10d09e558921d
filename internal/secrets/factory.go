package secrets

import (
	"context"
	"fmt"
	"os"

	"github.com/tpsbot/reporter/internal/config"
)

// New builds the configured secrets provider, wrapped in a TTL cache.
// Vault token auth comes from VAULT_TOKEN, never from the config file.
func New(ctx context.Context, cfg config.SecretsConfig) (Provider, error) {
	var (
		inner Provider
		err   error
	)
	switch cfg.Provider {
	case "aws":
		inner, err = NewSecretsManager(ctx, cfg.Region)
	case "ssm":
		inner, err = NewParameterStore(ctx, cfg.Region)
	case "vault":
		inner, err = NewVault(cfg.VaultAddr, os.Getenv("VAULT_TOKEN"), cfg.VaultMount)
	default:
		return nil, fmt.Errorf("unsupported secrets provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewCached(inner, 0), nil
}
