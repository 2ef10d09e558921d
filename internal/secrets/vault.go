package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
)

// VaultProvider reads secrets from a HashiCorp Vault KV v2 mount.
type VaultProvider struct {
	client *vault.Client
	mount  string
}

// NewVault connects to Vault at addr using token auth. mount defaults to
// "secret" when empty.
func NewVault(addr, token, mount string) (*VaultProvider, error) {
	if addr == "" || token == "" {
		return nil, fmt.Errorf("vault provider requires an address and a token")
	}
	if mount == "" {
		mount = "secret"
	}
	cfg := vault.DefaultConfig()
	cfg.Address = addr
	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(token)
	return &VaultProvider{client: client, mount: mount}, nil
}

// GetSecret reads the latest version of a KV v2 secret and returns its
// data map.
func (p *VaultProvider) GetSecret(ctx context.Context, secretID string) (Payload, error) {
	secret, err := p.client.KVv2(p.mount).Get(ctx, secretID)
	if err != nil {
		return nil, fmt.Errorf("vault get %q: %w", secretID, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("vault secret %q is empty", secretID)
	}
	return secret.Data, nil
}
