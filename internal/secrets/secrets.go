// Package secrets resolves credentials from an enterprise secrets store.
// Providers share one interface so the rest of the reporter never knows
// whether a webhook URL came from Secrets Manager, Parameter Store, or
// Vault.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
)

// Payload is a decoded secret: a JSON object (map), a JSON array, or the
// raw string when the stored value is not JSON.
type Payload any

// Provider fetches one secret payload by its store-specific identifier.
type Provider interface {
	GetSecret(ctx context.Context, secretID string) (Payload, error)
}

// maybeParseJSON decodes JSON payloads and passes everything else through
// untouched.
func maybeParseJSON(value string) Payload {
	if value == "" {
		return value
	}
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return value
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return decoded
	}
	// Scalars ("hunter2", 42) stay as the original string so callers can
	// treat bare-string secrets uniformly.
	return value
}

// ExtractField pulls a single string field from a secret payload, trying
// keys in order. A bare-string payload is returned as-is regardless of
// keys. Returns "" when nothing matches.
func ExtractField(payload Payload, keys ...string) string {
	switch p := payload.(type) {
	case string:
		return p
	case map[string]any:
		for _, key := range keys {
			if v, ok := p[key]; ok {
				if s, ok := v.(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

// RequireField is ExtractField that errors when no key matches.
func RequireField(payload Payload, secretID string, keys ...string) (string, error) {
	if v := ExtractField(payload, keys...); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %q has none of the fields %v", secretID, keys)
}
