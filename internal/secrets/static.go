package secrets

import (
	"context"
	"fmt"
)

// Static serves secrets from an in-memory map. Used by tests and local
// development runs where no real store is reachable.
type Static map[string]Payload

// GetSecret returns the mapped payload or an error when the id is absent.
func (s Static) GetSecret(_ context.Context, secretID string) (Payload, error) {
	payload, ok := s[secretID]
	if !ok {
		return nil, fmt.Errorf("static secrets: %q not found", secretID)
	}
	return payload, nil
}
