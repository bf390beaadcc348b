package common

import (
	"context"
	"fmt"

	"github.com/airalabs/aira/internal/interfaces"
)

// ResolveAPIKey resolves an API key with KV-first resolution order:
// persisted KV store value, then the config/env fallback. Returns an
// error when neither source yields a non-empty key.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, key, configValue string) (string, error) {
	if kvStorage != nil {
		if value, err := kvStorage.Get(ctx, key); err == nil && value != "" {
			return value, nil
		}
	}

	if configValue != "" {
		return configValue, nil
	}

	return "", fmt.Errorf("API key '%s' not found in KV store or configuration", key)
}
