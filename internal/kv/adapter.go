package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/existflow/taskboard/internal/logger"
)

// Adapter reads and writes JSON values on top of a Store. Missing and corrupt
// values read as absent; failures are logged at the adapter boundary.
type Adapter struct {
	store Store
}

// NewAdapter wraps a store
func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store}
}

// Store returns the wrapped store
func (a *Adapter) Store() Store {
	return a.store
}

// LoadJSON decodes the value under key into v. It reports false when the key
// is missing or its value does not parse; err is set only when the store itself
// failed.
func (a *Adapter) LoadJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := a.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to load key", logger.F("key", key), logger.F("error", err))
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("Ignoring corrupt value", logger.F("key", key), logger.F("error", err))
		return false, nil
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key
func (a *Adapter) SaveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode value", logger.F("key", key), logger.F("error", err))
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := a.store.Set(ctx, key, data); err != nil {
		logger.Error("Failed to persist key", logger.F("key", key), logger.F("error", err))
		return err
	}
	return nil
}

// LoadString reads a raw string value
func (a *Adapter) LoadString(ctx context.Context, key string) (string, bool, error) {
	data, err := a.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		logger.Error("Failed to load key", logger.F("key", key), logger.F("error", err))
		return "", false, err
	}
	return string(data), true, nil
}

// SaveString stores a raw string value
func (a *Adapter) SaveString(ctx context.Context, key, value string) error {
	if err := a.store.Set(ctx, key, []byte(value)); err != nil {
		logger.Error("Failed to persist key", logger.F("key", key), logger.F("error", err))
		return err
	}
	return nil
}
