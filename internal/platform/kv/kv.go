// Package kv is the durable per-client key-value store consent state lives in.
// It plays the role browser cookies/localStorage play for a purely client-side
// banner: values are JSON documents, keys are namespaced by subject, and each
// key may carry its own expiry.
package kv

//go:generate mockgen -source=kv.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"consentd/pkg/platform/sentinel"
)

// Store is implemented by every backend.
// Error Contract:
//   - Get returns sentinel.ErrNotFound when the key is absent or expired
//   - Set with ttl <= 0 stores the value without expiry
//   - Delete ignores missing keys
//   - Infrastructure failures are returned wrapped
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Key joins a subject namespace and a name: Key("visitor:abc", "consent") → "visitor:abc:consent".
func Key(namespace string, parts ...string) string {
	return strings.Join(append([]string{namespace}, parts...), ":")
}

// GetJSON loads key into dest. It returns sentinel.ErrNotFound unchanged so
// callers can distinguish "absent" from "unreadable".
func GetJSON(ctx context.Context, s Store, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}

// IsNotFound reports whether err means the key was absent.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
