// Package kvstore keeps ephemeral keyed state with expiry. Redis backs it in
// production; an in-memory map serves development and tests.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is missing or expired.
var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key; a zero ttl keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// New returns a Redis-backed store when client is non-nil and an in-memory
// store otherwise.
func New(client *goredis.Client) Store {
	if client != nil {
		return NewRedisStore(client)
	}
	return NewMemoryStore()
}

func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("kvstore: decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
