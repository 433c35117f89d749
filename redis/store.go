package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/kbukum/transducekit/errors"
)

// Store provides typed JSON get/set operations under a key prefix.
type Store[C any] struct {
	client    *Client
	keyPrefix string
	ttl       time.Duration
	cipher    Cipher
}

// Cipher seals stored values. aad is the full Redis key.
// *encryption.Cipher satisfies it.
type Cipher interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(sealed, aad []byte) ([]byte, error)
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	cipher Cipher
}

// WithCipher seals every value before it is written.
func WithCipher(c Cipher) StoreOption {
	return func(o *storeOptions) { o.cipher = c }
}

// NewStore creates a Store. All keys are prefixed with keyPrefix and a
// colon; ttl of 0 means no expiration.
func NewStore[C any](client *Client, keyPrefix string, ttl time.Duration, opts ...StoreOption) *Store[C] {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[C]{client: client, keyPrefix: keyPrefix, ttl: ttl, cipher: o.cipher}
}

func (s *Store[C]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load deserializes the value at key. A missing key is a NOT_FOUND AppError.
func (s *Store[C]) Load(ctx context.Context, key string) (*C, error) {
	full := s.fullKey(key)
	raw, err := s.client.rdb.Get(ctx, full).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperrors.NotFound(s.keyPrefix, key)
		}
		return nil, fmt.Errorf("store load %q: %w", key, err)
	}
	if s.cipher != nil {
		if raw, err = s.cipher.Open(raw, []byte(full)); err != nil {
			return nil, fmt.Errorf("store open %q: %w", key, err)
		}
	}

	var val C
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("store unmarshal %q: %w", key, err)
	}
	return &val, nil
}

// Save serializes val to JSON and stores it with the Store's TTL.
func (s *Store[C]) Save(ctx context.Context, key string, val *C) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("store marshal %q: %w", key, err)
	}
	full := s.fullKey(key)
	if s.cipher != nil {
		if data, err = s.cipher.Seal(data, []byte(full)); err != nil {
			return fmt.Errorf("store seal %q: %w", key, err)
		}
	}
	if err := s.client.rdb.Set(ctx, full, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *Store[C]) Delete(ctx context.Context, key string) error {
	if err := s.client.rdb.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("store delete %q: %w", key, err)
	}
	return nil
}
