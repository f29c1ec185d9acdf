// Package redis serves statement assets from Redis.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	statement "statement-pdf/internal/statement/domain"
)

const defaultKeyPrefix = "statement:asset:"

// Client is the subset of the go-redis client the store uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// AssetStore reads assets stored as raw bytes under prefixed keys.
type AssetStore struct {
	client Client
	prefix string
	ttl    time.Duration
}

// NewAssetStore constructs a store. An empty prefix uses the default.
func NewAssetStore(client Client, prefix string, ttl time.Duration) (*AssetStore, error) {
	if client == nil {
		return nil, errors.New("redis asset store: nil client")
	}
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &AssetStore{client: client, prefix: prefix, ttl: ttl}, nil
}

// Fetch returns the bytes under prefix+key.
func (s *AssetStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, &statement.AssetNotFoundError{Key: key}
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put stores data under prefix+key with the store TTL.
func (s *AssetStore) Put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// Dial opens a client from a redis:// URL.
func Dial(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}
