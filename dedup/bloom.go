// Package dedup provides a RedisBloom-backed fast path for fingerprint
// duplicate checks. The filter is advisory: a hit still requires a store
// lookup (bloom filters have false positives), and a miss skips the lookup
// only for the happy path. The store's UNIQUE constraint remains the final
// arbiter.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BloomConfig configures the RedisBloom connection and filter key.
type BloomConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items).
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001).
	ErrorRate float64
}

func (c *BloomConfig) applyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Key == "" {
		c.Key = "articles:fingerprints"
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
	if c.Capacity == 0 {
		c.Capacity = 100000
	}
	if c.ErrorRate == 0 {
		c.ErrorRate = 0.001
	}
}

// FingerprintFilter is a minimal Redis-backed Bloom wrapper using RedisBloom
// commands. Fingerprints are already SHA-256 hex, so they go in unhashed.
type FingerprintFilter struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewFingerprintFilter connects to Redis and reserves the filter if absent.
func NewFingerprintFilter(ctx context.Context, cfg BloomConfig) (*FingerprintFilter, error) {
	cfg.applyDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	f := &FingerprintFilter{client: client, key: cfg.Key, ttl: cfg.TTL}

	// BF.RESERVE fails when the RedisBloom module is missing or the key
	// already exists; BF.ADD auto-creates the filter in either case, so the
	// error is ignored.
	exists, err := client.Exists(pingCtx, cfg.Key).Result()
	if err == nil && exists == 0 {
		_ = client.Do(pingCtx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity).Err()
	}

	return f, nil
}

// Close closes the underlying Redis client.
func (f *FingerprintFilter) Close() error {
	return f.client.Close()
}

// MayContain checks the filter with BF.EXISTS. A false return is definitive;
// a true return may be a false positive.
func (f *FingerprintFilter) MayContain(ctx context.Context, fingerprint string) (bool, error) {
	res, err := f.client.Do(ctx, "BF.EXISTS", f.key, fingerprint).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Add inserts the fingerprint with BF.ADD and refreshes the key TTL so the
// filter stays alive for ttl after the most recent insertion.
func (f *FingerprintFilter) Add(ctx context.Context, fingerprint string) error {
	if err := f.client.Do(ctx, "BF.ADD", f.key, fingerprint).Err(); err != nil {
		return err
	}
	return f.client.Expire(ctx, f.key, f.ttl).Err()
}
