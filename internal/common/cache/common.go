package cache

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// GetWithCached implements cache-aside over a remote tier.
// Cache read and write errors never fail the call; fn is the source of truth.
func GetWithCached[T any](
	ctx context.Context,
	cache BasicOps,
	key string,
	ttl time.Duration,
	marshal func(T) (string, error),
	unmarshal func(string) (T, error),
	fn func(context.Context) (T, error),
) (T, bool, error) {
	var zero T

	if cached, err := cache.Get(ctx, key); err == nil && cached != "" {
		if result, err := unmarshal(cached); err == nil {
			return result, true, nil
		}
	}

	data, err := fn(ctx)
	if err != nil {
		return zero, false, err
	}

	if encoded, err := marshal(data); err == nil {
		_ = cache.Set(ctx, key, encoded, JitterTTL(ttl))
	}
	return data, false, nil
}

// JitterTTL shortens ttl by up to 10% so entries written together do not expire together.
func JitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	maxJitter := int64(ttl / 10)
	if maxJitter <= 0 {
		return ttl
	}
	n, err := rand.Int(rand.Reader, big.NewInt(maxJitter+1))
	if err != nil {
		return ttl
	}
	return ttl - time.Duration(n.Int64())
}
