package store

import (
	"context"
	"fmt"
	"time"

	"Concierge/backend/go/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisProfileStore keeps each session's facts in one Redis hash. A TTL, when set, is
// refreshed on every write.
type RedisProfileStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProfileStore creates a new RedisProfileStore.
func NewRedisProfileStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisProfileStore {
	return &RedisProfileStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisProfileStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisProfileStore) Upsert(ctx context.Context, sessionID, key, value string) error {
	k := s.key(sessionID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", key, err)
	}
	return nil
}

// Profile returns the first MaxProfileFacts keys in lexical order.
func (s *RedisProfileStore) Profile(ctx context.Context, sessionID string) (models.Profile, error) {
	all, err := s.rdb.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("profile of %s: %w", sessionID, err)
	}
	full := models.Profile(all)
	profile := make(models.Profile, min(len(full), MaxProfileFacts))
	for _, k := range full.Keys() {
		if len(profile) == MaxProfileFacts {
			break
		}
		profile[k] = full[k]
	}
	return profile, nil
}
