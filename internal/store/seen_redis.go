package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultSeenTTL    = 30 * 24 * time.Hour
	defaultSeenPrefix = "features:seen:"
)

// SeenIndex remembers game fingerprints across runs so repeated input is
// scored once.
type SeenIndex struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewSeenIndex(rdb *redis.Client, ttl time.Duration) *SeenIndex {
	if ttl <= 0 {
		ttl = defaultSeenTTL
	}
	return &SeenIndex{rdb: rdb, ttl: ttl, prefix: defaultSeenPrefix}
}

// OpenSeenIndex dials redisURL (redis:// or rediss://) and pings it.
func OpenSeenIndex(ctx context.Context, redisURL string, ttl time.Duration) (*SeenIndex, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the seen index")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewSeenIndex(rdb, ttl), nil
}

func (s *SeenIndex) key(fingerprint string) string {
	return s.prefix + strings.TrimSpace(fingerprint)
}

// Mark records fingerprint and reports whether it was new.
func (s *SeenIndex) Mark(ctx context.Context, fingerprint string) (bool, error) {
	if strings.TrimSpace(fingerprint) == "" {
		return true, nil
	}
	fresh, err := s.rdb.SetNX(ctx, s.key(fingerprint), time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark seen: %w", err)
	}
	return fresh, nil
}

// Forget drops a fingerprint, used when a marked game later fails to persist.
func (s *SeenIndex) Forget(ctx context.Context, fingerprints ...string) error {
	if len(fingerprints) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fingerprints))
	for _, fp := range fingerprints {
		keys = append(keys, s.key(fp))
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *SeenIndex) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
