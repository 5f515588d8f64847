package gwclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// tipCache is a short-TTL Redis-backed cache for tip height and block
// timestamps, adapted from the teacher's semantic-cache engine
// (caching/caching.go) down to the one thing this domain needs: keeping
// many concurrent C5/C6 loops from hammering the gateway's /info and
// /block/height endpoints every second. A nil *tipCache (REDIS_URL unset)
// makes every gwclient call go straight to the gateway, same fallback
// posture as the teacher's main.go Redis init.
type tipCache struct {
	client *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
}

// NewRedisCache builds a tipCache from a redis:// URL. Returns (nil, err)
// if the URL is malformed; callers should log and continue without a
// cache rather than fail startup, mirroring the teacher's posture.
func NewRedisCache(redisURL string, logger zerolog.Logger) (*tipCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("gwclient: invalid REDIS_URL: %w", err)
	}
	return &tipCache{
		client: redis.NewClient(opt),
		logger: logger.With().Str("component", "gwclient_cache").Logger(),
		ttl:    2 * time.Second,
	}, nil
}

// Ping verifies connectivity to the Redis server; main calls it at startup.
func (t *tipCache) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

func (t *tipCache) getTip() (uint64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	v, err := t.client.Get(ctx, "atlas:tip_height").Result()
	if err != nil {
		return 0, false
	}
	h, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return h, true
}

func (t *tipCache) setTip(height uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := t.client.Set(ctx, "atlas:tip_height", height, t.ttl).Err(); err != nil {
		t.logger.Debug().Err(err).Msg("tip cache write failed")
	}
}

func (t *tipCache) getTimestamp(height uint64) (int64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := fmt.Sprintf("atlas:block_ts:%d", height)
	v, err := t.client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func (t *tipCache) setTimestamp(height uint64, ts int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := fmt.Sprintf("atlas:block_ts:%d", height)
	// Block timestamps never change once sealed; cache far longer than tip height.
	if err := t.client.Set(ctx, key, ts, time.Hour).Err(); err != nil {
		t.logger.Debug().Err(err).Msg("timestamp cache write failed")
	}
}
