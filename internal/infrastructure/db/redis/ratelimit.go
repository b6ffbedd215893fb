package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "ratelimit"

// RateLimitStore is a fixed-window counter shared by every API replica.
// Key format: ratelimit:<identifier>:<window_start_unix>
//
// It satisfies echo's middleware.RateLimiterStore. When Redis is unreachable
// the request is allowed and a warning is logged.
type RateLimitStore struct {
	client  redis.Cmdable
	limit   int64
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRateLimitStore allows limit requests per identifier in each window.
func NewRateLimitStore(client redis.Cmdable, limit int, window time.Duration, log zerolog.Logger) *RateLimitStore {
	return &RateLimitStore{
		client:  client,
		limit:   int64(limit),
		window:  window,
		timeout: defaultTimeout,
		now:     time.Now,
		log:     log,
	}
}

// Allow counts the request against identifier's current window.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := s.Hit(ctx, identifier)
	if err != nil {
		s.log.Warn().Err(err).Str("identifier", identifier).Msg("rate limiter unavailable, allowing request")
		return true, nil
	}
	return count <= s.limit, nil
}

// Hit increments and returns the counter for identifier's current window.
func (s *RateLimitStore) Hit(ctx context.Context, identifier string) (int64, error) {
	key := s.key(identifier)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, s.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate limit hit: %w", err)
	}
	return incr.Val(), nil
}

func (s *RateLimitStore) key(identifier string) string {
	start := s.now().UTC().Truncate(s.window)
	return fmt.Sprintf("%s:%s:%d", keyPrefix, identifier, start.Unix())
}
