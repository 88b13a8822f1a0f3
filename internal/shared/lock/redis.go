package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"study-backend/internal/shared/telemetry"
)

const (
	defaultTTL          = 2 * time.Minute
	defaultPollInterval = 100 * time.Millisecond
	keyPrefix           = "study:lock:"
)

// releaseScript deletes the key only if this holder still owns it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// redisClient is the subset of *redis.Client used for locking.
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Redis is a Locker backed by SET NX PX. The TTL bounds how long a crashed
// holder can block others.
type Redis struct {
	client       redisClient
	ttl          time.Duration
	pollInterval time.Duration
}

// NewRedis constructs a Redis locker. A non-positive ttl uses the default.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return newRedis(client, ttl)
}

func newRedis(client redisClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl, pollInterval: defaultPollInterval}
}

// Lock polls until the key is acquired or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release even when the request context is already canceled.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.client.Eval(ctx, releaseScript, []string{redisKey}, token).Err(); err != nil {
				telemetry.Warn("lock.release_failed", map[string]any{"key": key, "error": err})
			}
		})
	}, nil
}
