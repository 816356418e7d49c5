package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder mirrors admission counters into Redis so an external
// dashboard can read them. It is an observability sink only: bucket state
// never lives in Redis, and recording failures are silently dropped rather
// than blocking admission decisions.
type RedisRecorder struct {
	client *redis.Client
	ctx    context.Context
	prefix string
	ttl    time.Duration
}

// Ensure RedisRecorder implements Recorder
var _ Recorder = (*RedisRecorder)(nil)

// RedisConfig for creating a Redis recorder
type RedisConfig struct {
	Addr     string        // Redis address (e.g., "localhost:6379")
	Password string        // Redis password (empty for no auth)
	DB       int           // Redis database number
	Prefix   string        // Key prefix (default: "ratelimiter")
	TTL      time.Duration // TTL for counters (default: 24 hours)
}

// NewRedisRecorder creates a Redis-backed metrics recorder.
func NewRedisRecorder(config RedisConfig) *RedisRecorder {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "ratelimiter"
	}

	ttl := config.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &RedisRecorder{
		client: client,
		ctx:    context.Background(),
		prefix: prefix,
		ttl:    ttl,
	}
}

// RecordRequest increments the total counter and the allowed or denied
// counter, refreshing their TTL.
func (r *RedisRecorder) RecordRequest(allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}

	pipe := r.client.TxPipeline()
	pipe.Incr(r.ctx, r.key("total"))
	pipe.Incr(r.ctx, r.key(outcome))
	pipe.Expire(r.ctx, r.key("total"), r.ttl)
	pipe.Expire(r.ctx, r.key(outcome), r.ttl)
	_, _ = pipe.Exec(r.ctx)
}

// Counters reads the current counter values back from Redis.
// Missing keys read as zero.
func (r *RedisRecorder) Counters() (total, allowed, denied int64, err error) {
	vals, err := r.client.MGet(r.ctx, r.key("total"), r.key("allowed"), r.key("denied")).Result()
	if err != nil {
		return 0, 0, 0, err
	}

	nums := make([]int64, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			nums[i], _ = strconv.ParseInt(s, 10, 64)
		}
	}
	return nums[0], nums[1], nums[2], nil
}

// Clear removes the recorder's counters from Redis.
func (r *RedisRecorder) Clear() {
	r.client.Del(r.ctx, r.key("total"), r.key("allowed"), r.key("denied"))
}

// Ping checks if the Redis connection is alive.
func (r *RedisRecorder) Ping() error {
	return r.client.Ping(r.ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisRecorder) Close() error {
	return r.client.Close()
}

func (r *RedisRecorder) key(suffix string) string {
	return r.prefix + ":" + suffix
}
