package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// tokenBucketScript refills and drains one bucket atomically on the redis
// side. Returns {allowed, remaining_tokens, ts_millis}.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens), ts}
`

// Result is one admission decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a redis-backed token bucket shared across instances.
// A nil Limiter admits everything.
type Limiter struct {
	client *redis.Client
	script *redis.Script
	log    *zap.Logger

	rate  float64
	burst int
}

func NewLimiter(client *redis.Client, log *zap.Logger, rate float64, burst int) *Limiter {
	if client == nil || rate <= 0 || burst <= 0 {
		return nil
	}
	return &Limiter{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		log:    log.Named("ratelimit"),
		rate:   rate,
		burst:  burst,
	}
}

// Allow drains one token from key's bucket. Redis errors admit the request;
// vending must not stall because the limiter store is down.
func (l *Limiter) Allow(ctx context.Context, key string) Result {
	if l == nil || key == "" {
		return Result{Allowed: true}
	}

	ttl := bucketTTL(l.rate, l.burst)
	res, err := l.script.Run(ctx, l.client, []string{"voltvend:ratelimit:" + key},
		l.rate, l.burst, int64(ttl/time.Millisecond)).Slice()
	if err != nil || len(res) < 3 {
		if err != nil {
			l.log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
		}
		return Result{Allowed: true}
	}

	allowed, _ := res[0].(int64)
	remaining := parseTokens(res[1])

	result := Result{
		Allowed:   allowed == 1,
		Remaining: remaining,
	}
	if !result.Allowed {
		result.RetryAfter = time.Duration(math.Ceil(1/l.rate)) * time.Second
	}
	return result
}

// parseTokens reads the remaining token count; the script returns it as a
// string because the refill math produces lua floats.
func parseTokens(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}

// bucketTTL keeps idle buckets around long enough to refill fully.
func bucketTTL(rate float64, burst int) time.Duration {
	refill := time.Duration(float64(burst)/rate*1000) * time.Millisecond
	if refill < time.Minute {
		return time.Minute
	}
	return 2 * refill
}
