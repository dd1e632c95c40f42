package cache

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/obs"
	"departure-optimizer-service/internal/ports"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const airportKeyPrefix = "optimizer:airport:"

// RedisAirportCache shares resolved airport positions between processes.
// Redis failures are logged and the lookup falls through to the next
// directory.
type RedisAirportCache struct {
	client *redis.Client
	next   ports.AirportDirectory
	ttl    time.Duration
}

// NewRedisClient builds a client from a redis:// URL and verifies it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func NewRedisAirportCache(client *redis.Client, next ports.AirportDirectory, ttl time.Duration) (*RedisAirportCache, error) {
	if client == nil {
		return nil, errors.New("redis airport cache: client is nil")
	}
	if next == nil {
		return nil, errors.New("redis airport cache: next directory is nil")
	}
	return &RedisAirportCache{client: client, next: next, ttl: ttl}, nil
}

func (c *RedisAirportCache) Resolve(ctx context.Context, code string) (domain.Coordinates, error) {
	key := normalizeCode(code)

	raw, err := c.client.Get(ctx, airportKeyPrefix+key).Bytes()
	switch {
	case err == nil:
		var coords domain.Coordinates
		uerr := msgpack.Unmarshal(raw, &coords)
		if uerr == nil {
			obs.AirportCacheLookups.WithLabelValues("redis", "hit").Inc()
			return coords, nil
		}
		slog.WarnContext(ctx, "airport cache entry unreadable", "req_id", obs.RequestID(ctx), "code", key, "err", uerr)
	case errors.Is(err, redis.Nil):
	default:
		slog.WarnContext(ctx, "airport cache read failed", "req_id", obs.RequestID(ctx), "code", key, "err", err)
	}
	obs.AirportCacheLookups.WithLabelValues("redis", "miss").Inc()

	coords, err := c.next.Resolve(ctx, key)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if raw, merr := msgpack.Marshal(coords); merr == nil {
		if serr := c.client.Set(ctx, airportKeyPrefix+key, raw, c.ttl).Err(); serr != nil {
			slog.WarnContext(ctx, "airport cache write failed", "req_id", obs.RequestID(ctx), "code", key, "err", serr)
		}
	}
	return coords, nil
}
