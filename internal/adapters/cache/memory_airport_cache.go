package cache

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/obs"
	"departure-optimizer-service/internal/ports"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryAirportCache keeps resolved airport positions in a bounded,
// expiring in-process cache in front of another directory. Unknown codes
// are not cached.
type MemoryAirportCache struct {
	next ports.AirportDirectory
	lru  *expirable.LRU[string, domain.Coordinates]
}

func NewMemoryAirportCache(next ports.AirportDirectory, size int, ttl time.Duration) (*MemoryAirportCache, error) {
	if next == nil {
		return nil, errors.New("memory airport cache: next directory is nil")
	}
	if size <= 0 {
		size = 1024
	}
	return &MemoryAirportCache{
		next: next,
		lru:  expirable.NewLRU[string, domain.Coordinates](size, nil, ttl),
	}, nil
}

func (c *MemoryAirportCache) Resolve(ctx context.Context, code string) (domain.Coordinates, error) {
	key := normalizeCode(code)

	if coords, ok := c.lru.Get(key); ok {
		obs.AirportCacheLookups.WithLabelValues("memory", "hit").Inc()
		return coords, nil
	}
	obs.AirportCacheLookups.WithLabelValues("memory", "miss").Inc()

	coords, err := c.next.Resolve(ctx, key)
	if err != nil {
		return domain.Coordinates{}, err
	}
	c.lru.Add(key, coords)
	return coords, nil
}

// normalizeCode ensures consistent cache keys.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
