package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"alertline/internal/domain"
)

// FacilityCache keeps the per-kind facility lists hot; every incident report
// reads the full registry twice, while registrations are rare.
type FacilityCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewFacilityCache(r *Redis, ttl time.Duration) *FacilityCache {
	return &FacilityCache{client: r.Client, ttl: ttl}
}

func key(kind domain.FacilityKind) string {
	return "facilities:" + string(kind)
}

// Get returns the cached list for kind, or nil on a miss.
func (c *FacilityCache) Get(ctx context.Context, kind domain.FacilityKind) ([]*domain.Facility, error) {
	data, err := c.client.Get(ctx, key(kind)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var facilities []*domain.Facility
	if err := json.Unmarshal(data, &facilities); err != nil {
		return nil, err
	}

	return facilities, nil
}

func (c *FacilityCache) Set(ctx context.Context, kind domain.FacilityKind, facilities []*domain.Facility) error {
	b, err := json.Marshal(facilities)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(kind), b, c.ttl).Err()
}

// Invalidate drops the cached list after a new facility registers.
func (c *FacilityCache) Invalidate(ctx context.Context, kind domain.FacilityKind) error {
	return c.client.Del(ctx, key(kind)).Err()
}
