package messaging

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultParticipantsTTL is how long a group's member list is reused
const DefaultParticipantsTTL = 10 * time.Minute

// ParticipantCache memoizes group member lists per group id
type ParticipantCache struct {
	source ParticipantSource
	cache  *cache.Cache
}

// NewParticipantCache wraps source with a TTL cache. ttl <= 0 uses
// DefaultParticipantsTTL. Expired lists are replaced on the next lookup,
// so no janitor goroutine runs.
func NewParticipantCache(source ParticipantSource, ttl time.Duration) *ParticipantCache {
	if ttl <= 0 {
		ttl = DefaultParticipantsTTL
	}
	return &ParticipantCache{
		source: source,
		cache:  cache.New(ttl, 0),
	}
}

// GroupParticipants returns the cached list or fetches it. Failures are
// not cached.
func (c *ParticipantCache) GroupParticipants(ctx context.Context, groupID string) ([]string, error) {
	if v, ok := c.cache.Get(groupID); ok {
		return append([]string(nil), v.([]string)...), nil
	}

	phones, err := c.source.GroupParticipants(ctx, groupID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(groupID, append([]string(nil), phones...))
	return phones, nil
}

// Invalidate drops every cached list
func (c *ParticipantCache) Invalidate() {
	c.cache.Flush()
}
