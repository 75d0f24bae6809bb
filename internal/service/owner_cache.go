package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// OwnerCache memoizes ticket id to owner id. Owners never change, so entries
// are only evicted by size or TTL.
type OwnerCache struct {
	cache   *expirable.LRU[int64, int64]
	tickets repository.TicketRepository
	metrics *observability.Metrics
}

// NewOwnerCache creates a cache of at most size entries living for ttl.
func NewOwnerCache(tickets repository.TicketRepository, size int, ttl time.Duration, metrics *observability.Metrics) *OwnerCache {
	return &OwnerCache{
		cache:   expirable.NewLRU[int64, int64](size, nil, ttl),
		tickets: tickets,
		metrics: metrics,
	}
}

// Owner returns the owner of ticketID, loading it on a miss. Missing tickets
// are not cached.
func (c *OwnerCache) Owner(ctx context.Context, ticketID int64) (int64, error) {
	if ownerID, ok := c.cache.Get(ticketID); ok {
		c.metrics.OwnerCacheLookup(true)
		return ownerID, nil
	}
	c.metrics.OwnerCacheLookup(false)

	ownerID, err := c.tickets.GetOwnerID(ctx, ticketID)
	if err != nil {
		return 0, err
	}
	c.cache.Add(ticketID, ownerID)
	return ownerID, nil
}

// Remember seeds the cache with a freshly created ticket.
func (c *OwnerCache) Remember(ticketID, ownerID int64) {
	c.cache.Add(ticketID, ownerID)
}
