package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
)

const recentBidsPrefix = "bde:recent_bids:"

// EventStore is the persistence layer the cache sits in front of.
type EventStore interface {
	Store(ctx context.Context, ev *bid.BidEvent) error
	GetRecentBids(ctx context.Context, campaignID uuid.UUID, limit int) ([]*bid.BidEvent, error)
	GetBidHistory(ctx context.Context, campaignID uuid.UUID, start, end time.Time, limit, offset int) ([]*bid.BidEvent, error)
}

// RecentBidsCache is a read-through Redis cache over an EventStore.
// Recent-bid lookups sit on the hot decision path; history queries for
// reporting pass straight through.
type RecentBidsCache struct {
	store  EventStore
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRecentBidsCache wraps store with a Redis cache for GetRecentBids.
func NewRecentBidsCache(store EventStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RecentBidsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RecentBidsCache{
		store:  store,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Store writes through to the underlying store and invalidates the
// campaign's cached entries.
func (c *RecentBidsCache) Store(ctx context.Context, ev *bid.BidEvent) error {
	if err := c.store.Store(ctx, ev); err != nil {
		return err
	}
	c.invalidate(ctx, ev.CampaignID)
	return nil
}

// GetRecentBids returns cached events when available, falling back to
// the store on a miss or any Redis error.
func (c *RecentBidsCache) GetRecentBids(ctx context.Context, campaignID uuid.UUID, limit int) ([]*bid.BidEvent, error) {
	key := fmt.Sprintf("%s%s:%d", recentBidsPrefix, campaignID, limit)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var events []*bid.BidEvent
		if err := json.Unmarshal(data, &events); err == nil {
			return events, nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("redis get failed, falling back to store",
			zap.String("key", key), zap.Error(err))
	}

	events, err := c.store.GetRecentBids(ctx, campaignID, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(events); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
		}
	}

	return events, nil
}

// GetBidHistory passes through to the underlying store.
func (c *RecentBidsCache) GetBidHistory(ctx context.Context, campaignID uuid.UUID, start, end time.Time, limit, offset int) ([]*bid.BidEvent, error) {
	return c.store.GetBidHistory(ctx, campaignID, start, end, limit, offset)
}

func (c *RecentBidsCache) invalidate(ctx context.Context, campaignID uuid.UUID) {
	pattern := recentBidsPrefix + campaignID.String() + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("redis delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("redis scan failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
