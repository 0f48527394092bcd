package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/testutil/fixtures"
	"github.com/adlattice/bid-decision-engine/internal/testutil/mocks"
)

func setupRecentBidsCache(t *testing.T, store EventStore) (*RecentBidsCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRecentBidsCache(store, client, 30*time.Second, zaptest.NewLogger(t)), mr
}

func TestRecentBidsCache_ReadThrough(t *testing.T) {
	campaignID := uuid.New()
	events := fixtures.NewBidEventBuilder().WithCampaignID(campaignID).BuildBatch(3)

	store := new(mocks.BidEventRepository)
	store.On("GetRecentBids", mock.Anything, campaignID, 100).Return(events, nil).Once()

	cache, _ := setupRecentBidsCache(t, store)
	ctx := context.Background()

	// Miss populates the cache
	got, err := cache.GetRecentBids(ctx, campaignID, 100)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Second read is served from Redis; the store expectation was Once
	got, err = cache.GetRecentBids(ctx, campaignID, 100)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, events[0].ID, got[0].ID)

	store.AssertExpectations(t)
}

func TestRecentBidsCache_StoreInvalidates(t *testing.T) {
	campaignID := uuid.New()
	events := fixtures.NewBidEventBuilder().WithCampaignID(campaignID).BuildBatch(2)

	store := new(mocks.BidEventRepository)
	store.On("GetRecentBids", mock.Anything, campaignID, 50).Return(events, nil).Twice()
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	cache, _ := setupRecentBidsCache(t, store)
	ctx := context.Background()

	_, err := cache.GetRecentBids(ctx, campaignID, 50)
	require.NoError(t, err)

	ev := fixtures.NewBidEventBuilder().WithCampaignID(campaignID).Build()
	require.NoError(t, cache.Store(ctx, ev))

	// Invalidation forces the next read back to the store
	_, err = cache.GetRecentBids(ctx, campaignID, 50)
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestRecentBidsCache_TTLExpiry(t *testing.T) {
	campaignID := uuid.New()
	events := fixtures.NewBidEventBuilder().WithCampaignID(campaignID).BuildBatch(1)

	store := new(mocks.BidEventRepository)
	store.On("GetRecentBids", mock.Anything, campaignID, 10).Return(events, nil).Twice()

	cache, mr := setupRecentBidsCache(t, store)
	ctx := context.Background()

	_, err := cache.GetRecentBids(ctx, campaignID, 10)
	require.NoError(t, err)

	mr.FastForward(time.Minute)

	_, err = cache.GetRecentBids(ctx, campaignID, 10)
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestRecentBidsCache_RedisDownFallsBack(t *testing.T) {
	campaignID := uuid.New()
	events := fixtures.NewBidEventBuilder().WithCampaignID(campaignID).BuildBatch(2)

	store := new(mocks.BidEventRepository)
	store.On("GetRecentBids", mock.Anything, campaignID, 100).Return(events, nil)

	cache, mr := setupRecentBidsCache(t, store)
	mr.Close()

	got, err := cache.GetRecentBids(context.Background(), campaignID, 100)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRecentBidsCache_HistoryPassesThrough(t *testing.T) {
	campaignID := uuid.New()
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	events := []*bid.BidEvent{fixtures.NewBidEventBuilder().WithCampaignID(campaignID).Build()}

	store := new(mocks.BidEventRepository)
	store.On("GetBidHistory", mock.Anything, campaignID, start, end, 1000, 0).Return(events, nil)

	cache, _ := setupRecentBidsCache(t, store)

	got, err := cache.GetBidHistory(context.Background(), campaignID, start, end, 1000, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	store.AssertExpectations(t)
}
