package decision_test

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/errors"
	"github.com/adlattice/bid-decision-engine/internal/service/decision"
	"github.com/adlattice/bid-decision-engine/internal/testutil/fixtures"
	"github.com/adlattice/bid-decision-engine/internal/testutil/mocks"
)

func newService(repo decision.BidEventRepository, backend decision.PredictionBackend) decision.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return decision.NewService(repo, backend, mocks.Metrics{}, logger, 100, time.Second, "US")
}

func validContext(floorPrice float64) bid.BidContext {
	return bid.BidContext{
		CampaignID: uuid.New(),
		UserID:     uuid.NewString(),
		FloorPrice: floorPrice,
		Timestamp:  time.Now().UTC(),
	}
}

func TestDecide_BackendSuccess(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	backend := new(mocks.PredictionBackend)

	repo.On("GetRecentBids", mock.Anything, mock.Anything, 100).
		Return([]*bid.BidEvent{}, nil)
	backend.On("Predict", mock.Anything, mock.Anything).
		Return(&bid.Prediction{Price: 2.5, Confidence: 0.9, Strategy: bid.StrategyModelOptimized}, nil)

	d, err := newService(repo, backend).Decide(context.Background(), validContext(1.0))

	require.NoError(t, err)
	assert.Equal(t, 2.5, d.Price)
	assert.Equal(t, 0.9, d.Confidence)
	assert.Equal(t, bid.StrategyModelOptimized, d.Strategy)
	assert.NotEqual(t, uuid.Nil, d.DecisionID)
	assert.False(t, d.DecidedAt.IsZero())
}

func TestDecide_BackendFailureFallsBack(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	backend := new(mocks.PredictionBackend)

	repo.On("GetRecentBids", mock.Anything, mock.Anything, 100).
		Return([]*bid.BidEvent{}, nil)
	backend.On("Predict", mock.Anything, mock.Anything).
		Return(nil, errors.NewExternalError("predictor", "connection refused"))

	d, err := newService(repo, backend).Decide(context.Background(), validContext(1.0))

	require.NoError(t, err)
	assert.Equal(t, bid.StrategyRuleBasedFallback, d.Strategy)
	assert.InDelta(t, 1.2, d.Price, 1e-9)
	assert.InDelta(t, 0.6, d.Confidence, 1e-9)
}

func TestDecide_FallbackBlendsWithHistory(t *testing.T) {
	campaignID := uuid.New()
	events := []*bid.BidEvent{
		fixtures.NewBidEventBuilder().WithCampaignID(campaignID).Won(2.0).Converted().Build(),
		fixtures.NewBidEventBuilder().WithCampaignID(campaignID).Won(2.0).Build(),
		fixtures.NewBidEventBuilder().WithCampaignID(campaignID).Won(2.0).Build(),
	}

	repo := new(mocks.BidEventRepository)
	backend := new(mocks.PredictionBackend)
	repo.On("GetRecentBids", mock.Anything, campaignID, 100).Return(events, nil)
	backend.On("Predict", mock.Anything, mock.Anything).
		Return(nil, errors.NewExternalError("predictor", "timeout"))

	bctx := validContext(1.5)
	bctx.CampaignID = campaignID

	d, err := newService(repo, backend).Decide(context.Background(), bctx)

	require.NoError(t, err)
	assert.Equal(t, bid.StrategyRuleBasedFallback, d.Strategy)
	assert.Greater(t, d.Price, 1.8)
	assert.Less(t, d.Price, 2.0)
}

func TestDecide_RaisesBelowFloorPrice(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	backend := new(mocks.PredictionBackend)

	repo.On("GetRecentBids", mock.Anything, mock.Anything, 100).
		Return([]*bid.BidEvent{}, nil)
	backend.On("Predict", mock.Anything, mock.Anything).
		Return(&bid.Prediction{Price: 0.5, Confidence: 0.9, Strategy: bid.StrategyModelOptimized}, nil)

	d, err := newService(repo, backend).Decide(context.Background(), validContext(2.0))

	require.NoError(t, err)
	assert.InDelta(t, 2.0*1.05, d.Price, 1e-9)
	assert.Equal(t, 0.9, d.Confidence)
}

func TestDecide_CapsRunawayPrice(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	backend := new(mocks.PredictionBackend)

	repo.On("GetRecentBids", mock.Anything, mock.Anything, 100).
		Return([]*bid.BidEvent{}, nil)
	backend.On("Predict", mock.Anything, mock.Anything).
		Return(&bid.Prediction{Price: 50.0, Confidence: 0.9, Strategy: bid.StrategyModelOptimized}, nil)

	d, err := newService(repo, backend).Decide(context.Background(), validContext(2.0))

	require.NoError(t, err)
	assert.InDelta(t, 10.0, d.Price, 1e-9)
	assert.InDelta(t, 0.72, d.Confidence, 1e-9)
}

func TestDecide_ConfidenceAlwaysClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		repo := new(mocks.BidEventRepository)
		backend := new(mocks.PredictionBackend)
		repo.On("GetRecentBids", mock.Anything, mock.Anything, 100).
			Return([]*bid.BidEvent{}, nil)

		floor := rng.Float64()*5 + 0.01
		backend.On("Predict", mock.Anything, mock.Anything).
			Return(&bid.Prediction{
				Price:      rng.Float64()*40 - 5,
				Confidence: rng.Float64()*6 - 3, // deliberately outside [0,1]
				Strategy:   bid.StrategyModelOptimized,
			}, nil)

		d, err := newService(repo, backend).Decide(context.Background(), validContext(floor))

		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.Confidence, 0.0)
		assert.LessOrEqual(t, d.Confidence, 1.0)
		assert.LessOrEqual(t, d.Price, floor*5.0+1e-9)
		assert.GreaterOrEqual(t, d.Price, floor)
	}
}

func TestDecide_RepositoryErrorSurfaces(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	backend := new(mocks.PredictionBackend)

	repo.On("GetRecentBids", mock.Anything, mock.Anything, 100).
		Return(nil, assert.AnError)

	_, err := newService(repo, backend).Decide(context.Background(), validContext(1.0))

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
	backend.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestDecide_InvalidContextRejected(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	backend := new(mocks.PredictionBackend)

	_, err := newService(repo, backend).Decide(context.Background(), bid.BidContext{FloorPrice: 1.0})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	repo.AssertNotCalled(t, "GetRecentBids", mock.Anything, mock.Anything, mock.Anything)
}
