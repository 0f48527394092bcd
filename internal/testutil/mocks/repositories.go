package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// BidEventRepository mock
type BidEventRepository struct {
	mock.Mock
}

func (m *BidEventRepository) GetRecentBids(ctx context.Context, campaignID uuid.UUID, limit int) ([]*bid.BidEvent, error) {
	args := m.Called(ctx, campaignID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bid.BidEvent), args.Error(1)
}

func (m *BidEventRepository) GetBidHistory(ctx context.Context, campaignID uuid.UUID, start, end time.Time, limit, offset int) ([]*bid.BidEvent, error) {
	args := m.Called(ctx, campaignID, start, end, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bid.BidEvent), args.Error(1)
}

func (m *BidEventRepository) Store(ctx context.Context, event *bid.BidEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// PredictionBackend mock
type PredictionBackend struct {
	mock.Mock
}

func (m *PredictionBackend) Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error) {
	args := m.Called(ctx, fv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bid.Prediction), args.Error(1)
}

func (m *PredictionBackend) AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error) {
	args := m.Called(ctx, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bid.AudienceAnalysis), args.Error(1)
}

func (m *PredictionBackend) DetectFraud(ctx context.Context, events []*bid.BidEvent) (*fraud.Signal, error) {
	args := m.Called(ctx, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.Signal), args.Error(1)
}
