package insights_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/service/insights"
	"github.com/adlattice/bid-decision-engine/internal/testutil/fixtures"
	"github.com/adlattice/bid-decision-engine/internal/testutil/mocks"
)

func newService(repo insights.BidHistoryReader, analyzer insights.AudienceAnalyzer) insights.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return insights.NewService(repo, analyzer, mocks.Metrics{}, logger, time.Second)
}

func TestAnalyze_EmptyWindow(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	analyzer := new(mocks.PredictionBackend)
	repo.On("GetBidHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 1000, 0).
		Return([]*bid.BidEvent{}, nil)

	report, err := newService(repo, analyzer).Analyze(context.Background(), uuid.New(), 7)

	require.NoError(t, err)
	assert.Equal(t, "No bid data available for analysis", report.Message)
	assert.Zero(t, report.TotalBids)
	assert.Empty(t, report.Recommendations)
	analyzer.AssertNotCalled(t, "AnalyzeAudience", mock.Anything, mock.Anything)
}

func TestAnalyze_ComputesWindowMetrics(t *testing.T) {
	campaignID := uuid.New()
	events := []*bid.BidEvent{
		fixtures.NewBidEventBuilder().WithBidPrice(2.0).Won(1.8).Converted().Build(),
		fixtures.NewBidEventBuilder().WithBidPrice(2.0).Won(2.2).Build(),
		fixtures.NewBidEventBuilder().WithBidPrice(1.0).Build(),
		fixtures.NewBidEventBuilder().WithBidPrice(3.0).Build(),
	}

	repo := new(mocks.BidEventRepository)
	analyzer := new(mocks.PredictionBackend)
	repo.On("GetBidHistory", mock.Anything, campaignID, mock.Anything, mock.Anything, 1000, 0).
		Return(events, nil)
	analyzer.On("AnalyzeAudience", mock.Anything, events).
		Return(&bid.AudienceAnalysis{Insights: []string{"backend insight"}}, nil)

	report, err := newService(repo, analyzer).Analyze(context.Background(), campaignID, 7)

	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalBids)
	assert.Equal(t, "7 days", report.Period)
	assert.InDelta(t, 0.5, report.WinRate, 1e-9)
	assert.InDelta(t, 0.5, report.ConversionRate, 1e-9)
	assert.InDelta(t, 2.0, report.AvgBidPrice, 1e-9)
	assert.InDelta(t, 2.0, report.AvgWinPrice, 1e-9)
	assert.Equal(t, "$8.00", report.TotalSpend.String())
	assert.Equal(t, []string{"backend insight"}, report.Insights)
}

func TestAnalyze_AnalyzerFailureFallsBackToRules(t *testing.T) {
	campaignID := uuid.New()
	// mobile-dominated, converting traffic
	events := fixtures.NewBidEventBuilder().WithDevice("mobile").Converted().BuildBatch(8)
	events = append(events, fixtures.NewBidEventBuilder().WithDevice("desktop").BuildBatch(2)...)

	repo := new(mocks.BidEventRepository)
	analyzer := new(mocks.PredictionBackend)
	repo.On("GetBidHistory", mock.Anything, campaignID, mock.Anything, mock.Anything, 1000, 0).
		Return(events, nil)
	analyzer.On("AnalyzeAudience", mock.Anything, events).
		Return(nil, assert.AnError)

	report, err := newService(repo, analyzer).Analyze(context.Background(), campaignID, 14)

	require.NoError(t, err)
	require.NotEmpty(t, report.Insights)
	assert.Contains(t, report.Insights, "Mobile traffic dominates campaign volume")
}

func TestAnalyze_HistoryFetchFailureSurfaces(t *testing.T) {
	repo := new(mocks.BidEventRepository)
	repo.On("GetBidHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 1000, 0).
		Return(nil, assert.AnError)

	_, err := newService(repo, new(mocks.PredictionBackend)).Analyze(context.Background(), uuid.New(), 7)

	require.Error(t, err)
}

func TestAnalyze_Recommendations(t *testing.T) {
	tests := []struct {
		name   string
		events []*bid.BidEvent
		want   string
	}{
		{
			name:   "low win rate",
			events: fixtures.NewBidEventBuilder().WithBidPrice(1.0).BuildBatch(10),
			want:   "Consider increasing bid prices to improve win rate",
		},
		{
			name: "healthy campaign",
			events: func() []*bid.BidEvent {
				var evs []*bid.BidEvent
				for i := 0; i < 10; i++ {
					b := fixtures.NewBidEventBuilder().WithBidPrice(2.0).Won(1.9)
					if i < 2 {
						b = b.Converted()
					}
					evs = append(evs, b.Build())
				}
				return evs
			}(),
			want: "Campaign performance looks healthy - continue current strategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.BidEventRepository)
			analyzer := new(mocks.PredictionBackend)
			repo.On("GetBidHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 1000, 0).
				Return(tt.events, nil)
			analyzer.On("AnalyzeAudience", mock.Anything, mock.Anything).
				Return(&bid.AudienceAnalysis{}, nil)

			report, err := newService(repo, analyzer).Analyze(context.Background(), uuid.New(), 7)

			require.NoError(t, err)
			assert.Contains(t, report.Recommendations, tt.want)
		})
	}
}

func TestRuleBasedInsights_DevicePerformance(t *testing.T) {
	events := fixtures.NewBidEventBuilder().WithDevice("desktop").Converted().BuildBatch(3)
	events = append(events, fixtures.NewBidEventBuilder().WithDevice("desktop").BuildBatch(7)...)

	insightStrings := bid.RuleBasedInsights(events)

	assert.Contains(t, insightStrings, "desktop devices show strong performance (30.0% conversion rate)")
}
