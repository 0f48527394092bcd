package insights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/errors"
	"github.com/adlattice/bid-decision-engine/internal/domain/values"
)

// Recommendation thresholds.
const (
	lowWinRate        = 0.3
	lowConversionRate = 0.05
	overbidRatio      = 1.5
)

const historyWindowLimit = 1000

// CampaignInsight is a point-in-time performance report. Recomputed on
// every call, never maintained incrementally.
type CampaignInsight struct {
	CampaignID      uuid.UUID    `json:"campaign_id"`
	Period          string       `json:"period"`
	TotalBids       int          `json:"total_bids"`
	WinRate         float64      `json:"win_rate"`
	ConversionRate  float64      `json:"conversion_rate"`
	AvgBidPrice     float64      `json:"avg_bid_price"`
	AvgWinPrice     float64      `json:"avg_win_price"`
	TotalSpend      values.Money `json:"total_spend"`
	Insights        []string     `json:"insights,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Message         string       `json:"message,omitempty"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// service implements the Service interface
type service struct {
	repo     BidHistoryReader
	analyzer AudienceAnalyzer
	metrics  MetricsCollector
	logger   *slog.Logger

	backendTimeout time.Duration
}

// NewService creates a new campaign insight service
func NewService(
	repo BidHistoryReader,
	analyzer AudienceAnalyzer,
	metrics MetricsCollector,
	logger *slog.Logger,
	backendTimeout time.Duration,
) Service {
	if backendTimeout <= 0 {
		backendTimeout = 10 * time.Second
	}

	return &service{
		repo:           repo,
		analyzer:       analyzer,
		metrics:        metrics,
		logger:         logger,
		backendTimeout: backendTimeout,
	}
}

// Analyze builds the windowed performance report. A history fetch
// failure surfaces; an analyzer failure degrades to rule-based insights.
func (s *service) Analyze(ctx context.Context, campaignID uuid.UUID, windowDays int) (*CampaignInsight, error) {
	start := time.Now()
	if windowDays <= 0 {
		windowDays = 7
	}

	end := time.Now().UTC()
	events, err := s.repo.GetBidHistory(ctx, campaignID, end.AddDate(0, 0, -windowDays), end, historyWindowLimit, 0)
	if err != nil {
		return nil, errors.NewInternalError("failed to get bid history").WithCause(err)
	}

	insight := &CampaignInsight{
		CampaignID:  campaignID,
		Period:      fmt.Sprintf("%d days", windowDays),
		TotalBids:   len(events),
		TotalSpend:  values.Zero(values.USD),
		GeneratedAt: end,
	}

	if len(events) == 0 {
		insight.Message = "No bid data available for analysis"
		return insight, nil
	}

	s.computeMetrics(insight, events)
	insight.Insights = s.generateInsights(ctx, events)
	insight.Recommendations = generateRecommendations(insight)

	s.metrics.RecordReport(ctx, campaignID)
	s.metrics.RecordReportDuration(ctx, time.Since(start))

	return insight, nil
}

func (s *service) computeMetrics(insight *CampaignInsight, events []*bid.BidEvent) {
	var wins, conversions int
	var totalWinPrice float64
	spend := values.Zero(values.USD)

	for _, ev := range events {
		spend, _ = spend.Add(values.MustNewMoneyFromFloat(ev.BidPrice, values.USD))
		if ev.Won {
			wins++
			if ev.WinPrice != nil {
				totalWinPrice += *ev.WinPrice
			}
		}
		if ev.Converted {
			conversions++
		}
	}

	insight.WinRate = float64(wins) / float64(len(events))
	if wins > 0 {
		insight.ConversionRate = float64(conversions) / float64(wins)
		insight.AvgWinPrice = totalWinPrice / float64(wins)
	}
	insight.TotalSpend = spend.RoundToNearestCent()
	insight.AvgBidPrice = spend.ToFloat64() / float64(len(events))
}

func (s *service) generateInsights(ctx context.Context, events []*bid.BidEvent) []string {
	callCtx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()

	analysis, err := s.analyzer.AnalyzeAudience(callCtx, events)
	if err != nil {
		s.logger.WarnContext(ctx, "audience analyzer failed, using rule-based insights",
			slog.String("error", err.Error()),
		)
		return bid.RuleBasedInsights(events)
	}
	return analysis.Insights
}

func generateRecommendations(insight *CampaignInsight) []string {
	var recommendations []string

	if insight.WinRate < lowWinRate {
		recommendations = append(recommendations, "Consider increasing bid prices to improve win rate")
	}
	if insight.ConversionRate < lowConversionRate {
		recommendations = append(recommendations, "Review audience targeting - conversion rate is below industry average")
	}
	if insight.AvgBidPrice > insight.AvgWinPrice*overbidRatio {
		recommendations = append(recommendations, "Optimize bidding strategy - you may be overbidding")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Campaign performance looks healthy - continue current strategy")
	}

	return recommendations
}
