package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/adlattice/bid-decision-engine/internal/infrastructure/cache"
	"github.com/adlattice/bid-decision-engine/internal/infrastructure/repository"
	"github.com/adlattice/bid-decision-engine/internal/service/fraud"
	"github.com/adlattice/bid-decision-engine/internal/service/insights"
)

const insightWindowDays = 7

// worker runs periodic fraud scans and insight reports over every
// campaign that saw traffic since the last tick.
type worker struct {
	repo       *repository.BidEventRepository
	store      cache.EventStore
	fraudSvc   fraud.Service
	insightSvc insights.Service
	logger     *slog.Logger

	interval     time.Duration
	historyLimit int
}

func newWorker(
	repo *repository.BidEventRepository,
	store cache.EventStore,
	fraudSvc fraud.Service,
	insightSvc insights.Service,
	logger *slog.Logger,
	interval time.Duration,
	historyLimit int,
) *worker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &worker{
		repo:         repo,
		store:        store,
		fraudSvc:     fraudSvc,
		insightSvc:   insightSvc,
		logger:       logger,
		interval:     interval,
		historyLimit: historyLimit,
	}
}

func (w *worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("campaign worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("campaign worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *worker) tick(ctx context.Context) {
	since := time.Now().UTC().Add(-w.interval)
	campaigns, err := w.repo.ListActiveCampaigns(ctx, since)
	if err != nil {
		w.logger.ErrorContext(ctx, "listing active campaigns failed", "error", err)
		return
	}

	for _, campaignID := range campaigns {
		events, err := w.store.GetRecentBids(ctx, campaignID, w.historyLimit)
		if err != nil {
			w.logger.ErrorContext(ctx, "fetching recent bids failed",
				"campaign_id", campaignID, "error", err)
			continue
		}

		verdict := w.fraudSvc.Scan(ctx, events)
		if verdict.Detected {
			w.logger.WarnContext(ctx, "fraud detected",
				"campaign_id", campaignID,
				"severity", verdict.Severity,
				"confidence", verdict.Confidence,
				"patterns", verdict.Patterns)
		}

		insight, err := w.insightSvc.Analyze(ctx, campaignID, insightWindowDays)
		if err != nil {
			w.logger.ErrorContext(ctx, "insight report failed",
				"campaign_id", campaignID, "error", err)
			continue
		}
		w.logger.InfoContext(ctx, "campaign insight report",
			"campaign_id", campaignID,
			"total_bids", insight.TotalBids,
			"win_rate", insight.WinRate,
			"conversion_rate", insight.ConversionRate,
			"total_spend", insight.TotalSpend.String(),
			"recommendations", insight.Recommendations)
	}
}
