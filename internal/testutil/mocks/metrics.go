package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// Metrics is a no-op collector satisfying every service's metrics
// interface. Tests that assert on metric calls should use a testify
// mock instead; most just need the calls to go somewhere.
type Metrics struct{}

func (Metrics) RecordDecision(ctx context.Context, decision *bid.BidDecision)      {}
func (Metrics) RecordFallback(ctx context.Context, reason string)                  {}
func (Metrics) RecordClamp(ctx context.Context, kind string)                       {}
func (Metrics) RecordDecisionDuration(ctx context.Context, duration time.Duration) {}
func (Metrics) RecordVerdict(ctx context.Context, verdict *fraud.Verdict)          {}
func (Metrics) RecordScanDuration(ctx context.Context, duration time.Duration)     {}
func (Metrics) RecordReport(ctx context.Context, campaignID uuid.UUID)             {}
func (Metrics) RecordReportDuration(ctx context.Context, duration time.Duration)   {}
