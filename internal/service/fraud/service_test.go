package fraud_test

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

	domainfraud "github.com/adlattice/bid-decision-engine/internal/domain/fraud"
	"github.com/adlattice/bid-decision-engine/internal/service/fraud"
	"github.com/adlattice/bid-decision-engine/internal/testutil/fixtures"
	"github.com/adlattice/bid-decision-engine/internal/testutil/mocks"
)

func newService(detector fraud.FraudDetector) fraud.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fraud.NewService(detector, mocks.Metrics{}, logger, domainfraud.DefaultThresholds(), time.Second)
}

func TestScan_CombinesRuleAndBackendSignals(t *testing.T) {
	events := fixtures.NewBidEventBuilder().WithUserID(uuid.NewString()).BuildBatch(60)

	detector := new(mocks.PredictionBackend)
	detector.On("DetectFraud", mock.Anything, events).
		Return(&domainfraud.Signal{
			Detected:   true,
			Confidence: 0.9,
			Severity:   8,
			Patterns:   []string{"click farming pattern"},
			Method:     domainfraud.MethodModelBased,
		}, nil)

	v := newService(detector).Scan(context.Background(), events)

	require.NotNil(t, v)
	assert.True(t, v.Detected)
	assert.InDelta(t, (0.7+0.9)/2, v.Confidence, 1e-9)
	assert.Equal(t, 8, v.Severity)
	assert.Equal(t, domainfraud.MethodCombined, v.Method)
	// rule pattern first, backend pattern after
	require.Len(t, v.Patterns, 2)
	assert.Contains(t, v.Patterns[0], "excessive bid activity")
	assert.Equal(t, "click farming pattern", v.Patterns[1])
}

func TestScan_BackendFailureDegradesToRuleVerdict(t *testing.T) {
	events := fixtures.NewBidEventBuilder().WithUserID(uuid.NewString()).BuildBatch(60)

	detector := new(mocks.PredictionBackend)
	detector.On("DetectFraud", mock.Anything, events).
		Return(nil, assert.AnError)

	v := newService(detector).Scan(context.Background(), events)

	require.NotNil(t, v)
	assert.True(t, v.Detected)
	assert.Equal(t, domainfraud.RuleConfidence, v.Confidence)
	assert.Equal(t, domainfraud.MethodRuleBased, v.Method)
	assert.Equal(t, 2, v.Severity)
}

func TestScan_InsufficientDataIsNegativeNotError(t *testing.T) {
	events := fixtures.NewBidEventBuilder().BuildBatch(5)

	detector := new(mocks.PredictionBackend)
	detector.On("DetectFraud", mock.Anything, events).
		Return(&domainfraud.Signal{Confidence: 0.56, Method: domainfraud.MethodModelBased}, nil)

	v := newService(detector).Scan(context.Background(), events)

	require.NotNil(t, v)
	assert.False(t, v.Detected)
	assert.InDelta(t, (domainfraud.InsufficientDataConfidence+0.56)/2, v.Confidence, 1e-9)
	assert.Equal(t, domainfraud.MethodCombined, v.Method)
}

func TestEvaluateRules_SixtyEventSingleUserBatch(t *testing.T) {
	userID := uuid.NewString()
	events := fixtures.NewBidEventBuilder().WithUserID(userID).BuildBatch(60)

	v := newService(new(mocks.PredictionBackend)).EvaluateRules(events)

	assert.True(t, v.Detected)
	assert.Equal(t, domainfraud.RuleConfidence, v.Confidence)
}
