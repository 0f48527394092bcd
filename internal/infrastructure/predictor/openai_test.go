package predictor

import (
	"context"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
	"github.com/adlattice/bid-decision-engine/internal/testutil/fixtures"
)

type stubCompleter struct {
	content string
	err     error
}

func (s stubCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func stubbed(content string) *OpenAI {
	return NewOpenAIWithClient(stubCompleter{content: content}, openai.GPT4, zap.NewNop())
}

func TestOpenAI_Predict(t *testing.T) {
	backend := stubbed(`{"bid_price": 2.4, "confidence": 0.85, "strategy": "conversion_focused", "fraud_risk": false}`)

	p, err := backend.Predict(context.Background(), testVector())
	require.NoError(t, err)
	assert.Equal(t, 2.4, p.Price)
	assert.Equal(t, 0.85, p.Confidence)
	assert.Equal(t, "conversion_focused", p.Strategy)
	assert.False(t, p.FraudRisk)
}

func TestOpenAI_Predict_StripsCodeFences(t *testing.T) {
	backend := stubbed("```json\n{\"bid_price\": 1.9, \"confidence\": 0.8, \"strategy\": \"ml_optimized\", \"fraud_risk\": true}\n```")

	p, err := backend.Predict(context.Background(), testVector())
	require.NoError(t, err)
	assert.Equal(t, 1.9, p.Price)
	assert.True(t, p.FraudRisk)
}

func TestOpenAI_Predict_MalformedResponseFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"prose answer", "I recommend bidding around $2.40 for this request."},
		{"prose with embedded number", "bid_price: 2.4, confidence: high"},
		{"unknown field", `{"bid_price": 2.4, "confidence": 0.8, "strategy": "x", "fraud_risk": false, "reasoning": "..."}`},
		{"zero price", `{"bid_price": 0, "confidence": 0.8, "strategy": "x", "fraud_risk": false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stubbed(tt.content).Predict(context.Background(), testVector())
			assert.Error(t, err)
		})
	}
}

func TestOpenAI_Predict_APIErrorPropagates(t *testing.T) {
	backend := NewOpenAIWithClient(stubCompleter{err: assert.AnError}, openai.GPT4, zap.NewNop())
	_, err := backend.Predict(context.Background(), testVector())
	assert.Error(t, err)
}

func TestOpenAI_DetectFraud(t *testing.T) {
	backend := stubbed(`{"fraud_detected": true, "confidence": 0.9, "patterns": ["click farming"], "severity": 7}`)

	signal, err := backend.DetectFraud(context.Background(), fixtures.NewBidEventBuilder().BuildBatch(15))
	require.NoError(t, err)
	assert.True(t, signal.Detected)
	assert.Equal(t, 0.9, signal.Confidence)
	assert.Equal(t, []string{"click farming"}, signal.Patterns)
	assert.Equal(t, 7, signal.Severity)
	assert.Equal(t, fraud.MethodModelBased, signal.Method)
}

func TestOpenAI_AnalyzeAudience(t *testing.T) {
	backend := stubbed(`{"segments": ["mobile_heavy_users"], "insights": ["Mobile engagement is strong"]}`)

	analysis, err := backend.AnalyzeAudience(context.Background(), fixtures.NewBidEventBuilder().BuildBatch(5))
	require.NoError(t, err)
	assert.Equal(t, &bid.AudienceAnalysis{
		Segments: []string{"mobile_heavy_users"},
		Insights: []string{"Mobile engagement is strong"},
	}, analysis)
}
