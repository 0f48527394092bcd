package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// ChatCompleter is the slice of the OpenAI client the backend uses,
// extracted so tests can stub completions.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI prices bids and scans fraud through a chat-completion service.
// The model is instructed to answer in strict JSON; a response that does
// not decode is a backend error and triggers the caller's fallback, it
// is never scraped for numbers.
type OpenAI struct {
	client ChatCompleter
	model  string
	logger *zap.Logger
}

// NewOpenAI creates a chat-completion backend
func NewOpenAI(apiKey, model string, logger *zap.Logger) *OpenAI {
	if model == "" {
		model = openai.GPT4
	}

	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// NewOpenAIWithClient wires a custom completer, for tests
func NewOpenAIWithClient(client ChatCompleter, model string, logger *zap.Logger) *OpenAI {
	return &OpenAI{client: client, model: model, logger: logger}
}

const predictSystemPrompt = `You are an expert in digital advertising bid optimization. Analyze the data and predict the optimal bid price. Respond with JSON format: {"bid_price": number, "confidence": number, "strategy": "string", "fraud_risk": boolean}`

const fraudSystemPrompt = `You are an expert in fraud detection for digital advertising. Analyze bid patterns for suspicious activity. Respond with JSON format: {"fraud_detected": boolean, "confidence": number, "patterns": ["string"], "severity": number}`

const audienceSystemPrompt = `You are an expert in audience analysis for digital advertising. Analyze user behavior patterns and provide insights. Respond with JSON format: {"segments": ["string"], "insights": ["string"]}`

func (o *OpenAI) Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error) {
	content, err := o.complete(ctx, predictSystemPrompt, buildPredictPrompt(fv), 0.3)
	if err != nil {
		return nil, err
	}

	var out struct {
		BidPrice   float64 `json:"bid_price"`
		Confidence float64 `json:"confidence"`
		Strategy   string  `json:"strategy"`
		FraudRisk  bool    `json:"fraud_risk"`
	}
	if err := decodeStrict(content, &out); err != nil {
		return nil, fmt.Errorf("parse prediction response: %w", err)
	}
	if out.BidPrice <= 0 {
		return nil, fmt.Errorf("completion returned non-positive price %f", out.BidPrice)
	}

	strategy := out.Strategy
	if strategy == "" {
		strategy = bid.StrategyModelOptimized
	}

	return &bid.Prediction{
		Price:      out.BidPrice,
		Confidence: out.Confidence,
		Strategy:   strategy,
		FraudRisk:  out.FraudRisk,
	}, nil
}

func (o *OpenAI) DetectFraud(ctx context.Context, events []*bid.BidEvent) (*fraud.Signal, error) {
	content, err := o.complete(ctx, fraudSystemPrompt, buildFraudPrompt(events), 0.2)
	if err != nil {
		return nil, err
	}

	var out struct {
		FraudDetected bool     `json:"fraud_detected"`
		Confidence    float64  `json:"confidence"`
		Patterns      []string `json:"patterns"`
		Severity      int      `json:"severity"`
	}
	if err := decodeStrict(content, &out); err != nil {
		return nil, fmt.Errorf("parse fraud response: %w", err)
	}

	return &fraud.Signal{
		Detected:   out.FraudDetected,
		Confidence: out.Confidence,
		Patterns:   out.Patterns,
		Severity:   out.Severity,
		Method:     fraud.MethodModelBased,
	}, nil
}

func (o *OpenAI) AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error) {
	content, err := o.complete(ctx, audienceSystemPrompt, buildAudiencePrompt(events), 0.5)
	if err != nil {
		return nil, err
	}

	var out bid.AudienceAnalysis
	if err := decodeStrict(content, &out); err != nil {
		return nil, fmt.Errorf("parse audience response: %w", err)
	}
	return &out, nil
}

func (o *OpenAI) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// decodeStrict strips markdown code fences and decodes exactly one JSON
// object, rejecting unknown fields.
func decodeStrict(content string, v interface{}) error {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func buildPredictPrompt(fv bid.FeatureVector) string {
	var b strings.Builder
	b.WriteString("Analyze this bid request and predict optimal bid price:\n\n")
	b.WriteString("REQUEST:\n")
	fmt.Fprintf(&b, "- Floor Price: $%.4f\n", fv.FloorPrice)
	fmt.Fprintf(&b, "- Engagement Score: %.2f\n", fv.EngagementScore)
	fmt.Fprintf(&b, "- Conversion Probability: %.2f\n", fv.ConversionProbability)
	fmt.Fprintf(&b, "- Device: %s\n", fv.DeviceType)
	fmt.Fprintf(&b, "- Segment Category: %s\n", fv.SegmentCategory)
	fmt.Fprintf(&b, "- Country: %s\n", fv.Country)
	fmt.Fprintf(&b, "- Hour of Day: %d, Day of Week: %d\n", fv.HourOfDay, fv.DayOfWeek)

	if fv.SampleCount > 0 {
		fmt.Fprintf(&b, "\nHISTORICAL DATA (%d recent bids):\n", fv.SampleCount)
		fmt.Fprintf(&b, "- Win Rate: %.2f%%\n", fv.HistoricalWinRate*100)
		fmt.Fprintf(&b, "- Average Bid: $%.4f\n", fv.HistoricalAvgBid)
		fmt.Fprintf(&b, "- Average Win Price: $%.4f\n", fv.HistoricalAvgWinPrice)
		fmt.Fprintf(&b, "- Spend Last 7 Days: $%.2f\n", fv.CampaignSpendLast7d)
		fmt.Fprintf(&b, "- Conversions Last 7 Days: %.0f\n", fv.CampaignConversionsLast7d)
	}

	b.WriteString("\nConsider factors like competition, user engagement, conversion probability, and historical performance.")
	b.WriteString("\nRecommend a bid price that maximizes ROI while maintaining competitiveness.")
	return b.String()
}

func buildFraudPrompt(events []*bid.BidEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these %d bid events for fraud patterns:\n\n", len(events))

	activity := make(map[string]int)
	conversions := make(map[string]int)
	for _, ev := range events {
		activity[ev.UserID]++
		if ev.Converted {
			conversions[ev.UserID]++
		}
	}

	fmt.Fprintf(&b, "Distinct users: %d\n", len(activity))
	for userID, count := range activity {
		fmt.Fprintf(&b, "- user %s: %d events, %d conversions\n", shortUser(userID), count, conversions[userID])
	}
	return b.String()
}

func buildAudiencePrompt(events []*bid.BidEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze audience patterns from %d bid events:\n\n", len(events))

	devices := make(map[string]int)
	regions := make(map[string]int)
	var conversions int
	for _, ev := range events {
		devices[ev.DeviceType]++
		regions[ev.Region+", "+ev.Country]++
		if ev.Converted {
			conversions++
		}
	}

	fmt.Fprintf(&b, "Device mix: %v\n", devices)
	fmt.Fprintf(&b, "Distinct regions: %d\n", len(regions))
	fmt.Fprintf(&b, "Total conversions: %d\n", conversions)
	b.WriteString("\nIdentify audience segments and actionable insights.")
	return b.String()
}
