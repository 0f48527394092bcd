package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

const httpModelConfidence = 0.90

// HTTPModel delegates pricing to a remote model service speaking the
// POST /predict JSON contract. Responses are decoded strictly: an
// unknown field, a missing price, or a non-2xx status is a backend
// error, not something to scrape a number out of.
type HTTPModel struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHTTPModel creates an HTTP model backend. rps bounds outbound call
// rate; the per-call deadline comes from the caller's context.
func NewHTTPModel(baseURL string, rps float64, logger *zap.Logger) *HTTPModel {
	if rps <= 0 {
		rps = 50
	}

	return &HTTPModel{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		logger:  logger,
	}
}

type predictRequest struct {
	Features bid.FeatureVector `json:"features"`
}

type predictResponse struct {
	PredictedBid float64 `json:"predicted_bid"`
	ModelVersion string  `json:"model_version"`
}

func (h *HTTPModel) Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(predictRequest{Features: fv})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model service call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("model service returned status %d", resp.StatusCode)
	}

	var out predictResponse
	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if out.PredictedBid <= 0 {
		return nil, fmt.Errorf("model service returned non-positive price %f", out.PredictedBid)
	}

	h.logger.Debug("model prediction received",
		zap.Float64("predicted_bid", out.PredictedBid),
		zap.String("model_version", out.ModelVersion))

	return &bid.Prediction{
		Price:      out.PredictedBid,
		Confidence: httpModelConfidence,
		Strategy:   bid.StrategyModelOptimized,
	}, nil
}

// DetectFraud is not served by the model endpoint; the scanner treats
// this as a backend failure and degrades to the rule verdict.
func (h *HTTPModel) DetectFraud(ctx context.Context, events []*bid.BidEvent) (*fraud.Signal, error) {
	return nil, fmt.Errorf("fraud detection not supported by model service")
}

// AnalyzeAudience is not served by the model endpoint; the reporter
// falls back to rule-based insights.
func (h *HTTPModel) AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error) {
	return nil, fmt.Errorf("audience analysis not supported by model service")
}
