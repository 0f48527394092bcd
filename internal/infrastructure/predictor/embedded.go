package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitryikh/leaves"
	"go.uber.org/zap"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	domerrors "github.com/adlattice/bid-decision-engine/internal/domain/errors"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

const embeddedConfidence = 0.85

// Embedded scores bids with a local XGBoost ensemble, no network hop.
// Categorical features go through frequency encoders exported alongside
// the model. Reload swaps both under the write lock so a prediction
// never sees a model paired with stale encoders.
type Embedded struct {
	mu       sync.RWMutex
	model    *leaves.Ensemble
	encoders map[string]map[string]float64

	modelPath    string
	encodersPath string
	lastReload   time.Time
	logger       *zap.Logger
}

// NewEmbedded loads the model and encoders from disk
func NewEmbedded(modelPath, encodersPath string, logger *zap.Logger) (*Embedded, error) {
	e := &Embedded{
		modelPath:    modelPath,
		encodersPath: encodersPath,
		logger:       logger,
	}

	if err := e.Reload(); err != nil {
		return nil, fmt.Errorf("load embedded model: %w", err)
	}
	return e, nil
}

// Reload re-reads the model and encoder files, replacing both atomically
func (e *Embedded) Reload() error {
	model, err := leaves.XGEnsembleFromFile(e.modelPath, true)
	if err != nil {
		return fmt.Errorf("load xgboost model: %w", err)
	}

	data, err := os.ReadFile(e.encodersPath)
	if err != nil {
		return fmt.Errorf("read encoders: %w", err)
	}
	var encoders map[string]map[string]float64
	if err := json.Unmarshal(data, &encoders); err != nil {
		return fmt.Errorf("parse encoders: %w", err)
	}

	e.mu.Lock()
	e.model = model
	e.encoders = encoders
	e.lastReload = time.Now()
	e.mu.Unlock()

	e.logger.Info("embedded model loaded",
		zap.String("model_path", e.modelPath),
		zap.Int("n_features", model.NFeatures()))

	return nil
}

func (e *Embedded) Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.model == nil {
		return nil, domerrors.ErrModelNotLoaded
	}

	// Order must match the training pipeline's feature columns.
	vector := []float64{
		fv.FloorPrice,
		fv.EngagementScore,
		fv.ConversionProbability,
		fv.HistoricalWinRate,
		fv.HistoricalAvgBid,
		fv.HistoricalAvgWinPrice,
		e.encode("device_type", fv.DeviceType),
		e.encode("segment_category", fv.SegmentCategory),
		float64(fv.HourOfDay),
		float64(fv.DayOfWeek),
		e.encode("country", fv.Country),
		fv.CampaignSpendLast7d,
		fv.CampaignConversionsLast7d,
	}

	price := e.model.PredictSingle(vector, 0)
	if price < fv.FloorPrice {
		price = fv.FloorPrice * 1.01
	}

	return &bid.Prediction{
		Price:      price,
		Confidence: embeddedConfidence,
		Strategy:   bid.StrategyModelOptimized,
	}, nil
}

// encode maps a categorical value through its frequency encoder.
// Unknown categories encode to zero.
func (e *Embedded) encode(feature, value string) float64 {
	if encoder, ok := e.encoders[feature]; ok {
		if encoded, ok := encoder[value]; ok {
			return encoded
		}
	}
	return 0
}

// DetectFraud is not part of the scoring artifact's capability.
func (e *Embedded) DetectFraud(ctx context.Context, events []*bid.BidEvent) (*fraud.Signal, error) {
	return nil, fmt.Errorf("fraud detection not supported by embedded model")
}

// AnalyzeAudience is not part of the scoring artifact's capability.
func (e *Embedded) AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error) {
	return nil, fmt.Errorf("audience analysis not supported by embedded model")
}
