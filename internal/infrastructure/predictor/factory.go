package predictor

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/adlattice/bid-decision-engine/internal/domain/errors"
	"github.com/adlattice/bid-decision-engine/internal/infrastructure/config"
)

// Backend keys accepted by the factory.
const (
	BackendSimulated = "simulated"
	BackendRuleBased = "rule_based"
	BackendHTTP      = "http"
	BackendEmbedded  = "embedded"
	BackendOpenAI    = "openai"
)

// New constructs the backend named by cfg.Backend. An unknown key is a
// configuration error, not a silent default.
func New(cfg config.EngineConfig, logger *zap.Logger) (Backend, error) {
	switch cfg.Backend {
	case BackendSimulated:
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return NewSimulated(rand.New(rand.NewSource(seed))), nil

	case BackendRuleBased:
		return NewRuleBased(), nil

	case BackendHTTP:
		if cfg.ModelURL == "" {
			return nil, errors.NewValidationError("MISSING_MODEL_URL", "http backend requires engine.model_url")
		}
		return NewHTTPModel(cfg.ModelURL, cfg.ModelRPS, logger), nil

	case BackendEmbedded:
		if cfg.ModelPath == "" || cfg.EncodersPath == "" {
			return nil, errors.NewValidationError("MISSING_MODEL_PATH", "embedded backend requires engine.model_path and engine.encoders_path")
		}
		return NewEmbedded(cfg.ModelPath, cfg.EncodersPath, logger)

	case BackendOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.NewValidationError("MISSING_OPENAI_KEY", "openai backend requires engine.openai_key")
		}
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, logger), nil

	default:
		return nil, errors.NewValidationError("UNKNOWN_BACKEND", "unknown prediction backend: "+cfg.Backend)
	}
}
