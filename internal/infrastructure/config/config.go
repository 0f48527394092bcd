package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Telemetry TelemetryConfig `koanf:"telemetry"`

	Engine EngineConfig `koanf:"engine"`
	Fraud  FraudConfig  `koanf:"fraud"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL      string        `koanf:"url"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SamplingRate float64 `koanf:"sampling_rate"`
}

// EngineConfig selects and tunes the prediction backend.
type EngineConfig struct {
	// Backend is one of: simulated, rule_based, http, embedded, openai.
	Backend        string        `koanf:"backend"`
	HistoryLimit   int           `koanf:"history_limit"`
	BackendTimeout time.Duration `koanf:"backend_timeout"`
	DefaultCountry string        `koanf:"default_country"`
	// Seed drives the simulated backend; zero means time-seeded.
	Seed int64 `koanf:"seed"`

	ModelURL     string  `koanf:"model_url"`
	ModelRPS     float64 `koanf:"model_rps"`
	ModelPath    string  `koanf:"model_path"`
	EncodersPath string  `koanf:"encoders_path"`

	OpenAIKey   string `koanf:"openai_key"`
	OpenAIModel string `koanf:"openai_model"`
}

type FraudConfig struct {
	ActivityThreshold       int           `koanf:"activity_threshold"`
	ConversionRateThreshold float64       `koanf:"conversion_rate_threshold"`
	MinConversionSample     int           `koanf:"min_conversion_sample"`
	MinEvents               int           `koanf:"min_events"`
	ScanInterval            time.Duration `koanf:"scan_interval"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load defaults
	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			DB:  0,
			TTL: 30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			SamplingRate: 1.0,
		},
		Engine: EngineConfig{
			Backend:        "simulated",
			HistoryLimit:   100,
			BackendTimeout: 5 * time.Second,
			DefaultCountry: "US",
			ModelRPS:       50,
		},
		Fraud: FraudConfig{
			ActivityThreshold:       50,
			ConversionRateThreshold: 0.5,
			MinConversionSample:     10,
			MinEvents:               10,
			ScanInterval:            time.Hour,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional
	_ = k.Load(file.Provider("configs/config.yaml"), yaml.Parser())

	// Override with environment variables
	if err := k.Load(env.Provider("BDE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "BDE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Thresholds maps the fraud section onto the rule evaluator's tuning.
func (f FraudConfig) Thresholds() fraud.Thresholds {
	return fraud.Thresholds{
		ActivityThreshold:       f.ActivityThreshold,
		ConversionRateThreshold: f.ConversionRateThreshold,
		MinConversionSample:     f.MinConversionSample,
		MinEvents:               f.MinEvents,
	}
}
