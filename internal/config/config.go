// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port      string
	Env       string // "development", "staging", "production"
	LogLevel  string
	LogFormat string // "text" or "json"

	// Classifier selection
	Strategy       string // "statistical" or "rules"
	ModelType      string // "decision_tree" or "logistic_regression"
	TrainOnStartup bool

	// Risk thresholds (rule engine classification boundaries)
	ThresholdLow    float64
	ThresholdMedium float64

	// Input validation ranges
	VisibilityMax  float64
	SpeedMax       float64
	WeatherOptions []string

	// Feature scaling divisors
	VisibilityScale float64
	SpeedScale      float64

	// Inference-failure policy: when true, a failed statistical inference
	// produces a degraded Medium-risk result instead of an error. Off by
	// default so faults stay visible.
	FallbackOnError bool

	// Transport
	RateLimitRPM int
	CORSOrigins  []string
	OTLPEndpoint string
}

// Defaults
const (
	DefaultPort            = "8000"
	DefaultEnv             = "development"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultStrategy        = "statistical"
	DefaultModelType       = "decision_tree"
	DefaultThresholdLow    = 30.0
	DefaultThresholdMedium = 60.0
	DefaultVisibilityMax   = 10000.0
	DefaultSpeedMax        = 500.0
	DefaultRateLimitRPM    = 120
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", DefaultPort),
		Env:             getEnv("ENV", DefaultEnv),
		LogLevel:        getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:       getEnv("LOG_FORMAT", DefaultLogFormat),
		Strategy:        getEnv("CLASSIFIER_STRATEGY", DefaultStrategy),
		ModelType:       getEnv("MODEL_TYPE", DefaultModelType),
		TrainOnStartup:  getEnvBool("MODEL_TRAIN_ON_STARTUP", true),
		ThresholdLow:    getEnvFloat("RISK_THRESHOLD_LOW", DefaultThresholdLow),
		ThresholdMedium: getEnvFloat("RISK_THRESHOLD_MEDIUM", DefaultThresholdMedium),
		VisibilityMax:   getEnvFloat("VISIBILITY_MAX", DefaultVisibilityMax),
		SpeedMax:        getEnvFloat("SPEED_MAX", DefaultSpeedMax),
		WeatherOptions:  getEnvList("WEATHER_OPTIONS", []string{"Clear", "Rain", "Fog"}),
		VisibilityScale: getEnvFloat("VISIBILITY_SCALE_FACTOR", DefaultVisibilityMax),
		SpeedScale:      getEnvFloat("SPEED_SCALE_FACTOR", DefaultSpeedMax),
		FallbackOnError: getEnvBool("RISK_FALLBACK_ON_ERROR", false),
		RateLimitRPM:    int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimitRPM)),
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"*"}),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	switch c.Strategy {
	case "statistical", "rules":
	default:
		return fmt.Errorf("CLASSIFIER_STRATEGY must be \"statistical\" or \"rules\", got %q", c.Strategy)
	}

	switch c.ModelType {
	case "decision_tree", "logistic_regression":
	default:
		return fmt.Errorf("MODEL_TYPE must be \"decision_tree\" or \"logistic_regression\", got %q", c.ModelType)
	}

	if c.ThresholdLow <= 0 || c.ThresholdMedium <= c.ThresholdLow {
		return fmt.Errorf("risk thresholds must satisfy 0 < low < medium, got low=%g medium=%g",
			c.ThresholdLow, c.ThresholdMedium)
	}

	if c.VisibilityMax <= 0 {
		return fmt.Errorf("VISIBILITY_MAX must be positive, got %g", c.VisibilityMax)
	}
	if c.SpeedMax <= 0 {
		return fmt.Errorf("SPEED_MAX must be positive, got %g", c.SpeedMax)
	}

	if c.VisibilityScale <= 0 || c.SpeedScale <= 0 {
		return fmt.Errorf("feature scale factors must be positive")
	}

	if len(c.WeatherOptions) == 0 {
		return fmt.Errorf("WEATHER_OPTIONS must not be empty")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
