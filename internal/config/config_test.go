package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultStrategy, cfg.Strategy)
	assert.Equal(t, DefaultModelType, cfg.ModelType)
	assert.True(t, cfg.TrainOnStartup)
	assert.Equal(t, DefaultThresholdLow, cfg.ThresholdLow)
	assert.Equal(t, DefaultThresholdMedium, cfg.ThresholdMedium)
	assert.Equal(t, []string{"Clear", "Rain", "Fog"}, cfg.WeatherOptions)
	assert.False(t, cfg.FallbackOnError)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "PORT", "9090")
	setEnv(t, "MODEL_TYPE", "logistic_regression")
	setEnv(t, "CLASSIFIER_STRATEGY", "rules")
	setEnv(t, "RISK_THRESHOLD_LOW", "25")
	setEnv(t, "RISK_THRESHOLD_MEDIUM", "55")
	setEnv(t, "RISK_FALLBACK_ON_ERROR", "true")
	setEnv(t, "CORS_ORIGINS", "http://localhost:8501, http://dashboard.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "logistic_regression", cfg.ModelType)
	assert.Equal(t, "rules", cfg.Strategy)
	assert.Equal(t, 25.0, cfg.ThresholdLow)
	assert.Equal(t, 55.0, cfg.ThresholdMedium)
	assert.True(t, cfg.FallbackOnError)
	assert.Equal(t, []string{"http://localhost:8501", "http://dashboard.local"}, cfg.CORSOrigins)
}

func TestLoad_InvalidModelType(t *testing.T) {
	setEnv(t, "MODEL_TYPE", "random_forest")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_TYPE")
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	setEnv(t, "RISK_THRESHOLD_LOW", "not-a-number")
	setEnv(t, "RATE_LIMIT_RPM", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholdLow, cfg.ThresholdLow)
	assert.Equal(t, DefaultRateLimitRPM, cfg.RateLimitRPM)
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			Strategy:        "statistical",
			ModelType:       "decision_tree",
			ThresholdLow:    30,
			ThresholdMedium: 60,
			VisibilityMax:   10000,
			SpeedMax:        500,
			VisibilityScale: 10000,
			SpeedScale:      500,
			WeatherOptions:  []string{"Clear", "Rain", "Fog"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "unknown strategy",
			mutate:  func(c *Config) { c.Strategy = "oracle" },
			wantErr: "CLASSIFIER_STRATEGY",
		},
		{
			name:    "inverted thresholds",
			mutate:  func(c *Config) { c.ThresholdLow, c.ThresholdMedium = 60, 30 },
			wantErr: "thresholds",
		},
		{
			name:    "zero visibility max",
			mutate:  func(c *Config) { c.VisibilityMax = 0 },
			wantErr: "VISIBILITY_MAX",
		},
		{
			name:    "zero scale factor",
			mutate:  func(c *Config) { c.SpeedScale = 0 },
			wantErr: "scale factors",
		},
		{
			name:    "empty weather vocabulary",
			mutate:  func(c *Config) { c.WeatherOptions = nil },
			wantErr: "WEATHER_OPTIONS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
