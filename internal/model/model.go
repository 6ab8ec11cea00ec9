// Package model implements the trainable statistical risk classifier.
//
// The model is fit once, at startup, on a synthetic dataset labeled by the
// rule engine (internal/rules), and is immutable afterwards: inference
// reads shared state without locking. Predict fails with
// safety.ErrModelNotReady until Fit has completed — there is no silent
// default.
package model

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/metrics"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/rules"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
)

// Type selects the underlying classifier.
type Type string

const (
	TypeDecisionTree       Type = "decision_tree"
	TypeLogisticRegression Type = "logistic_regression"
)

// ParseType validates a configured model type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeDecisionTree, TypeLogisticRegression:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown model type: %q", s)
	}
}

const (
	numFeatures = 3
	numClasses  = 3
)

// classifier is the contract both model variants satisfy: fit on labeled
// feature rows, predict a class with per-class probabilities, and expose a
// scalar importance per feature.
type classifier interface {
	fit(X [][]float64, y []int)
	predict(x []float64) (class int, probs []float64)
	importances() []float64
}

// Model wraps a classifier together with its feature scaling statistics and
// importances. Fields are written only inside the sync.Once fit barrier and
// read-only thereafter.
type Model struct {
	typ        Type
	clf        classifier
	scaler     *standardScaler
	importance []float64
	accuracy   float64

	visScale   float64
	speedScale float64
	scorer     *rules.Scorer
	logger     *slog.Logger

	fitOnce sync.Once
	fitErr  error
	trained atomic.Bool
}

// Option configures the model.
type Option func(*Model)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithScales overrides the feature scaling divisors.
func WithScales(visibility, speed float64) Option {
	return func(m *Model) {
		m.visScale = visibility
		m.speedScale = speed
	}
}

// WithScorer sets the rule scorer used to label the synthetic training set.
func WithScorer(scorer *rules.Scorer) Option {
	return func(m *Model) { m.scorer = scorer }
}

// New creates an unfitted model of the given type.
func New(typ Type, opts ...Option) (*Model, error) {
	m := &Model{
		typ:        typ,
		visScale:   visibilityRange,
		speedScale: speedRange,
		scorer:     rules.NewScorer(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	switch typ {
	case TypeDecisionTree:
		m.clf = newDecisionTree(numFeatures, numClasses)
	case TypeLogisticRegression:
		m.clf = newLogisticRegression(numFeatures, numClasses)
	default:
		return nil, fmt.Errorf("unknown model type: %q", typ)
	}

	return m, nil
}

// Fit trains the model on the synthetic dataset. Safe for concurrent
// callers: training runs exactly once and later calls return the first
// outcome.
func (m *Model) Fit() error {
	m.fitOnce.Do(m.fit)
	return m.fitErr
}

func (m *Model) fit() {
	start := time.Now()

	X, y := syntheticDataset(m.scorer, m.visScale, m.speedScale)

	m.scaler = &standardScaler{}
	m.scaler.fit(X)
	scaled := m.scaler.transformAll(X)

	m.clf.fit(scaled, y)
	m.importance = m.clf.importances()

	correct := 0
	for i, x := range scaled {
		if class, _ := m.clf.predict(x); class == y[i] {
			correct++
		}
	}
	m.accuracy = float64(correct) / float64(len(y))

	// trained flips only after every field above is in place, so a
	// concurrent reader can never observe a partially fitted model.
	m.trained.Store(true)

	elapsed := time.Since(start)
	metrics.ModelTrainingSeconds.Set(elapsed.Seconds())
	metrics.ModelTrainingAccuracy.Set(m.accuracy)

	m.logger.Info("model trained",
		"type", string(m.typ),
		"samples", len(y),
		"accuracy", fmt.Sprintf("%.3f", m.accuracy),
		"duration_ms", elapsed.Milliseconds(),
	)
}

// Trained reports whether Fit has completed.
func (m *Model) Trained() bool {
	return m.trained.Load()
}

// Type returns the configured model type.
func (m *Model) Type() Type {
	return m.typ
}

// TrainingAccuracy returns the model's accuracy on its own training set,
// or 0 before training.
func (m *Model) TrainingAccuracy() float64 {
	if !m.trained.Load() {
		return 0
	}
	return m.accuracy
}

// Importances returns a copy of the per-feature importances
// (visibility, speed, weather), or nil before training.
func (m *Model) Importances() []float64 {
	if !m.trained.Load() {
		return nil
	}
	out := make([]float64, len(m.importance))
	copy(out, m.importance)
	return out
}

// Predict classifies an observation, returning the risk level, the
// predicted-class probability as confidence, and per-feature attributions.
func (m *Model) Predict(obs safety.Observation) (safety.RiskLevel, float64, *safety.ContributingFactors, error) {
	if !m.trained.Load() {
		return "", 0, nil, safety.ErrModelNotReady
	}

	features := []float64{
		obs.Visibility / m.visScale,
		obs.Speed / m.speedScale,
		obs.Weather.Ordinal(),
	}
	scaled := m.scaler.transform(features)

	class, probs := m.clf.predict(scaled)
	if class < 0 || class >= len(safety.RiskLabels) {
		return "", 0, nil, &safety.InferenceError{Err: fmt.Errorf("predicted class %d out of range", class)}
	}

	level := safety.RiskLabels[class]
	confidence := probs[class]

	return level, confidence, m.contributingFactors(obs, scaled), nil
}

// contributingFactors weights each scaled feature by its importance. The
// fixed heuristic table is a documented secondary path for when importances
// are unavailable; it never stands in for an untrained model (Predict has
// already failed by then).
func (m *Model) contributingFactors(obs safety.Observation, scaled []float64) *safety.ContributingFactors {
	if len(m.importance) != numFeatures {
		return rules.HeuristicFactors(obs)
	}
	return &safety.ContributingFactors{
		Visibility: clamp01(math.Abs(m.importance[0]) * math.Abs(scaled[0])),
		Speed:      clamp01(math.Abs(m.importance[1]) * math.Abs(scaled[1])),
		Weather:    clamp01(math.Abs(m.importance[2]) * math.Abs(scaled[2])),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
