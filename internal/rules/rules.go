// Package rules implements the deterministic rule-based risk scorer.
//
// An observation is scored against 3 banded factors (visibility, speed,
// weather), compound multipliers fire for dangerous combinations, and the
// result is clamped to [0,100] before threshold classification. The same
// function labels the synthetic training set in internal/model, so it is
// the ground truth the statistical classifier approximates and must stay
// bit-reproducible.
package rules

import (
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
)

// Default classification thresholds. Strict lower bounds: a score of
// exactly 30 is Medium, exactly 60 is High.
const (
	DefaultThresholdLow    = 30.0
	DefaultThresholdMedium = 60.0
)

// Compound multipliers applied in order after the factor sum.
const (
	fogLowVisibilityMultiplier = 1.3 // Fog and visibility < 200m
	speedLowVisibilityFactor   = 1.2 // speed > 120 km/h and visibility < 500m
)

// Scorer maps observations to 0-100 risk scores and three-level
// classifications. Pure and stateless apart from its thresholds.
type Scorer struct {
	thresholdLow    float64
	thresholdMedium float64
}

// NewScorer creates a scorer with the default thresholds.
func NewScorer() *Scorer {
	return &Scorer{
		thresholdLow:    DefaultThresholdLow,
		thresholdMedium: DefaultThresholdMedium,
	}
}

// WithThresholds overrides the Low/Medium classification boundaries.
func (s *Scorer) WithThresholds(low, medium float64) *Scorer {
	s.thresholdLow = low
	s.thresholdMedium = medium
	return s
}

// Score computes the risk score for an observation.
func (s *Scorer) Score(obs safety.Observation) float64 {
	score := visibilityPoints(obs.Visibility) +
		speedPoints(obs.Speed) +
		weatherPoints(obs.Weather)

	// Compound multipliers, each independently applicable
	if obs.Weather == safety.WeatherFog && obs.Visibility < 200 {
		score *= fogLowVisibilityMultiplier
	}
	if obs.Speed > 120 && obs.Visibility < 500 {
		score *= speedLowVisibilityFactor
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Classify maps a score onto the three-level classification.
func (s *Scorer) Classify(score float64) safety.RiskLevel {
	switch {
	case score < s.thresholdLow:
		return safety.RiskLow
	case score < s.thresholdMedium:
		return safety.RiskMedium
	default:
		return safety.RiskHigh
	}
}

// Assess scores and classifies in one call.
func (s *Scorer) Assess(obs safety.Observation) (float64, safety.RiskLevel) {
	score := s.Score(obs)
	return score, s.Classify(score)
}

// visibilityPoints contributes 0-40 points; lower visibility is riskier.
func visibilityPoints(visibility float64) float64 {
	switch {
	case visibility < 100:
		return 40
	case visibility < 500:
		return 30
	case visibility < 1000:
		return 20
	case visibility < 2000:
		return 10
	default:
		return 0
	}
}

// speedPoints contributes 0-30 points; higher speed is riskier.
func speedPoints(speed float64) float64 {
	switch {
	case speed > 150:
		return 30
	case speed > 120:
		return 20
	case speed > 80:
		return 10
	default:
		return 0
	}
}

// weatherPoints is the ordinal encoding scaled by 15: Clear=0, Rain=15,
// Fog=30. The synthetic labeler relies on this equivalence.
func weatherPoints(w safety.Weather) float64 {
	return w.Ordinal() * 15
}

// HeuristicFactors returns the fixed attribution table used when model
// feature importances are unavailable, and as the rule path's explanation.
func HeuristicFactors(obs safety.Observation) *safety.ContributingFactors {
	factors := &safety.ContributingFactors{}

	switch {
	case obs.Visibility < 500:
		factors.Visibility = 0.4
	case obs.Visibility < 2000:
		factors.Visibility = 0.2
	}

	switch {
	case obs.Speed > 120:
		factors.Speed = 0.3
	case obs.Speed > 80:
		factors.Speed = 0.15
	}

	switch obs.Weather {
	case safety.WeatherFog:
		factors.Weather = 0.3
	case safety.WeatherRain:
		factors.Weather = 0.15
	}

	return factors
}
