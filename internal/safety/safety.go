// Package safety defines the shared domain types for railway risk assessment.
//
// An Observation is the triple of operating conditions (visibility, speed,
// weather) captured at assessment time. The classification strategies in
// internal/rules and internal/model both map an Observation to a
// ClassificationResult; the pipeline composes that into the externally
// visible AssessmentResult.
package safety

import (
	"errors"
	"fmt"
	"strings"
)

// Weather is an observed weather condition, ordinal-encoded by severity:
// Clear=0, Rain=1, Fog=2. The ordinal doubles as the model feature value.
type Weather int

const (
	WeatherClear Weather = iota
	WeatherRain
	WeatherFog
)

// WeatherNames lists the accepted weather vocabulary in ordinal order.
var WeatherNames = []string{"Clear", "Rain", "Fog"}

// ParseWeather maps a weather name to its ordinal value.
func ParseWeather(s string) (Weather, error) {
	for i, name := range WeatherNames {
		if s == name {
			return Weather(i), nil
		}
	}
	return 0, fmt.Errorf("weather must be one of: %s", strings.Join(WeatherNames, ", "))
}

func (w Weather) String() string {
	if w < 0 || int(w) >= len(WeatherNames) {
		return fmt.Sprintf("Weather(%d)", int(w))
	}
	return WeatherNames[w]
}

// Ordinal returns the encoded feature value for the condition.
func (w Weather) Ordinal() float64 {
	return float64(w)
}

// RiskLevel is the discretized risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLabels lists risk levels by class index (the model's label encoding).
var RiskLabels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// Observation describes current operating conditions. Immutable once
// constructed; one is created per request after validation.
type Observation struct {
	Visibility float64 // meters
	Speed      float64 // km/h
	Weather    Weather
}

// ContributingFactors holds per-input attribution scores in [0,1]
// explaining a classification.
type ContributingFactors struct {
	Visibility float64 `json:"visibility_contribution"`
	Speed      float64 `json:"speed_contribution"`
	Weather    float64 `json:"weather_contribution"`
}

// ClassificationResult is the verdict of exactly one classification strategy.
// Score is set on the rule-based path, Confidence on the statistical path.
type ClassificationResult struct {
	Level      RiskLevel            `json:"risk_level"`
	Score      *float64             `json:"score,omitempty"`
	Confidence *float64             `json:"confidence,omitempty"`
	Factors    *ContributingFactors `json:"contributing_factors,omitempty"`
}

// AssessmentResult is the final output of the assessment pipeline. Exactly
// one of MissingInputs (clarification case) or the classification fields is
// populated.
type AssessmentResult struct {
	RiskLevel      RiskLevel            `json:"risk_level,omitempty"`
	AlertMessage   string               `json:"alert_message"`
	Recommendation string               `json:"recommendation"`
	Confidence     *float64             `json:"confidence,omitempty"`
	Factors        *ContributingFactors `json:"contributing_factors,omitempty"`
	MissingInputs  []string             `json:"missing_inputs,omitempty"`
}

// NeedsClarification reports whether the assessment stopped on missing
// inputs rather than producing a classification.
func (r *AssessmentResult) NeedsClarification() bool {
	return len(r.MissingInputs) > 0
}

// ErrModelNotReady is returned when inference is requested before the
// statistical model has been trained. A lifecycle bug, not a user error.
var ErrModelNotReady = errors.New("model not trained")

// RangeError reports fields that were supplied but violate domain bounds or
// vocabulary. Distinct from missing inputs: the caller sent something, it
// just isn't valid. The transport surfaces the message verbatim as a 400.
type RangeError struct {
	Violations []string
}

func (e *RangeError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// InferenceError wraps an unexpected failure inside the statistical path.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return "inference failed: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
