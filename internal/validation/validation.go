// Package validation normalizes and range-checks raw observations before
// they reach the assessment pipeline.
//
// Missing fields and out-of-range values are deliberately kept apart:
// a missing field produces an Outcome listing what to ask the caller for,
// while a supplied-but-invalid value produces a safety.RangeError the
// transport surfaces verbatim as a client error.
package validation

import (
	"fmt"
	"strings"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
)

// RawObservation carries the optional values exactly as the caller sent
// them. Nil means the field was absent from the request.
type RawObservation struct {
	Visibility *float64 `json:"visibility"`
	Speed      *float64 `json:"speed"`
	Weather    *string  `json:"weather"`
}

// Bounds holds the domain ranges and weather vocabulary inputs are checked
// against.
type Bounds struct {
	VisibilityMax  float64
	SpeedMax       float64
	WeatherOptions []string
}

// DefaultBounds returns the standard operational ranges.
func DefaultBounds() Bounds {
	return Bounds{
		VisibilityMax:  10000,
		SpeedMax:       500,
		WeatherOptions: []string{"Clear", "Rain", "Fog"},
	}
}

// Outcome is the result of validating a raw observation. Exactly one of
// Observation or Missing is populated.
type Outcome struct {
	Observation *safety.Observation
	Missing     []string
}

// Complete reports whether all required fields were present and valid.
func (o Outcome) Complete() bool {
	return o.Observation != nil
}

// Validate checks a raw observation against the given bounds.
//
// Missing-field detection runs first: if any field is absent, the returned
// Outcome lists the missing names and no range checks are performed. Range
// violations on fully populated input return a *safety.RangeError instead.
// Pure function of its inputs.
func Validate(raw RawObservation, bounds Bounds) (Outcome, error) {
	var missing []string
	if raw.Visibility == nil {
		missing = append(missing, "visibility")
	}
	if raw.Speed == nil {
		missing = append(missing, "speed")
	}
	if raw.Weather == nil {
		missing = append(missing, "weather")
	}
	if len(missing) > 0 {
		return Outcome{Missing: missing}, nil
	}

	var violations []string

	if *raw.Visibility <= 0 {
		violations = append(violations, "Visibility must be greater than 0")
	} else if *raw.Visibility > bounds.VisibilityMax {
		violations = append(violations, fmt.Sprintf("Visibility exceeds maximum (%gm)", bounds.VisibilityMax))
	}

	if *raw.Speed <= 0 {
		violations = append(violations, "Speed must be greater than 0")
	} else if *raw.Speed > bounds.SpeedMax {
		violations = append(violations, fmt.Sprintf("Speed exceeds maximum (%g km/h)", bounds.SpeedMax))
	}

	weather, weatherOK := parseWeather(*raw.Weather, bounds.WeatherOptions)
	if !weatherOK {
		violations = append(violations,
			fmt.Sprintf("Weather must be one of: %s", strings.Join(bounds.WeatherOptions, ", ")))
	}

	if len(violations) > 0 {
		return Outcome{}, &safety.RangeError{Violations: violations}
	}

	return Outcome{
		Observation: &safety.Observation{
			Visibility: *raw.Visibility,
			Speed:      *raw.Speed,
			Weather:    weather,
		},
	}, nil
}

// parseWeather checks the value against the configured vocabulary, then maps
// it to the fixed ordinal encoding. A value allowed by config but unknown to
// the encoding is still rejected: the encoding is what the model trained on.
func parseWeather(value string, options []string) (safety.Weather, bool) {
	allowed := false
	for _, opt := range options {
		if value == opt {
			allowed = true
			break
		}
	}
	if !allowed {
		return 0, false
	}
	w, err := safety.ParseWeather(value)
	if err != nil {
		return 0, false
	}
	return w, true
}
