// Package pipeline sequences the assessment stages: perceive (validate) →
// classify → decide → act. Stages run in that order exactly once per
// request, with no cycles; incomplete input short-circuits past
// classification straight to the alert composer.
//
// Classification is a strategy chosen at construction — the rule engine and
// the statistical model are interchangeable behind the Classifier
// interface — so "what is the risk" stays independently replaceable from
// "what do we do about it".
package pipeline

import (
	"context"
	"errors"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/alerts"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/logging"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/metrics"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/traces"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/validation"
)

// Classifier is the classification strategy contract.
type Classifier interface {
	// Name identifies the strategy in logs and spans.
	Name() string
	// Classify maps a validated observation to a classification result.
	Classify(ctx context.Context, obs safety.Observation) (safety.ClassificationResult, error)
}

// State is the value passed between pipeline stages. Exactly one concrete
// variant exists per stage transition, so a stage's input statically
// excludes impossible field combinations.
type State interface {
	isState()
}

// NeedsClarification is the terminal state for incomplete input.
type NeedsClarification struct {
	Missing []string
}

// Validated is the intermediate state between perception and
// classification.
type Validated struct {
	Observation safety.Observation
}

// Classified carries a completed classification toward the act stage.
type Classified struct {
	Result safety.ClassificationResult
}

func (NeedsClarification) isState() {}
func (Validated) isState()          {}
func (Classified) isState()         {}

// Pipeline owns one classification strategy and the alert composer.
// Stateless per request; safe for concurrent use.
type Pipeline struct {
	classifier      Classifier
	composer        *alerts.Composer
	bounds          validation.Bounds
	fallbackOnError bool
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithBounds overrides the validation bounds.
func WithBounds(bounds validation.Bounds) Option {
	return func(p *Pipeline) { p.bounds = bounds }
}

// WithFallbackOnError enables the degraded Medium-risk fallback for
// inference failures. The failure is still logged and counted; only the
// response changes.
func WithFallbackOnError(enabled bool) Option {
	return func(p *Pipeline) { p.fallbackOnError = enabled }
}

// New creates a pipeline around the given classification strategy.
func New(classifier Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: classifier,
		composer:   alerts.NewComposer(),
		bounds:     validation.DefaultBounds(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Strategy returns the active classification strategy name.
func (p *Pipeline) Strategy() string {
	return p.classifier.Name()
}

// Assess runs the full pipeline on a raw observation.
//
// Out-of-range input and classifier failures return errors for the caller
// to map; missing input is not an error and yields a clarification result.
func (p *Pipeline) Assess(ctx context.Context, raw validation.RawObservation) (*safety.AssessmentResult, error) {
	ctx, span := traces.StartSpan(ctx, "pipeline.assess", traces.Strategy(p.classifier.Name()))
	defer span.End()

	state, err := p.perceive(ctx, raw)
	if err != nil {
		return nil, err
	}

	state, err = p.classify(ctx, state)
	if err != nil {
		return nil, err
	}

	state = p.decide(ctx, state)

	return p.act(ctx, state), nil
}

// perceive validates the raw observation. Incomplete input flags the
// terminal clarification state; range violations are errors.
func (p *Pipeline) perceive(ctx context.Context, raw validation.RawObservation) (State, error) {
	_, span := traces.StartSpan(ctx, "pipeline.perceive")
	defer span.End()

	outcome, err := validation.Validate(raw, p.bounds)
	if err != nil {
		metrics.ValidationFailuresTotal.Inc()
		logging.L(ctx).Warn("observation rejected", "error", err)
		return nil, err
	}
	if !outcome.Complete() {
		span.SetAttributes(traces.MissingInputs(len(outcome.Missing)))
		logging.L(ctx).Info("observation incomplete", "missing", outcome.Missing)
		return NeedsClarification{Missing: outcome.Missing}, nil
	}
	return Validated{Observation: *outcome.Observation}, nil
}

// classify invokes the strategy on a validated observation. A
// clarification state passes through untouched.
func (p *Pipeline) classify(ctx context.Context, state State) (State, error) {
	validated, ok := state.(Validated)
	if !ok {
		return state, nil
	}

	ctx, span := traces.StartSpan(ctx, "pipeline.classify",
		traces.WeatherCondition(validated.Observation.Weather.String()))
	defer span.End()

	result, err := p.classifier.Classify(ctx, validated.Observation)
	if err != nil {
		if errors.Is(err, safety.ErrModelNotReady) {
			// Lifecycle bug, never maskable
			logging.L(ctx).Error("classification requested before model training", "error", err)
			return nil, err
		}

		metrics.InferenceFailuresTotal.Inc()
		logging.L(ctx).Error("inference failed",
			"strategy", p.classifier.Name(),
			"error", err,
		)
		if !p.fallbackOnError {
			return nil, err
		}

		metrics.DegradedAssessmentsTotal.Inc()
		logging.L(ctx).Warn("serving degraded medium-risk assessment after inference failure")
		confidence := 0.5
		return Classified{Result: safety.ClassificationResult{
			Level:      safety.RiskMedium,
			Confidence: &confidence,
		}}, nil
	}

	span.SetAttributes(traces.RiskLevel(string(result.Level)))
	if result.Score != nil {
		span.SetAttributes(traces.RiskScore(*result.Score))
	}
	if result.Confidence != nil {
		span.SetAttributes(traces.Confidence(*result.Confidence))
	}

	return Classified{Result: result}, nil
}

// decide is a pass-through confirmation stage. It exists so a future policy
// layer can veto or override a classification without touching the classify
// stage.
func (p *Pipeline) decide(ctx context.Context, state State) State {
	_, span := traces.StartSpan(ctx, "pipeline.decide")
	defer span.End()
	return state
}

// act composes the final assessment result.
func (p *Pipeline) act(ctx context.Context, state State) *safety.AssessmentResult {
	_, span := traces.StartSpan(ctx, "pipeline.act")
	defer span.End()

	switch s := state.(type) {
	case NeedsClarification:
		metrics.ClarificationsTotal.Inc()
		return p.composer.Clarification(s.Missing)
	case Classified:
		metrics.AssessmentsTotal.WithLabelValues(string(s.Result.Level)).Inc()
		logging.L(ctx).Info("assessment completed",
			"risk_level", s.Result.Level,
			"strategy", p.classifier.Name(),
		)
		return p.composer.Alert(s.Result)
	default:
		// Classification never ran on complete input; compose the
		// unable-to-assess response rather than inventing a level.
		logging.L(ctx).Error("pipeline reached act without a classification")
		return p.composer.Alert(safety.ClassificationResult{})
	}
}
