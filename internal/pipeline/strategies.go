package pipeline

import (
	"context"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/model"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/rules"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
)

// RuleBased classifies with the deterministic scoring engine. It reports
// the numeric score and heuristic factor attributions; confidence is not
// meaningful for a deterministic rule table and stays unset.
type RuleBased struct {
	scorer *rules.Scorer
}

// NewRuleBased creates the rule-based strategy.
func NewRuleBased(scorer *rules.Scorer) *RuleBased {
	return &RuleBased{scorer: scorer}
}

func (r *RuleBased) Name() string { return "rule_based" }

func (r *RuleBased) Classify(_ context.Context, obs safety.Observation) (safety.ClassificationResult, error) {
	score := r.scorer.Score(obs)
	return safety.ClassificationResult{
		Level:   r.scorer.Classify(score),
		Score:   &score,
		Factors: rules.HeuristicFactors(obs),
	}, nil
}

// Statistical classifies with the trained model. It reports the predicted
// class probability as confidence and importance-weighted attributions;
// there is no numeric score on this path.
type Statistical struct {
	model *model.Model
}

// NewStatistical creates the statistical strategy. The model may still be
// untrained; classification fails with safety.ErrModelNotReady until Fit
// completes.
func NewStatistical(m *model.Model) *Statistical {
	return &Statistical{model: m}
}

func (s *Statistical) Name() string { return "statistical" }

func (s *Statistical) Classify(_ context.Context, obs safety.Observation) (safety.ClassificationResult, error) {
	level, confidence, factors, err := s.model.Predict(obs)
	if err != nil {
		return safety.ClassificationResult{}, err
	}
	return safety.ClassificationResult{
		Level:      level,
		Confidence: &confidence,
		Factors:    factors,
	}, nil
}
