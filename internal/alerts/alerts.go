// Package alerts composes operator-facing alert messages and
// recommendations from classification results.
package alerts

import (
	"fmt"
	"strings"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
)

// Fixed alert catalogue keyed by risk level.
const (
	lowAlert          = "✅ SAFE OPERATING CONDITIONS DETECTED"
	lowRecommendation = "Current operational parameters indicate safe conditions. " +
		"Maintain normal operations with standard vigilance. " +
		"Continue monitoring visibility, speed, and weather conditions."

	mediumAlert          = "⚠️ CAUTION ALERT: ELEVATED RISK CONDITIONS"
	mediumRecommendation = "Moderate risk detected. Recommended actions:\n" +
		"- Reduce train speed by 20-30 km/h\n" +
		"- Increase alertness and monitoring\n" +
		"- Notify control room of current conditions\n" +
		"- Prepare for potential further speed reduction if conditions worsen"

	highAlert          = "🚨 EMERGENCY WARNING: HIGH RISK CONDITIONS"
	highRecommendation = "HIGH RISK detected. IMMEDIATE ACTION REQUIRED:\n" +
		"- Reduce speed immediately to safe operational limits (≤60 km/h recommended)\n" +
		"- Alert control room and dispatch immediately\n" +
		"- Increase crew alertness to maximum level\n" +
		"- Consider temporary halt if visibility drops below 100m\n" +
		"- Activate emergency protocols if conditions deteriorate further"
)

// factorReportThreshold hides factors contributing 10% or less from the
// explanation block.
const factorReportThreshold = 0.1

// Composer builds the final AssessmentResult from a pipeline outcome.
type Composer struct{}

// NewComposer creates an alert composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Clarification composes the response for an assessment that stopped on
// missing inputs. The risk level is left unset.
func (c *Composer) Clarification(missing []string) *safety.AssessmentResult {
	joined := strings.Join(missing, ", ")
	return &safety.AssessmentResult{
		AlertMessage: fmt.Sprintf(
			"Missing required safety parameters: %s. Please provide the missing information to proceed with risk assessment.",
			joined),
		Recommendation: fmt.Sprintf("Please provide the following parameter(s): %s", joined),
		MissingInputs:  missing,
	}
}

// Alert composes the response for a completed classification, appending the
// contributing-factors block when attributions are available.
func (c *Composer) Alert(result safety.ClassificationResult) *safety.AssessmentResult {
	out := &safety.AssessmentResult{
		RiskLevel:  result.Level,
		Confidence: result.Confidence,
		Factors:    result.Factors,
	}

	switch result.Level {
	case safety.RiskLow:
		out.AlertMessage = lowAlert
		out.Recommendation = lowRecommendation
	case safety.RiskMedium:
		out.AlertMessage = mediumAlert
		out.Recommendation = mediumRecommendation
	case safety.RiskHigh:
		out.AlertMessage = highAlert
		out.Recommendation = highRecommendation
	default:
		out.AlertMessage = "Unable to assess risk. Please check inputs."
		out.Recommendation = "Verify all parameters are correct."
		return out
	}

	if result.Factors != nil {
		out.Recommendation += "\n\nContributing Factors:\n" + formatFactors(*result.Factors)
	}

	return out
}

// formatFactors lists factors above the report threshold as percentages.
func formatFactors(factors safety.ContributingFactors) string {
	var lines []string
	if factors.Visibility > factorReportThreshold {
		lines = append(lines, fmt.Sprintf("- Visibility: %.1f%% contribution", factors.Visibility*100))
	}
	if factors.Speed > factorReportThreshold {
		lines = append(lines, fmt.Sprintf("- Speed: %.1f%% contribution", factors.Speed*100))
	}
	if factors.Weather > factorReportThreshold {
		lines = append(lines, fmt.Sprintf("- Weather: %.1f%% contribution", factors.Weather*100))
	}

	if len(lines) == 0 {
		return "All factors contribute equally"
	}
	return strings.Join(lines, "\n")
}
