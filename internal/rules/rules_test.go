package rules

import (
	"testing"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
)

func obs(vis, speed float64, w safety.Weather) safety.Observation {
	return safety.Observation{Visibility: vis, Speed: speed, Weather: w}
}

func TestScore_KnownScenarios(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name      string
		obs       safety.Observation
		wantScore float64
		wantLevel safety.RiskLevel
	}{
		{
			// 40 (vis<100) + 0 + 0, no multiplier (weather is Clear)
			name:      "very low visibility alone",
			obs:       obs(50, 30, safety.WeatherClear),
			wantScore: 40,
			wantLevel: safety.RiskMedium,
		},
		{
			// 30+20+30 = 80; x1.3 (fog, vis<200); x1.2 (speed>120, vis<500);
			// 124.8 clamps to 100
			name:      "fog at speed in near-zero visibility",
			obs:       obs(150, 130, safety.WeatherFog),
			wantScore: 100,
			wantLevel: safety.RiskHigh,
		},
		{
			name:      "clear day, moderate speed",
			obs:       obs(5000, 60, safety.WeatherClear),
			wantScore: 0,
			wantLevel: safety.RiskLow,
		},
		{
			// 30 + 0 + 15 = 45, no multipliers
			name:      "rain with reduced visibility",
			obs:       obs(400, 70, safety.WeatherRain),
			wantScore: 45,
			wantLevel: safety.RiskMedium,
		},
		{
			// 0 + 20 + 0 = 20; speed multiplier needs vis<500 so does not fire
			name:      "fast but clear and far sight",
			obs:       obs(3000, 130, safety.WeatherClear),
			wantScore: 20,
			wantLevel: safety.RiskLow,
		},
		{
			// 30 + 20 + 0 = 50; x1.2 (speed>120, vis<500) = 60 exactly
			name:      "speed multiplier lands on the High boundary",
			obs:       obs(400, 130, safety.WeatherClear),
			wantScore: 60,
			wantLevel: safety.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := scorer.Assess(tt.obs)
			if score != tt.wantScore {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if level != tt.wantLevel {
				t.Errorf("level = %v, want %v", level, tt.wantLevel)
			}
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		score float64
		want  safety.RiskLevel
	}{
		{0, safety.RiskLow},
		{29.999, safety.RiskLow},
		{30, safety.RiskMedium}, // strict boundary
		{59.999, safety.RiskMedium},
		{60, safety.RiskHigh}, // strict boundary
		{100, safety.RiskHigh},
	}

	for _, tt := range tests {
		if got := scorer.Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestScore_ClampedToRange(t *testing.T) {
	scorer := NewScorer()
	// Worst case: 40+30+30 = 100, x1.3, x1.2 = 156 before clamping
	score := scorer.Score(obs(10, 200, safety.WeatherFog))
	if score != 100 {
		t.Errorf("worst-case score = %v, want clamp to 100", score)
	}

	for vis := 0.0; vis <= 10000; vis += 250 {
		for spd := 0.0; spd <= 500; spd += 25 {
			for _, w := range []safety.Weather{safety.WeatherClear, safety.WeatherRain, safety.WeatherFog} {
				s := scorer.Score(obs(vis, spd, w))
				if s < 0 || s > 100 {
					t.Fatalf("score out of range for vis=%v spd=%v w=%v: %v", vis, spd, w, s)
				}
			}
		}
	}
}

// Decreasing visibility must never decrease the score (speed/weather fixed),
// and increasing speed must never decrease it (visibility/weather fixed).
func TestScore_Monotonic(t *testing.T) {
	scorer := NewScorer()

	for _, w := range []safety.Weather{safety.WeatherClear, safety.WeatherRain, safety.WeatherFog} {
		prev := scorer.Score(obs(10000, 100, w))
		for vis := 9990.0; vis >= 10; vis -= 10 {
			cur := scorer.Score(obs(vis, 100, w))
			if cur < prev {
				t.Fatalf("score decreased as visibility fell: vis=%v w=%v: %v -> %v", vis, w, prev, cur)
			}
			prev = cur
		}

		prev = scorer.Score(obs(1500, 0, w))
		for spd := 5.0; spd <= 500; spd += 5 {
			cur := scorer.Score(obs(1500, spd, w))
			if cur < prev {
				t.Fatalf("score decreased as speed rose: spd=%v w=%v: %v -> %v", spd, w, prev, cur)
			}
			prev = cur
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	scorer := NewScorer()
	o := obs(432.5, 127.3, safety.WeatherRain)
	first := scorer.Score(o)
	for i := 0; i < 100; i++ {
		if got := scorer.Score(o); got != first {
			t.Fatalf("score changed between identical calls: %v vs %v", first, got)
		}
	}
}

func TestWithThresholds(t *testing.T) {
	scorer := NewScorer().WithThresholds(10, 20)
	if got := scorer.Classify(15); got != safety.RiskMedium {
		t.Errorf("custom thresholds ignored: got %v", got)
	}
	if got := scorer.Classify(25); got != safety.RiskHigh {
		t.Errorf("custom thresholds ignored: got %v", got)
	}
}

func TestHeuristicFactors_LiteralConstants(t *testing.T) {
	tests := []struct {
		name string
		obs  safety.Observation
		want safety.ContributingFactors
	}{
		{
			name: "low visibility band",
			obs:  obs(400, 50, safety.WeatherClear),
			want: safety.ContributingFactors{Visibility: 0.4},
		},
		{
			name: "mid visibility band",
			obs:  obs(1500, 50, safety.WeatherClear),
			want: safety.ContributingFactors{Visibility: 0.2},
		},
		{
			name: "high speed",
			obs:  obs(5000, 130, safety.WeatherClear),
			want: safety.ContributingFactors{Speed: 0.3},
		},
		{
			name: "elevated speed",
			obs:  obs(5000, 90, safety.WeatherClear),
			want: safety.ContributingFactors{Speed: 0.15},
		},
		{
			name: "fog",
			obs:  obs(5000, 50, safety.WeatherFog),
			want: safety.ContributingFactors{Weather: 0.3},
		},
		{
			name: "rain",
			obs:  obs(5000, 50, safety.WeatherRain),
			want: safety.ContributingFactors{Weather: 0.15},
		},
		{
			name: "benign conditions",
			obs:  obs(5000, 50, safety.WeatherClear),
			want: safety.ContributingFactors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeuristicFactors(tt.obs)
			if *got != tt.want {
				t.Errorf("factors = %+v, want %+v", *got, tt.want)
			}
		})
	}
}
