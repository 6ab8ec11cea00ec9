package model

import (
	"math/rand"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/rules"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
)

const (
	// TrainingSamples is the size of the synthetic training set.
	TrainingSamples = 1000

	// randomSeed fixes the dataset so training is byte-for-byte reproducible.
	randomSeed = 42

	visibilityRange = 10000.0
	speedRange      = 500.0
)

// syntheticDataset draws independent observations uniformly over the
// operating envelope and labels them with the rule engine — the domain
// ground truth the model approximates. Features are normalized by the
// configured scale divisors; weather enters as its ordinal code.
func syntheticDataset(scorer *rules.Scorer, visScale, speedScale float64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(randomSeed))

	X := make([][]float64, TrainingSamples)
	y := make([]int, TrainingSamples)

	for i := 0; i < TrainingSamples; i++ {
		obs := safety.Observation{
			Visibility: rng.Float64() * visibilityRange,
			Speed:      rng.Float64() * speedRange,
			Weather:    safety.Weather(rng.Intn(3)),
		}

		X[i] = []float64{
			obs.Visibility / visScale,
			obs.Speed / speedScale,
			obs.Weather.Ordinal(),
		}
		y[i] = classIndex(scorer.Classify(scorer.Score(obs)))
	}

	return X, y
}

// classIndex maps a risk level to its label-encoding index.
func classIndex(level safety.RiskLevel) int {
	for i, l := range safety.RiskLabels {
		if l == level {
			return i
		}
	}
	return 0
}
