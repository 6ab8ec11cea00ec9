package model

import "math"

// Multinomial logistic regression fit by batch gradient descent. Weights
// start at zero, so training is deterministic for a fixed dataset.
type logisticRegression struct {
	numClasses   int
	numFeatures  int
	learningRate float64
	iterations   int

	weights [][]float64 // [class][feature]
	bias    []float64
}

func newLogisticRegression(numFeatures, numClasses int) *logisticRegression {
	weights := make([][]float64, numClasses)
	for c := range weights {
		weights[c] = make([]float64, numFeatures)
	}
	return &logisticRegression{
		numClasses:   numClasses,
		numFeatures:  numFeatures,
		learningRate: 0.1,
		iterations:   1000,
		weights:      weights,
		bias:         make([]float64, numClasses),
	}
}

func (lr *logisticRegression) fit(X [][]float64, y []int) {
	n := len(X)
	if n == 0 {
		return
	}

	gradW := make([][]float64, lr.numClasses)
	for c := range gradW {
		gradW[c] = make([]float64, lr.numFeatures)
	}
	gradB := make([]float64, lr.numClasses)

	for it := 0; it < lr.iterations; it++ {
		for c := range gradW {
			for f := range gradW[c] {
				gradW[c][f] = 0
			}
			gradB[c] = 0
		}

		for i, x := range X {
			probs := lr.softmax(x)
			for c := 0; c < lr.numClasses; c++ {
				// d(cross-entropy)/d(logit_c) = p_c - [y == c]
				delta := probs[c]
				if y[i] == c {
					delta -= 1
				}
				for f, v := range x {
					gradW[c][f] += delta * v
				}
				gradB[c] += delta
			}
		}

		step := lr.learningRate / float64(n)
		for c := 0; c < lr.numClasses; c++ {
			for f := 0; f < lr.numFeatures; f++ {
				lr.weights[c][f] -= step * gradW[c][f]
			}
			lr.bias[c] -= step * gradB[c]
		}
	}
}

func (lr *logisticRegression) predict(x []float64) (int, []float64) {
	probs := lr.softmax(x)
	best := 0
	for c, p := range probs {
		if p > probs[best] {
			best = c
		}
	}
	return best, probs
}

// importances reports the mean absolute coefficient per feature across
// classes.
func (lr *logisticRegression) importances() []float64 {
	out := make([]float64, lr.numFeatures)
	for f := 0; f < lr.numFeatures; f++ {
		sum := 0.0
		for c := 0; c < lr.numClasses; c++ {
			sum += math.Abs(lr.weights[c][f])
		}
		out[f] = sum / float64(lr.numClasses)
	}
	return out
}

func (lr *logisticRegression) softmax(x []float64) []float64 {
	logits := make([]float64, lr.numClasses)
	maxLogit := math.Inf(-1)
	for c := 0; c < lr.numClasses; c++ {
		z := lr.bias[c]
		for f, v := range x {
			z += lr.weights[c][f] * v
		}
		logits[c] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	sum := 0.0
	for c, z := range logits {
		logits[c] = math.Exp(z - maxLogit)
		sum += logits[c]
	}
	for c := range logits {
		logits[c] /= sum
	}
	return logits
}
