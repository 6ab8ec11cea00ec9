package model

import "math"

// standardScaler normalizes features to zero mean and unit variance. The
// statistics are fit once on the synthetic training set and retained so
// inference applies the identical transform.
type standardScaler struct {
	mean []float64
	std  []float64
}

func (s *standardScaler) fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	n := float64(len(X))
	cols := len(X[0])
	s.mean = make([]float64, cols)
	s.std = make([]float64, cols)

	for _, row := range X {
		for j, v := range row {
			s.mean[j] += v
		}
	}
	for j := range s.mean {
		s.mean[j] /= n
	}

	for _, row := range X {
		for j, v := range row {
			d := v - s.mean[j]
			s.std[j] += d * d
		}
	}
	for j := range s.std {
		s.std[j] = math.Sqrt(s.std[j] / n)
		// Constant columns pass through unscaled
		if s.std[j] == 0 {
			s.std[j] = 1
		}
	}
}

func (s *standardScaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out
}

func (s *standardScaler) transformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.transform(row)
	}
	return out
}
