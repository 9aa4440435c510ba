package ml

import (
	"errors"
	"math"
)

// Scaler standardizes feature vectors to zero mean and unit variance,
// column by column.
type Scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func (s *Scaler) Fit(vectors [][]float64) error {
	if len(vectors) == 0 {
		return errors.New("no vectors to fit")
	}
	width := len(vectors[0])
	s.Means = make([]float64, width)
	s.Stds = make([]float64, width)

	for _, vector := range vectors {
		if len(vector) != width {
			return errors.New("inconsistent vector width")
		}
		for i, value := range vector {
			s.Means[i] += value
		}
	}
	n := float64(len(vectors))
	for i := range s.Means {
		s.Means[i] /= n
	}

	for _, vector := range vectors {
		for i, value := range vector {
			diff := value - s.Means[i]
			s.Stds[i] += diff * diff
		}
	}
	for i := range s.Stds {
		s.Stds[i] = math.Sqrt(s.Stds[i] / n)
		// constant columns pass through unscaled
		if s.Stds[i] == 0 {
			s.Stds[i] = 1
		}
	}
	return nil
}

func (s *Scaler) Transform(vector []float64) ([]float64, error) {
	if len(s.Means) == 0 {
		return nil, errors.New("scaler not fitted")
	}
	if len(vector) != len(s.Means) {
		return nil, errors.New("vector width mismatch")
	}
	out := make([]float64, len(vector))
	for i, value := range vector {
		out[i] = (value - s.Means[i]) / s.Stds[i]
	}
	return out, nil
}

func (s *Scaler) FitTransform(vectors [][]float64) ([][]float64, error) {
	if err := s.Fit(vectors); err != nil {
		return nil, err
	}
	out := make([][]float64, len(vectors))
	for i, vector := range vectors {
		scaled, err := s.Transform(vector)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
