// Package model provides the pre-fitted inference artifacts the segment
// core delegates to: a standard scaler and a k-means cluster assigner.
// Both are plain data loaded from JSON exports of the fitted estimators;
// no fitting happens in this process.
package model

import (
	"fmt"
)

// StandardScaler applies the z-score transform (x - mean) / scale that
// the clusterer's training pipeline used. Fields mirror the fitted
// estimator's parameters, one entry per feature.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform normalizes v in place-order: out[i] = (v[i] - Mean[i]) / Scale[i].
func (s *StandardScaler) Transform(v []float64) ([]float64, error) {
	if len(v) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(v))
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// validate rejects scalers that cannot have come from a real fit.
func (s *StandardScaler) validate(features int) error {
	if len(s.Mean) != features {
		return fmt.Errorf("scaler mean has %d entries, want %d", len(s.Mean), features)
	}
	if len(s.Scale) != features {
		return fmt.Errorf("scaler scale has %d entries, want %d", len(s.Scale), features)
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return fmt.Errorf("scaler scale[%d] is zero", i)
		}
	}
	return nil
}
