package advisor

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scaler transforms the numeric features it was fitted on.
type Scaler interface {
	// Features lists the fitted feature names in column order.
	Features() []string
	Transform(values []float64) ([]float64, error)
}

// MinMaxParams is the exported state of a fitted scikit-learn MinMaxScaler.
type MinMaxParams struct {
	FeatureNames []string   `json:"feature_names"`
	DataMin      []float64  `json:"data_min"`
	DataMax      []float64  `json:"data_max"`
	FeatureRange [2]float64 `json:"feature_range"`
}

// MinMaxScaler maps each feature linearly from [DataMin, DataMax] onto FeatureRange.
// Values outside the fitted range extrapolate; they are not clipped.
type MinMaxScaler struct {
	names []string
	scale []float64
	min   []float64
}

// NewMinMaxScaler validates params and precomputes the affine transform.
func NewMinMaxScaler(params MinMaxParams) (*MinMaxScaler, error) {
	n := len(params.FeatureNames)
	if n == 0 {
		return nil, fmt.Errorf("%w: scaler has no features", ErrArtifactLoad)
	}
	if len(params.DataMin) != n || len(params.DataMax) != n {
		return nil, fmt.Errorf("%w: scaler has %d names, %d minima, %d maxima", ErrArtifactLoad, n, len(params.DataMin), len(params.DataMax))
	}
	fr := params.FeatureRange
	if fr == [2]float64{} {
		fr = [2]float64{0, 1}
	}
	if fr[0] >= fr[1] {
		return nil, fmt.Errorf("%w: invalid scaler feature range %v", ErrArtifactLoad, fr)
	}
	s := &MinMaxScaler{
		names: cloneStrings(params.FeatureNames),
		scale: make([]float64, n),
		min:   make([]float64, n),
	}
	for i := range n {
		span := params.DataMax[i] - params.DataMin[i]
		if span == 0 {
			span = 1
		}
		s.scale[i] = (fr[1] - fr[0]) / span
		s.min[i] = fr[0] - params.DataMin[i]*s.scale[i]
	}
	return s, nil
}

// LoadMinMaxScaler reads MinMaxParams from a JSON file.
func LoadMinMaxScaler(path string) (*MinMaxScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read scaler: %w", ErrArtifactLoad, err)
	}
	var params MinMaxParams
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("%w: decode scaler: %w", ErrArtifactLoad, err)
	}
	return NewMinMaxScaler(params)
}

// Features returns the fitted feature names.
func (s *MinMaxScaler) Features() []string {
	return cloneStrings(s.names)
}

// Transform scales values, which must be in Features order.
func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.scale) {
		return nil, fmt.Errorf("%w: scaler expects %d values, got %d", ErrConfigurationMismatch, len(s.scale), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*s.scale[i] + s.min[i]
	}
	return out, nil
}
