package advisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScaler(t *testing.T) {
	s, err := NewMinMaxScaler(MinMaxParams{
		FeatureNames: []string{FeatureWordNum, FeatureSentenceNum},
		DataMin:      []float64{10, 1},
		DataMax:      []float64{110, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{FeatureWordNum, FeatureSentenceNum}, s.Features())

	got, err := s.Transform([]float64{60, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got[0], 1e-12)
	// zero span behaves as unit span
	assert.InDelta(t, 2.0, got[1], 1e-12)

	got, err = s.Transform([]float64{210, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got[0], 1e-12)

	_, err = s.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}

func TestMinMaxScalerFeatureRange(t *testing.T) {
	s, err := NewMinMaxScaler(MinMaxParams{
		FeatureNames: []string{"x"},
		DataMin:      []float64{0},
		DataMax:      []float64{10},
		FeatureRange: [2]float64{-1, 1},
	})
	require.NoError(t, err)
	got, err := s.Transform([]float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got[0], 1e-12)
}

func TestMinMaxScalerValidation(t *testing.T) {
	_, err := NewMinMaxScaler(MinMaxParams{})
	assert.ErrorIs(t, err, ErrArtifactLoad)
	_, err = NewMinMaxScaler(MinMaxParams{FeatureNames: []string{"x"}, DataMin: []float64{0}})
	assert.ErrorIs(t, err, ErrArtifactLoad)
}

func TestLoadMinMaxScaler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"feature_names":["word_num"],"data_min":[0],"data_max":[4]}`), 0o644))
	s, err := LoadMinMaxScaler(path)
	require.NoError(t, err)
	got, err := s.Transform([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got[0], 1e-12)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = LoadMinMaxScaler(path)
	assert.ErrorIs(t, err, ErrArtifactLoad)
}
