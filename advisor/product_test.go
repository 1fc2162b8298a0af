package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductClassify(t *testing.T) {
	p := NewProductClassifier(fixedClassifier{probs: []float64{0.1, 0.6, 0.3}}, []ProductLabel{"A", "B", "C"})
	label, probs, err := p.Classify(SparseVector{Dim: 2})
	require.NoError(t, err)
	assert.Equal(t, ProductLabel("B"), label)
	assert.Equal(t, []float64{0.1, 0.6, 0.3}, probs)
}

func TestProductClassifyTieTakesFirst(t *testing.T) {
	p := NewProductClassifier(fixedClassifier{probs: []float64{0.2, 0.4, 0.4}}, []ProductLabel{"A", "B", "C"})
	label, _, err := p.Classify(SparseVector{Dim: 2})
	require.NoError(t, err)
	assert.Equal(t, ProductLabel("B"), label)
}

func TestProductClassifyLabelMismatch(t *testing.T) {
	p := NewProductClassifier(fixedClassifier{probs: []float64{0.5, 0.5}}, []ProductLabel{"A", "B", "C"})
	_, _, err := p.Classify(SparseVector{Dim: 2})
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}
