package advisor

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClassifier returns the same probabilities for any input of the declared width.
type fixedClassifier struct {
	probs []float64
	width int
}

func (f fixedClassifier) PredictProba(x []float64) ([]float64, error) {
	out := make([]float64, len(f.probs))
	copy(out, f.probs)
	return out, nil
}

func (f fixedClassifier) InputWidth() int { return f.width }
func (f fixedClassifier) NumClasses() int { return len(f.probs) }

func TestArgmaxIsStable(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{0.1, 0.6, 0.3}))
	assert.Equal(t, 0, argmax([]float64{0.4, 0.4, 0.2}))
	assert.Equal(t, -1, argmax(nil))
}

func TestLogisticRegressionBinary(t *testing.T) {
	m, err := NewLogisticRegression(LogisticParams{
		Coef:      [][]float64{{1, -1}},
		Intercept: []float64{0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumClasses())
	assert.Equal(t, 2, m.InputWidth())

	p, err := m.PredictProba([]float64{2, 0})
	require.NoError(t, err)
	want := 1 / (1 + math.Exp(-2))
	assert.InDelta(t, 1-want, p[0], 1e-12)
	assert.InDelta(t, want, p[1], 1e-12)

	_, err = m.PredictProba([]float64{1})
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}

func TestLogisticRegressionMulticlass(t *testing.T) {
	coef := [][]float64{{1}, {0}, {-1}}
	intercept := []float64{0, 0, 0}

	multi, err := NewLogisticRegression(LogisticParams{Coef: coef, Intercept: intercept, MultiClass: "multinomial"})
	require.NoError(t, err)
	p, err := multi.PredictProba([]float64{1})
	require.NoError(t, err)
	sum := math.Exp(1) + 1 + math.Exp(-1)
	assert.InDelta(t, math.Exp(1)/sum, p[0], 1e-12)
	assert.InDelta(t, 1.0, p[0]+p[1]+p[2], 1e-12)

	for _, mode := range []string{"", "auto"} {
		m, err := NewLogisticRegression(LogisticParams{Coef: coef, Intercept: intercept, MultiClass: mode})
		require.NoError(t, err, "multi_class %q", mode)
		q, err := m.PredictProba([]float64{1})
		require.NoError(t, err)
		assert.InDeltaSlice(t, p, q, 1e-12, "multi_class %q", mode)
	}

	ovr, err := NewLogisticRegression(LogisticParams{Coef: coef, Intercept: intercept, MultiClass: "ovr"})
	require.NoError(t, err)
	p, err = ovr.PredictProba([]float64{0})
	require.NoError(t, err)
	for _, v := range p {
		assert.InDelta(t, 1.0/3.0, v, 1e-12)
	}
}

func TestLogisticRegressionKeepsFloat64Precision(t *testing.T) {
	m, err := NewLogisticRegression(LogisticParams{Coef: [][]float64{{1e9}}, Intercept: []float64{-1e8}})
	require.NoError(t, err)
	p, err := m.PredictProba([]float64{0.1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p[1], 1e-6)
}

func TestLogisticRegressionValidation(t *testing.T) {
	_, err := NewLogisticRegression(LogisticParams{})
	assert.ErrorIs(t, err, ErrArtifactLoad)
	_, err = NewLogisticRegression(LogisticParams{Coef: [][]float64{{1}, {1, 2}}, Intercept: []float64{0, 0}})
	assert.ErrorIs(t, err, ErrArtifactLoad)
	_, err = NewLogisticRegression(LogisticParams{Coef: [][]float64{{1}}, Intercept: []float64{0, 1}})
	assert.ErrorIs(t, err, ErrArtifactLoad)
	_, err = NewLogisticRegression(LogisticParams{Coef: [][]float64{{1}}, Intercept: []float64{0}, MultiClass: "crammer_singer"})
	assert.ErrorIs(t, err, ErrArtifactLoad)
}

func TestLoadLogisticRegression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"coef":[[0.5,0.5]],"intercept":[-1]}`), 0o644))
	m, err := LoadLogisticRegression(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.InputWidth())
}

func TestLoadLogisticRegressionAutoIsMultinomial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product.json")
	model := `{"coef":[[1],[0],[-1]],"intercept":[0,0,0],"multi_class":"auto","classes":["a","b","c"]}`
	require.NoError(t, os.WriteFile(path, []byte(model), 0o644))
	m, err := LoadLogisticRegression(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumClasses())

	p, err := m.PredictProba([]float64{1})
	require.NoError(t, err)
	sum := math.Exp(1) + 1 + math.Exp(-1)
	assert.InDelta(t, math.Exp(1)/sum, p[0], 1e-12)
	assert.InDelta(t, 1/sum, p[1], 1e-12)
	assert.InDelta(t, math.Exp(-1)/sum, p[2], 1e-12)
}
