package advisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArtifacts(t *testing.T) {
	cfg := writeTestArtifacts(t)
	a, err := LoadArtifacts(cfg, RuntimeConfig{}, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 3, a.Schema.TextFeatures)
	assert.Equal(t, 3, a.Vectorizer.Dim())
	assert.Equal(t, 2, a.Product.NumClasses())
	assert.Equal(t, a.Schema.Width(), a.Escalation.InputWidth())
}

func TestLoadArtifactsMissingFile(t *testing.T) {
	cfg := writeTestArtifacts(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Dir, cfg.Vectorizer)))
	_, err := LoadArtifacts(cfg, RuntimeConfig{}, nil)
	assert.ErrorIs(t, err, ErrArtifactLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadArtifactsUnsupportedFormat(t *testing.T) {
	cfg := writeTestArtifacts(t)
	cfg.ProductClassifier = "product.sav"
	_, err := LoadArtifacts(cfg, RuntimeConfig{}, nil)
	assert.ErrorIs(t, err, ErrArtifactLoad)
}

func TestLoadArtifactsEscalationWidthMismatch(t *testing.T) {
	cfg := writeTestArtifacts(t)
	writeJSON(t, filepath.Join(cfg.Dir, cfg.EscalationClassifier), LogisticParams{
		Coef:      [][]float64{make([]float64, 9)},
		Intercept: []float64{0},
	})
	_, err := LoadArtifacts(cfg, RuntimeConfig{}, nil)
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}

func TestArtifactsValidate(t *testing.T) {
	base := func() *Artifacts {
		v, err := NewTfidfVectorizer(TfidfParams{Vocabulary: map[string]int{"a": 0, "b": 1}, IDF: []float64{1, 1}})
		require.NoError(t, err)
		sc, err := NewMinMaxScaler(MinMaxParams{
			FeatureNames: []string{FeatureWordNum, FeatureSentenceNum},
			DataMin:      []float64{0, 0},
			DataMax:      []float64{1, 1},
		})
		require.NoError(t, err)
		s := DefaultSchema(2)
		s.ProductLabels = []ProductLabel{"X", "Y"}
		return &Artifacts{
			Schema:     s,
			Scaler:     sc,
			Vectorizer: v,
			Product:    fixedClassifier{probs: []float64{0.5, 0.5}, width: 2},
			Escalation: fixedClassifier{probs: []float64{0.5, 0.5}, width: s.Width()},
		}
	}
	require.NoError(t, base().Validate())

	a := base()
	a.Schema.TextFeatures = 3
	assert.ErrorIs(t, a.Validate(), ErrArtifactLoad)

	a = base()
	a.Product = fixedClassifier{probs: []float64{1}, width: 2}
	assert.ErrorIs(t, a.Validate(), ErrArtifactLoad)

	a = base()
	a.Escalation = fixedClassifier{probs: []float64{0.2, 0.3, 0.5}}
	assert.ErrorIs(t, a.Validate(), ErrArtifactLoad)

	a = base()
	a.Schema.Numeric = []NumericSlot{{Name: FeatureWordNum, Scaled: true}}
	a.Escalation = fixedClassifier{probs: []float64{0.5, 0.5}}
	assert.ErrorIs(t, a.Validate(), ErrConfigurationMismatch)

	a = base()
	a.Scaler = nil
	assert.ErrorIs(t, a.Validate(), ErrConfigurationMismatch)
}
