package advisor

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var testResponses = []ResponseType{"Closed with explanation", "Closed with monetary relief", "Untimely response"}

// Dispute probabilities the test escalation model assigns per response type.
var testDisputeProbs = []float64{0.3, 0.1, 0.7}

func logit(p float64) float64 { return math.Log(p / (1 - p)) }

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// writeTestArtifacts writes a small, consistent JSON artifact set and returns its config.
func writeTestArtifacts(t *testing.T) ArtifactConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := ArtifactConfig{
		Dir:                  dir,
		Schema:               "schema.json",
		Scaler:               "scaler.json",
		Vectorizer:           "vectorizer.json",
		ProductClassifier:    "product.json",
		EscalationClassifier: "escalation.json",
	}
	schema := FeatureSchema{
		Version:       SchemaVersion,
		TextFeatures:  3,
		Numeric:       DefaultNumericSlots(),
		ResponseTypes: testResponses,
		ProductLabels: []ProductLabel{"Bank account or service", "Mortgage"},
	}
	writeJSON(t, filepath.Join(dir, cfg.Schema), schema)
	writeJSON(t, filepath.Join(dir, cfg.Scaler), MinMaxParams{
		FeatureNames: []string{FeatureWordNum, FeatureSentenceNum},
		DataMin:      []float64{1, 1},
		DataMax:      []float64{201, 21},
	})
	writeJSON(t, filepath.Join(dir, cfg.Vectorizer), TfidfParams{
		Vocabulary: map[string]int{"fee": 0, "refund": 1, "mortgage": 2},
		IDF:        []float64{1, 1.5, 2},
		Norm:       "l2",
		Lowercase:  true,
	})
	writeJSON(t, filepath.Join(dir, cfg.ProductClassifier), LogisticParams{
		Coef:       [][]float64{{2, 1, -3}, {-2, -1, 3}},
		Intercept:  []float64{0, 0},
		MultiClass: "multinomial",
	})
	coef := make([]float64, schema.Width())
	for i, p := range testDisputeProbs {
		coef[schema.TextFeatures+len(schema.Numeric)+i] = logit(p)
	}
	writeJSON(t, filepath.Join(dir, cfg.EscalationClassifier), LogisticParams{
		Coef:      [][]float64{coef},
		Intercept: []float64{0},
	})
	return cfg
}
