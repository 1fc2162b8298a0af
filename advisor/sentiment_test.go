package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedScorer returns a fixed score per sentence, 0 for unknown sentences.
type scriptedScorer map[string]float64

func (s scriptedScorer) Compound(sentence string) float64 { return s[sentence] }

type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(text string) []string { return strings.Fields(text) }

func TestExtractFeatures(t *testing.T) {
	scorer := scriptedScorer{
		"The fee was unfair.":    -0.5,
		"I called twice.":        0.0,
		"They finally refunded.": 0.4,
	}
	e := NewExtractor(scorer, fieldsTokenizer{})
	f, err := e.Extract("The fee was unfair. I called twice. They finally refunded.")
	require.NoError(t, err)
	assert.Equal(t, 3, f.SentenceNum)
	assert.Equal(t, 10, f.WordNum)
	assert.InDelta(t, -0.1, f.CorpusScoreSum, 1e-9)
	assert.InDelta(t, 1.0/3.0, f.NegativeRatio, 1e-9)
	assert.Equal(t, -0.5, f.MostNegativeScore)
}

func TestExtractThresholdIsStrict(t *testing.T) {
	e := NewExtractor(scriptedScorer{"Meh.": -0.05}, fieldsTokenizer{})
	f, err := e.Extract("Meh.")
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.NegativeRatio)
	assert.Equal(t, -0.05, f.MostNegativeScore)
}

func TestExtractAllPositiveKeepsMostNegativeAtZero(t *testing.T) {
	e := NewExtractor(scriptedScorer{"Great help.": 0.6, "Thanks.": 0.3}, fieldsTokenizer{})
	f, err := e.Extract("Great help. Thanks.")
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.MostNegativeScore)
	assert.Equal(t, 0.0, f.NegativeRatio)
}

func TestExtractRejectsEmpty(t *testing.T) {
	e := NewExtractor(scriptedScorer{}, fieldsTokenizer{})
	for _, in := range []string{"", "   \n\t "} {
		_, err := e.Extract(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", in)
	}
	_, err := e.Extract("bad \xff byte.")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVaderScorerScoresComplaintVocabulary(t *testing.T) {
	v := NewVaderScorer()
	assert.Less(t, v.Compound("This is unacceptable."), NegativeSentenceThreshold)
	assert.Less(t, v.Compound("I am furious."), NegativeSentenceThreshold)
	assert.Greater(t, v.Compound("The agent was very helpful."), 0.0)
	assert.Equal(t, 0.0, v.Compound("I called on Monday."))
}

func TestExtractWithDefaultExtractor(t *testing.T) {
	e := NewDefaultExtractor()
	f, err := e.Extract("This is unacceptable and I am furious.")
	require.NoError(t, err)
	assert.Equal(t, 1, f.SentenceNum)
	assert.Equal(t, 8, f.WordNum)
	assert.Equal(t, 1.0, f.NegativeRatio)
	assert.Less(t, f.MostNegativeScore, -0.5)
	assert.Equal(t, f.MostNegativeScore, f.CorpusScoreSum)

	f, err = e.Extract("Mr. Smith at the bank called me. He was rude.")
	require.NoError(t, err)
	assert.Equal(t, 2, f.SentenceNum)
	assert.GreaterOrEqual(t, f.MostNegativeScore, -1.0)
}

func TestNarrativeToRecommendation(t *testing.T) {
	f, err := NewDefaultExtractor().Extract("terrible service, never again. I called on Monday.")
	require.NoError(t, err)
	assert.Equal(t, 2, f.SentenceNum)
	assert.Equal(t, 11, f.WordNum)
	assert.Equal(t, 0.5, f.NegativeRatio)
	assert.InDelta(t, -0.6, f.MostNegativeScore, 0.1)
	assert.InDelta(t, f.MostNegativeScore, f.CorpusScoreSum, 1e-12)

	schema := smallSchema()
	scaler, err := NewMinMaxScaler(MinMaxParams{
		FeatureNames: []string{FeatureWordNum},
		DataMin:      []float64{0},
		DataMax:      []float64{20},
	})
	require.NoError(t, err)
	numeric, err := schema.NumericValues(f, scaler)
	require.NoError(t, err)

	clf := &responseClassifier{offset: 5, probs: []float64{0.1, 0.6, 0.2}}
	table, rec, err := NewEscalationPredictor(clf, schema, nil).Predict(SparseVector{Dim: 3}, numeric)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.6, 0.2}, table.Probabilities())
	assert.Equal(t, ResponseType("C"), rec)

	require.Len(t, clf.seen, 3)
	assert.Equal(t, f.CorpusScoreSum, clf.seen[0][3])
	assert.InDelta(t, 0.55, clf.seen[0][4], 1e-12)
}

func TestExtractAllKeepsOrder(t *testing.T) {
	scorer := scriptedScorer{"Bad.": -0.6, "Good.": 0.6}
	e := NewExtractor(scorer, fieldsTokenizer{})
	inputs := []string{"Bad.", "", "Good. Bad.", "Good."}
	res, err := e.ExtractAll(context.Background(), inputs, 2)
	require.NoError(t, err)
	require.Len(t, res, 4)
	assert.Equal(t, 1, res[0].Features.SentenceNum)
	assert.Equal(t, -0.6, res[0].Features.MostNegativeScore)
	assert.ErrorIs(t, res[1].Err, ErrInvalidInput)
	assert.Equal(t, 2, res[2].Features.SentenceNum)
	assert.Equal(t, 0.5, res[2].Features.NegativeRatio)
	assert.Equal(t, 0.0, res[3].Features.MostNegativeScore)
}

func TestExtractAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewExtractor(scriptedScorer{}, fieldsTokenizer{})
	_, err := e.ExtractAll(ctx, []string{"One."}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
