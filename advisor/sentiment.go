package advisor

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jonreiter/govader"
	"golang.org/x/sync/errgroup"
)

// NegativeSentenceThreshold is the compound score below which a sentence counts as negative.
const NegativeSentenceThreshold = -0.05

// SentimentScorer returns a compound polarity score in [-1, 1] for one sentence.
type SentimentScorer interface {
	Compound(sentence string) float64
}

// Extractor computes SentimentFeatures for narratives. It is stateless after
// construction and safe for concurrent use.
type Extractor struct {
	scorer    SentimentScorer
	tokenizer WordTokenizer
}

// NewExtractor wires a scorer and word tokenizer into an extractor.
func NewExtractor(scorer SentimentScorer, tokenizer WordTokenizer) *Extractor {
	return &Extractor{scorer: scorer, tokenizer: tokenizer}
}

// VaderScorer scores sentences with VADER and its full built-in lexicon.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer loads the VADER lexicons.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the normalised VADER compound score of sentence.
func (v *VaderScorer) Compound(sentence string) float64 {
	return v.analyzer.PolarityScores(sentence).Compound
}

// NewDefaultExtractor builds the VADER + Penn Treebank extractor.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(NewVaderScorer(), NewTreebankWordTokenizer())
}

// Extract computes the sentiment features of one narrative.
func (e *Extractor) Extract(narrative string) (SentimentFeatures, error) {
	var f SentimentFeatures
	if !utf8.ValidString(narrative) {
		return f, fmt.Errorf("%w: narrative is not valid UTF-8", ErrInvalidInput)
	}
	sents := SplitSentences(narrative)
	if len(sents) == 0 {
		return f, fmt.Errorf("%w: narrative has no sentences", ErrInvalidInput)
	}
	negatives := 0
	for _, sent := range sents {
		score := e.scorer.Compound(sent)
		f.CorpusScoreSum += score
		f.WordNum += len(e.tokenizer.Tokenize(sent))
		if score < NegativeSentenceThreshold {
			negatives++
		}
		if score < f.MostNegativeScore {
			f.MostNegativeScore = score
		}
	}
	f.SentenceNum = len(sents)
	f.NegativeRatio = float64(negatives) / float64(f.SentenceNum)
	return f, nil
}

// FeatureResult pairs the features of one narrative with its extraction error.
type FeatureResult struct {
	Features SentimentFeatures
	Err      error
}

// ExtractAll extracts features for every narrative using at most workers
// goroutines. Results keep input order; per-row failures are reported in
// FeatureResult.Err. The returned error is non-nil only when ctx is done.
func (e *Extractor) ExtractAll(ctx context.Context, narratives []string, workers int) ([]FeatureResult, error) {
	results := make([]FeatureResult, len(narratives))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, narrative := range narratives {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := e.Extract(narrative)
			results[i] = FeatureResult{Features: f, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
