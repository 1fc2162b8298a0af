package advisor

import (
	"fmt"
	"log/slog"
	"math"
)

const (
	// EscalationThreshold is the probability at which a response is expected to be disputed.
	EscalationThreshold = 0.5
	// SelectionMargin keeps the recommendation this far below EscalationThreshold.
	SelectionMargin = 0.15
)

// EscalationPredictor scores every response type for one narrative.
type EscalationPredictor struct {
	clf    Classifier
	schema FeatureSchema
	logger *slog.Logger
}

// NewEscalationPredictor pairs the escalation classifier with its schema.
func NewEscalationPredictor(clf Classifier, schema FeatureSchema, logger *slog.Logger) *EscalationPredictor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EscalationPredictor{clf: clf, schema: schema, logger: logger}
}

// CombinedVector lays out [text | numeric | one-hot(response)] in a new slice.
func (p *EscalationPredictor) CombinedVector(text SparseVector, numeric []float64, response int) ([]float64, error) {
	s := p.schema
	if text.Dim != s.TextFeatures {
		return nil, fmt.Errorf("%w: text vector has %d features, schema declares %d", ErrConfigurationMismatch, text.Dim, s.TextFeatures)
	}
	if len(numeric) != len(s.Numeric) {
		return nil, fmt.Errorf("%w: got %d numeric features, schema declares %d", ErrConfigurationMismatch, len(numeric), len(s.Numeric))
	}
	if response < 0 || response >= len(s.ResponseTypes) {
		return nil, fmt.Errorf("%w: response index %d out of range", ErrConfigurationMismatch, response)
	}
	x := make([]float64, s.Width())
	text.scatter(x[:s.TextFeatures])
	off := s.TextFeatures
	copy(x[off:], numeric)
	x[off+len(numeric)+response] = 1
	return x, nil
}

// Predict returns P(dispute | response) for every response type in schema
// order together with the recommended response.
func (p *EscalationPredictor) Predict(text SparseVector, numeric []float64) (ProbabilityTable, ResponseType, error) {
	table := make(ProbabilityTable, len(p.schema.ResponseTypes))
	for i, r := range p.schema.ResponseTypes {
		x, err := p.CombinedVector(text, numeric, i)
		if err != nil {
			return nil, "", err
		}
		probs, err := p.clf.PredictProba(x)
		if err != nil {
			return nil, "", fmt.Errorf("escalation classifier for %q: %w", r, err)
		}
		if len(probs) != 2 {
			return nil, "", fmt.Errorf("%w: escalation classifier returned %d classes, want 2", ErrConfigurationMismatch, len(probs))
		}
		prob := probs[1]
		if math.IsNaN(prob) || prob < 0 || prob > 1 {
			return nil, "", fmt.Errorf("%w: escalation probability %v for %q outside [0,1]", ErrConfigurationMismatch, prob, r)
		}
		table[i] = ResponseProbability{Response: r, Probability: prob, Escalates: prob >= EscalationThreshold}
		p.logger.Debug("escalation probability", "response", r, "probability", prob, "escalates", table[i].Escalates)
	}
	idx := SelectResponse(table.Probabilities())
	return table, table[idx].Response, nil
}

// SelectResponse picks the response index to recommend. It starts from the
// global minimum and then, scanning in order, moves to any probability that is
// below EscalationThreshold-SelectionMargin and above the current pick. The
// result is the highest probability under the margin when one exists and the
// first global minimum otherwise. It returns -1 for an empty slice.
func SelectResponse(probs []float64) int {
	if len(probs) == 0 {
		return -1
	}
	margin := EscalationThreshold - SelectionMargin
	idx := 0
	minProb := probs[0]
	for i, p := range probs {
		if p < minProb {
			minProb, idx = p, i
		}
	}
	for i, p := range probs {
		if p < margin && p > minProb {
			minProb, idx = p, i
		}
	}
	return idx
}
