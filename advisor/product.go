package advisor

import "fmt"

// ProductClassifier maps a text vector to a product label.
type ProductClassifier struct {
	clf    Classifier
	labels []ProductLabel
}

// NewProductClassifier pairs a classifier with its label order.
func NewProductClassifier(clf Classifier, labels []ProductLabel) *ProductClassifier {
	return &ProductClassifier{clf: clf, labels: labels}
}

// Classify returns the most probable product (first maximum wins) and the
// full probability vector.
func (p *ProductClassifier) Classify(text SparseVector) (ProductLabel, []float64, error) {
	probs, err := p.clf.PredictProba(text.Dense())
	if err != nil {
		return "", nil, fmt.Errorf("product classifier: %w", err)
	}
	if len(probs) != len(p.labels) {
		return "", nil, fmt.Errorf("%w: product classifier returned %d classes for %d labels", ErrConfigurationMismatch, len(probs), len(p.labels))
	}
	idx := argmax(probs)
	if idx < 0 {
		return "", nil, fmt.Errorf("%w: product classifier returned no probabilities", ErrConfigurationMismatch)
	}
	return p.labels[idx], probs, nil
}
