package advisor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Classifier returns class probabilities for a dense feature vector.
// Implementations must be safe for concurrent use.
type Classifier interface {
	PredictProba(x []float64) ([]float64, error)
	// InputWidth is the expected feature width, 0 when the model does not declare it.
	InputWidth() int
	// NumClasses is the length of PredictProba's result, 0 when unknown.
	NumClasses() int
}

// argmax returns the first index of the maximum, or -1 for an empty slice.
func argmax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// LogisticParams is the exported state of a fitted scikit-learn LogisticRegression.
type LogisticParams struct {
	Coef       [][]float64 `json:"coef"`
	Intercept  []float64   `json:"intercept"`
	MultiClass string      `json:"multi_class"`
	Classes    []string    `json:"classes,omitempty"`
}

// LogisticRegression evaluates a linear model exported as JSON coefficients.
type LogisticRegression struct {
	params LogisticParams
	width  int
}

// NewLogisticRegression validates params.
func NewLogisticRegression(params LogisticParams) (*LogisticRegression, error) {
	if len(params.Coef) == 0 {
		return nil, fmt.Errorf("%w: logistic regression has no coefficients", ErrArtifactLoad)
	}
	if len(params.Intercept) != len(params.Coef) {
		return nil, fmt.Errorf("%w: logistic regression has %d coefficient rows and %d intercepts", ErrArtifactLoad, len(params.Coef), len(params.Intercept))
	}
	width := len(params.Coef[0])
	for i, row := range params.Coef {
		if len(row) != width {
			return nil, fmt.Errorf("%w: coefficient row %d has width %d, want %d", ErrArtifactLoad, i, len(row), width)
		}
	}
	switch params.MultiClass {
	case "", "auto", "ovr", "multinomial":
	default:
		return nil, fmt.Errorf("%w: unsupported multi_class %q", ErrArtifactLoad, params.MultiClass)
	}
	return &LogisticRegression{params: params, width: width}, nil
}

// LoadLogisticRegression reads LogisticParams from a JSON file.
func LoadLogisticRegression(path string) (*LogisticRegression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read classifier: %w", ErrArtifactLoad, err)
	}
	var params LogisticParams
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("%w: decode classifier: %w", ErrArtifactLoad, err)
	}
	return NewLogisticRegression(params)
}

// InputWidth returns the coefficient width.
func (m *LogisticRegression) InputWidth() int { return m.width }

// NumClasses returns 2 for a binary model and the number of rows otherwise.
func (m *LogisticRegression) NumClasses() int {
	if len(m.params.Coef) == 1 {
		return 2
	}
	return len(m.params.Coef)
}

// PredictProba computes class probabilities the way scikit-learn does:
// sigmoid for binary models, normalised per-class sigmoids for "ovr" and
// softmax otherwise. An empty or "auto" multi_class is multinomial, the
// scikit-learn default for multiclass lbfgs models.
func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if len(x) != m.width {
		return nil, fmt.Errorf("%w: classifier expects %d features, got %d", ErrConfigurationMismatch, m.width, len(x))
	}
	scores := make([]float64, len(m.params.Coef))
	for k, row := range m.params.Coef {
		s := m.params.Intercept[k]
		for i, w := range row {
			s += w * x[i]
		}
		scores[k] = s
	}
	if len(scores) == 1 {
		p := sigmoid(scores[0])
		return []float64{1 - p, p}, nil
	}
	if m.params.MultiClass != "ovr" {
		return softmax(scores), nil
	}
	var sum float64
	for k, s := range scores {
		scores[k] = sigmoid(s)
		sum += scores[k]
	}
	for k := range scores {
		scores[k] /= sum
	}
	return scores, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(scores []float64) []float64 {
	peak := math.Inf(-1)
	for _, s := range scores {
		peak = math.Max(peak, s)
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
