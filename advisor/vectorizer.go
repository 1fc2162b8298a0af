package advisor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

// SparseVector is a sparse float vector with ascending Indices.
type SparseVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// Dense expands the vector into a freshly allocated slice of length Dim.
func (v SparseVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	v.scatter(out)
	return out
}

func (v SparseVector) scatter(dst []float64) {
	for i, idx := range v.Indices {
		dst[idx] = v.Values[i]
	}
}

// Vectorizer maps preprocessed text onto a fixed-width feature space.
type Vectorizer interface {
	Transform(text string) SparseVector
	Dim() int
}

// TfidfParams is the exported state of a fitted TF-IDF vectorizer.
type TfidfParams struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramRange  [2]int         `json:"ngram_range"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	Lowercase   bool           `json:"lowercase"`
}

var tfidfTokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TfidfVectorizer reproduces a fitted scikit-learn TfidfVectorizer (word analyzer).
type TfidfVectorizer struct {
	params TfidfParams
}

// NewTfidfVectorizer validates params and returns a vectorizer.
func NewTfidfVectorizer(params TfidfParams) (*TfidfVectorizer, error) {
	if len(params.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: tfidf vocabulary is empty", ErrArtifactLoad)
	}
	if len(params.IDF) != len(params.Vocabulary) {
		return nil, fmt.Errorf("%w: tfidf idf has %d weights for %d terms", ErrArtifactLoad, len(params.IDF), len(params.Vocabulary))
	}
	for term, idx := range params.Vocabulary {
		if idx < 0 || idx >= len(params.IDF) {
			return nil, fmt.Errorf("%w: tfidf term %q has index %d out of range", ErrArtifactLoad, term, idx)
		}
	}
	if params.NgramRange == [2]int{} {
		params.NgramRange = [2]int{1, 1}
	}
	if params.NgramRange[0] < 1 || params.NgramRange[1] < params.NgramRange[0] {
		return nil, fmt.Errorf("%w: invalid ngram range %v", ErrArtifactLoad, params.NgramRange)
	}
	switch params.Norm {
	case "", "l1", "l2", "none":
	default:
		return nil, fmt.Errorf("%w: unsupported tfidf norm %q", ErrArtifactLoad, params.Norm)
	}
	return &TfidfVectorizer{params: params}, nil
}

// LoadTfidfVectorizer reads TfidfParams from a JSON file.
func LoadTfidfVectorizer(path string) (*TfidfVectorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read vectorizer: %w", ErrArtifactLoad, err)
	}
	var params TfidfParams
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("%w: decode vectorizer: %w", ErrArtifactLoad, err)
	}
	return NewTfidfVectorizer(params)
}

// Dim returns the vocabulary size.
func (v *TfidfVectorizer) Dim() int {
	return len(v.params.IDF)
}

// Transform returns the TF-IDF weights of text. Out-of-vocabulary terms are ignored.
func (v *TfidfVectorizer) Transform(text string) SparseVector {
	if v.params.Lowercase {
		text = strings.ToLower(text)
	}
	tokens := tfidfTokenPattern.FindAllString(text, -1)
	counts := make(map[int]float64)
	for n := v.params.NgramRange[0]; n <= v.params.NgramRange[1]; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if idx, ok := v.params.Vocabulary[strings.Join(tokens[i:i+n], " ")]; ok {
				counts[idx]++
			}
		}
	}
	out := SparseVector{Dim: v.Dim()}
	if len(counts) == 0 {
		return out
	}
	out.Indices = make([]int, 0, len(counts))
	for idx := range counts {
		out.Indices = append(out.Indices, idx)
	}
	sort.Ints(out.Indices)

	weights := make([]float64, len(out.Indices))
	var norm float64
	for i, idx := range out.Indices {
		tf := counts[idx]
		if v.params.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.params.IDF[idx]
		weights[i] = w
		switch v.params.Norm {
		case "", "l2":
			norm += w * w
		case "l1":
			norm += math.Abs(w)
		}
	}
	if v.params.Norm == "" || v.params.Norm == "l2" {
		norm = math.Sqrt(norm)
	}
	if norm > 0 {
		for i := range weights {
			weights[i] /= norm
		}
	}
	out.Values = weights
	return out
}
