package advisor

import (
	"encoding/json"
	"fmt"
	"os"
)

// SchemaVersion is the feature schema version this build understands.
const SchemaVersion = 1

// NumericSlot is one numeric column of the combined feature vector.
type NumericSlot struct {
	Name string `json:"name"`
	// Scaled marks columns passed through the fitted min-max scaler.
	Scaled bool `json:"scaled"`
}

// FeatureSchema describes the layout of the escalation classifier's input:
// [text features | numeric slots | one-hot response type], plus the label
// order of the product classifier.
type FeatureSchema struct {
	Version       int            `json:"version"`
	TextFeatures  int            `json:"textFeatures"`
	Numeric       []NumericSlot  `json:"numeric"`
	ResponseTypes []ResponseType `json:"responseTypes"`
	ProductLabels []ProductLabel `json:"productLabels"`
}

// DefaultSchema returns a schema with the default numeric slots, response
// types and product labels for the given vocabulary size.
func DefaultSchema(textFeatures int) FeatureSchema {
	return FeatureSchema{
		Version:       SchemaVersion,
		TextFeatures:  textFeatures,
		Numeric:       DefaultNumericSlots(),
		ResponseTypes: DefaultResponseTypes(),
		ProductLabels: DefaultProductLabels(),
	}
}

// LoadSchema reads and validates a schema manifest.
func LoadSchema(path string) (FeatureSchema, error) {
	var s FeatureSchema
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("%w: read schema: %w", ErrArtifactLoad, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: decode schema: %w", ErrArtifactLoad, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the schema for internal consistency.
func (s FeatureSchema) Validate() error {
	if s.Version != SchemaVersion {
		return fmt.Errorf("%w: schema version %d, want %d", ErrArtifactLoad, s.Version, SchemaVersion)
	}
	if s.TextFeatures <= 0 {
		return fmt.Errorf("%w: schema declares %d text features", ErrArtifactLoad, s.TextFeatures)
	}
	if len(s.ResponseTypes) == 0 {
		return fmt.Errorf("%w: schema has no response types", ErrArtifactLoad)
	}
	if len(s.ProductLabels) == 0 {
		return fmt.Errorf("%w: schema has no product labels", ErrArtifactLoad)
	}
	if dup, ok := firstDuplicate(s.ResponseTypes); ok {
		return fmt.Errorf("%w: duplicate response type %q", ErrArtifactLoad, dup)
	}
	names := make([]string, len(s.Numeric))
	for i, slot := range s.Numeric {
		if slot.Name == "" {
			return fmt.Errorf("%w: numeric slot %d has no name", ErrArtifactLoad, i)
		}
		if _, ok := numericValue(SentimentFeatures{}, slot.Name); !ok {
			return fmt.Errorf("%w: unknown numeric feature %q", ErrArtifactLoad, slot.Name)
		}
		names[i] = slot.Name
	}
	if dup, ok := firstDuplicate(names); ok {
		return fmt.Errorf("%w: duplicate numeric feature %q", ErrArtifactLoad, dup)
	}
	return nil
}

// Width is the total length of the combined feature vector.
func (s FeatureSchema) Width() int {
	return s.TextFeatures + len(s.Numeric) + len(s.ResponseTypes)
}

// ScaledNames lists the names of scaled numeric slots in schema order.
func (s FeatureSchema) ScaledNames() []string {
	var out []string
	for _, slot := range s.Numeric {
		if slot.Scaled {
			out = append(out, slot.Name)
		}
	}
	return out
}

// NumericValues returns the numeric block for f with scaled slots passed
// through scaler. scaler may be nil when no slot is scaled.
func (s FeatureSchema) NumericValues(f SentimentFeatures, scaler Scaler) ([]float64, error) {
	out := make([]float64, len(s.Numeric))
	var raw []float64
	var pos []int
	for i, slot := range s.Numeric {
		v, ok := numericValue(f, slot.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown numeric feature %q", ErrConfigurationMismatch, slot.Name)
		}
		out[i] = v
		if slot.Scaled {
			raw = append(raw, v)
			pos = append(pos, i)
		}
	}
	if len(raw) == 0 {
		return out, nil
	}
	if scaler == nil {
		return nil, fmt.Errorf("%w: schema scales %d features but no scaler is loaded", ErrConfigurationMismatch, len(raw))
	}
	scaled, err := scaler.Transform(raw)
	if err != nil {
		return nil, err
	}
	for j, i := range pos {
		out[i] = scaled[j]
	}
	return out, nil
}

func numericValue(f SentimentFeatures, name string) (float64, bool) {
	switch name {
	case FeatureCorpusScoreSum:
		return f.CorpusScoreSum, true
	case FeatureWordNum:
		return float64(f.WordNum), true
	case FeatureSentenceNum:
		return float64(f.SentenceNum), true
	case FeatureNegativeRatio:
		return f.NegativeRatio, true
	case FeatureMostNegativeScore:
		return f.MostNegativeScore, true
	}
	return 0, false
}

func firstDuplicate[T comparable](values []T) (T, bool) {
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	var zero T
	return zero, false
}
