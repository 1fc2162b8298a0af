package advisor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"yashubustudio/advisor/ort"
)

// Artifacts bundles the trained models. They are read-only after load and
// may be shared between goroutines.
type Artifacts struct {
	Schema     FeatureSchema
	Scaler     Scaler
	Vectorizer Vectorizer
	Product    Classifier
	Escalation Classifier

	closers []io.Closer
}

// LoadArtifacts reads every artifact named in cfg and validates them against
// the schema. Any failure releases what was already opened.
func LoadArtifacts(cfg ArtifactConfig, rt RuntimeConfig, logger *slog.Logger) (*Artifacts, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Artifacts{}
	if err := a.load(cfg, rt, logger); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.Validate(); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("artifacts loaded",
		"dir", cfg.Dir,
		"text_features", a.Schema.TextFeatures,
		"response_types", len(a.Schema.ResponseTypes),
		"products", len(a.Schema.ProductLabels))
	return a, nil
}

func (a *Artifacts) load(cfg ArtifactConfig, rt RuntimeConfig, logger *slog.Logger) error {
	var err error
	if a.Schema, err = LoadSchema(cfg.Path(cfg.Schema)); err != nil {
		return err
	}
	if a.Scaler, err = LoadMinMaxScaler(cfg.Path(cfg.Scaler)); err != nil {
		return err
	}
	if a.Vectorizer, err = LoadTfidfVectorizer(cfg.Path(cfg.Vectorizer)); err != nil {
		return err
	}
	if a.Product, err = a.loadClassifier(cfg.Path(cfg.ProductClassifier), rt, logger); err != nil {
		return err
	}
	if a.Escalation, err = a.loadClassifier(cfg.Path(cfg.EscalationClassifier), rt, logger); err != nil {
		return err
	}
	return nil
}

func (a *Artifacts) loadClassifier(path string, rt RuntimeConfig, logger *slog.Logger) (Classifier, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".onnx":
		clf, err := ort.NewClassifier(ort.Config{
			SharedLibrary:     rt.OrtDLL,
			ModelPath:         path,
			InputName:         rt.InputName,
			ProbabilityOutput: rt.ProbabilityOutput,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrArtifactLoad, filepath.Base(path), err)
		}
		a.closers = append(a.closers, clf)
		logger.Debug("onnx classifier loaded", "model", clf.ModelID(), "width", clf.InputWidth(), "classes", clf.NumClasses())
		return clf, nil
	case ".json":
		return LoadLogisticRegression(path)
	default:
		return nil, fmt.Errorf("%w: unsupported classifier format %q", ErrArtifactLoad, filepath.Base(path))
	}
}

// Validate checks that every artifact agrees with the schema. Widths a model
// does not declare are checked at prediction time instead.
func (a *Artifacts) Validate() error {
	s := a.Schema
	if err := s.Validate(); err != nil {
		return err
	}
	if a.Vectorizer == nil || a.Product == nil || a.Escalation == nil {
		return fmt.Errorf("%w: incomplete artifact set", ErrArtifactLoad)
	}
	if dim := a.Vectorizer.Dim(); dim != s.TextFeatures {
		return fmt.Errorf("%w: vectorizer has %d features, schema declares %d", ErrArtifactLoad, dim, s.TextFeatures)
	}
	if w := a.Product.InputWidth(); w != 0 && w != s.TextFeatures {
		return fmt.Errorf("%w: product classifier expects %d features, schema declares %d", ErrArtifactLoad, w, s.TextFeatures)
	}
	if n := a.Product.NumClasses(); n != 0 && n != len(s.ProductLabels) {
		return fmt.Errorf("%w: product classifier has %d classes, schema lists %d labels", ErrArtifactLoad, n, len(s.ProductLabels))
	}
	if w := a.Escalation.InputWidth(); w != 0 && w != s.Width() {
		return fmt.Errorf("%w: escalation classifier expects %d features, schema width is %d", ErrConfigurationMismatch, w, s.Width())
	}
	if n := a.Escalation.NumClasses(); n != 0 && n != 2 {
		return fmt.Errorf("%w: escalation classifier has %d classes, want 2", ErrArtifactLoad, n)
	}
	scaled := s.ScaledNames()
	switch {
	case len(scaled) > 0 && a.Scaler == nil:
		return fmt.Errorf("%w: schema scales %v but no scaler is loaded", ErrConfigurationMismatch, scaled)
	case a.Scaler != nil && !slices.Equal(a.Scaler.Features(), scaled):
		return fmt.Errorf("%w: scaler was fitted on %v, schema scales %v", ErrConfigurationMismatch, a.Scaler.Features(), scaled)
	}
	return nil
}

// Close releases runtime sessions.
func (a *Artifacts) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
