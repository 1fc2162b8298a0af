package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var predictionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://yashubustudio/advisor/prediction"))

// Renderer draws a probability table and returns where the output went.
type Renderer interface {
	Render(table ProbabilityTable, threshold float64) (string, error)
}

// Service runs the full prediction pipeline over loaded artifacts.
type Service struct {
	artifacts    *Artifacts
	extractor    *Extractor
	preprocessor *Preprocessor
	product      *ProductClassifier
	escalation   *EscalationPredictor
	renderer     Renderer
	logger       *slog.Logger
}

// NewService constructs a service from loaded artifacts and the text front end.
func NewService(artifacts *Artifacts, extractor *Extractor, preprocessor *Preprocessor, logger *slog.Logger) (*Service, error) {
	if artifacts == nil {
		return nil, errors.New("artifacts are required")
	}
	if extractor == nil || preprocessor == nil {
		return nil, errors.New("extractor and preprocessor are required")
	}
	if err := artifacts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		artifacts:    artifacts,
		extractor:    extractor,
		preprocessor: preprocessor,
		product:      NewProductClassifier(artifacts.Product, artifacts.Schema.ProductLabels),
		escalation:   NewEscalationPredictor(artifacts.Escalation, artifacts.Schema, logger),
		logger:       logger,
	}, nil
}

// NewServiceFromConfig loads the artifacts and text front end described by cfg.
func NewServiceFromConfig(cfg Config, logger *slog.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	extractor := NewDefaultExtractor()
	artifacts, err := LoadArtifacts(cfg.Artifacts, cfg.Runtime, logger)
	if err != nil {
		return nil, err
	}
	svc, err := NewService(artifacts, extractor, NewPreprocessor(cfg.Preprocess, NewBertWordTokenizer()), logger)
	if err != nil {
		_ = artifacts.Close()
		return nil, err
	}
	return svc, nil
}

// SetRenderer installs the chart renderer; nil disables rendering.
func (s *Service) SetRenderer(r Renderer) {
	s.renderer = r
}

// Schema returns the feature schema of the loaded artifacts.
func (s *Service) Schema() FeatureSchema {
	return s.artifacts.Schema
}

// Extractor returns the sentiment feature extractor.
func (s *Service) Extractor() *Extractor {
	return s.extractor
}

// Close releases artifact resources.
func (s *Service) Close() error {
	return s.artifacts.Close()
}

// Predict analyses one narrative. It returns either a complete prediction or an error.
func (s *Service) Predict(ctx context.Context, narrative string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	features, err := s.extractor.Extract(narrative)
	if err != nil {
		return Prediction{}, err
	}
	numeric, err := s.artifacts.Schema.NumericValues(features, s.artifacts.Scaler)
	if err != nil {
		return Prediction{}, err
	}
	text := s.artifacts.Vectorizer.Transform(s.preprocessor.Text(narrative))
	product, productProbs, err := s.product.Classify(text)
	if err != nil {
		return Prediction{}, err
	}
	table, recommended, err := s.escalation.Predict(text, numeric)
	if err != nil {
		return Prediction{}, err
	}
	pred := Prediction{
		ID:                   uuid.NewSHA1(predictionNamespace, []byte(narrative)).String(),
		Product:              product,
		ProductProbabilities: productProbs,
		Escalation:           table,
		Recommended:          recommended,
		RecommendedLabel:     DisplayLabel(recommended),
		Features:             features,
	}
	s.logger.Info("prediction",
		"id", pred.ID,
		"product", pred.Product,
		"recommended", pred.Recommended,
		"sentences", features.SentenceNum)
	pred.ChartPath = s.render(table)
	return pred, nil
}

// PredictionResult pairs a batch prediction with its error.
type PredictionResult struct {
	Prediction Prediction
	Err        error
}

// PredictAll predicts each narrative in order, reporting progress after each
// one. Per-narrative failures are returned in the results; the error is
// non-nil only when ctx is cancelled.
func (s *Service) PredictAll(ctx context.Context, narratives []string, progress func(done, total int)) ([]PredictionResult, error) {
	out := make([]PredictionResult, len(narratives))
	for i, narrative := range narratives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pred, err := s.Predict(ctx, narrative)
		if err != nil {
			s.logger.Warn("prediction failed", "row", i, "error", err)
		}
		out[i] = PredictionResult{Prediction: pred, Err: err}
		if progress != nil {
			progress(i+1, len(narratives))
		}
	}
	return out, nil
}

// render runs the renderer in isolation. Its failures never reach the caller.
func (s *Service) render(table ProbabilityTable) (path string) {
	if s.renderer == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("render panicked", "panic", fmt.Sprint(r))
			path = ""
		}
	}()
	path, err := s.renderer.Render(table, EscalationThreshold)
	if err != nil {
		s.logger.Warn("render failed", "error", err)
		return ""
	}
	return path
}

// DisplayLabel turns a response type into a short label: the part after the
// last '_', without "Closed with ", first letter upper-cased and the rest lower-cased.
func DisplayLabel(r ResponseType) string {
	label := string(r)
	if i := strings.LastIndex(label, "_"); i >= 0 {
		label = label[i+1:]
	}
	label = strings.ReplaceAll(label, "Closed with ", "")
	if label == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + cases.Lower(language.English).String(label[size:])
}
