package advisor

import (
	"encoding/json"
	"path/filepath"
	"runtime"
)

// ResponseType is one of the company response categories the escalation model was trained on.
type ResponseType string

// ProductLabel is a product category emitted by the product classifier.
type ProductLabel string

// SentimentFeatures summarises the per-sentence sentiment of a narrative.
type SentimentFeatures struct {
	CorpusScoreSum    float64 `json:"corpusScoreSum"`
	WordNum           int     `json:"wordNum"`
	SentenceNum       int     `json:"sentenceNum"`
	NegativeRatio     float64 `json:"negativeRatio"`
	MostNegativeScore float64 `json:"mostNegativeScore"`
}

// ResponseProbability is the dispute probability for a single response type.
type ResponseProbability struct {
	Response    ResponseType `json:"response"`
	Probability float64      `json:"probability"`
	// Escalates is the hard label: Probability at or above EscalationThreshold.
	Escalates bool `json:"escalates"`
}

// ProbabilityTable lists one entry per response type in schema order.
type ProbabilityTable []ResponseProbability

// Probabilities returns the probability column in table order.
func (t ProbabilityTable) Probabilities() []float64 {
	out := make([]float64, len(t))
	for i, row := range t {
		out[i] = row.Probability
	}
	return out
}

// Prediction is the full result for one narrative.
type Prediction struct {
	ID                   string            `json:"id"`
	Product              ProductLabel      `json:"product"`
	ProductProbabilities []float64         `json:"productProbabilities"`
	Escalation           ProbabilityTable  `json:"escalation"`
	Recommended          ResponseType      `json:"recommended"`
	RecommendedLabel     string            `json:"recommendedLabel"`
	Features             SentimentFeatures `json:"features"`
	ChartPath            string            `json:"chartPath,omitempty"`
}

// ArtifactConfig locates the trained artifacts. Relative file names resolve against Dir.
type ArtifactConfig struct {
	Dir                  string `json:"dir" mapstructure:"dir"`
	Schema               string `json:"schema" mapstructure:"schema"`
	ProductClassifier    string `json:"productClassifier" mapstructure:"productClassifier"`
	EscalationClassifier string `json:"escalationClassifier" mapstructure:"escalationClassifier"`
	Vectorizer           string `json:"vectorizer" mapstructure:"vectorizer"`
	Scaler               string `json:"scaler" mapstructure:"scaler"`
	// Source is an optional remote prefix (s3://, azblob://, file://) the fetch command downloads from.
	Source string `json:"source,omitempty" mapstructure:"source"`
}

// Path resolves an artifact file name against Dir.
func (a ArtifactConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) || a.Dir == "" {
		return name
	}
	return filepath.Join(a.Dir, name)
}

// Files returns the artifact file names in load order.
func (a ArtifactConfig) Files() []string {
	return []string{a.Schema, a.Scaler, a.Vectorizer, a.ProductClassifier, a.EscalationClassifier}
}

// RuntimeConfig configures ONNX Runtime.
type RuntimeConfig struct {
	OrtDLL            string `json:"ortDll" mapstructure:"ortDll"`
	InputName         string `json:"inputName" mapstructure:"inputName"`
	ProbabilityOutput string `json:"probabilityOutput" mapstructure:"probabilityOutput"`
}

// PreprocessConfig controls text preprocessing ahead of vectorization.
type PreprocessConfig struct {
	StopWords []string `json:"stopWords,omitempty" mapstructure:"stopWords"`
	KeepCase  bool     `json:"keepCase" mapstructure:"keepCase"`
}

// RenderConfig controls the optional probability chart.
type RenderConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
	Width   int    `json:"width" mapstructure:"width"`
	Height  int    `json:"height" mapstructure:"height"`
}

// StoreConfig configures remote artifact downloads.
type StoreConfig struct {
	Region                string `json:"region,omitempty" mapstructure:"region"`
	AzureConnectionString string `json:"azureConnectionString,omitempty" mapstructure:"azureConnectionString"`
	Retries               int    `json:"retries" mapstructure:"retries"`
	RetryBaseMs           int    `json:"retryBaseMs" mapstructure:"retryBaseMs"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Artifacts  ArtifactConfig   `json:"artifacts" mapstructure:"artifacts"`
	Runtime    RuntimeConfig    `json:"runtime" mapstructure:"runtime"`
	Preprocess PreprocessConfig `json:"preprocess" mapstructure:"preprocess"`
	Render     RenderConfig     `json:"render" mapstructure:"render"`
	Columns    ColumnCandidates `json:"columns" mapstructure:"columns"`
	Store      StoreConfig      `json:"store" mapstructure:"store"`
	Workers    int              `json:"workers" mapstructure:"workers"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Artifacts.Dir == "" {
		c.Artifacts.Dir = "./models"
	}
	if c.Artifacts.Schema == "" {
		c.Artifacts.Schema = "schema.json"
	}
	if c.Artifacts.ProductClassifier == "" {
		c.Artifacts.ProductClassifier = "product.onnx"
	}
	if c.Artifacts.EscalationClassifier == "" {
		c.Artifacts.EscalationClassifier = "escalation.onnx"
	}
	if c.Artifacts.Vectorizer == "" {
		c.Artifacts.Vectorizer = "vectorizer.json"
	}
	if c.Artifacts.Scaler == "" {
		c.Artifacts.Scaler = "scaler.json"
	}
	if c.Runtime.InputName == "" {
		c.Runtime.InputName = "float_input"
	}
	if c.Runtime.ProbabilityOutput == "" {
		c.Runtime.ProbabilityOutput = "probabilities"
	}
	if len(c.Preprocess.StopWords) == 0 {
		c.Preprocess.StopWords = DefaultStopWords()
	}
	if c.Render.Path == "" {
		c.Render.Path = "figs/escalation_prob.png"
	}
	if c.Render.Width <= 0 {
		c.Render.Width = 800
	}
	if c.Render.Height <= 0 {
		c.Render.Height = 480
	}
	c.Columns = c.Columns.withDefaults()
	if c.Store.Retries <= 0 {
		c.Store.Retries = 5
	}
	if c.Store.RetryBaseMs <= 0 {
		c.Store.RetryBaseMs = 1000
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}
