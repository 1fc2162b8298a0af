package ort

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	onnx "github.com/yalue/onnxruntime_go"
)

// Config selects the model file and the tensors to bind.
type Config struct {
	SharedLibrary string
	ModelPath     string
	// InputName is used when the model has several inputs; a single input is bound automatically.
	InputName string
	// ProbabilityOutput names the class probability tensor (skl2onnx: "probabilities").
	ProbabilityOutput string
}

// Classifier evaluates an ONNX classifier that takes one float32 row of
// features and returns one float32 row of class probabilities.
type Classifier struct {
	session *onnx.DynamicAdvancedSession
	input   string
	output  string
	width   int
	classes int
	modelID string

	closeOnce sync.Once
	closeErr  error
}

// NewClassifier opens a session for cfg.ModelPath.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if err := acquireEnvironment(cfg.SharedLibrary); err != nil {
		return nil, err
	}
	c, err := openClassifier(cfg)
	if err != nil {
		_ = releaseEnvironment()
		return nil, err
	}
	return c, nil
}

func openClassifier(cfg Config) (*Classifier, error) {
	inputs, outputs, err := onnx.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", filepath.Base(cfg.ModelPath), err)
	}
	in, err := resolveTensor(inputs, cfg.InputName, "input")
	if err != nil {
		return nil, err
	}
	out, err := resolveTensor(outputs, cfg.ProbabilityOutput, "output")
	if err != nil {
		return nil, err
	}
	session, err := onnx.NewDynamicAdvancedSession(cfg.ModelPath, []string{in.Name}, []string{out.Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", filepath.Base(cfg.ModelPath), err)
	}
	return &Classifier{
		session: session,
		input:   in.Name,
		output:  out.Name,
		width:   lastDim(in.Dimensions),
		classes: lastDim(out.Dimensions),
		modelID: filepath.Base(cfg.ModelPath),
	}, nil
}

// resolveTensor picks the tensor called want, or the only tensor when the
// model declares exactly one.
func resolveTensor(infos []onnx.InputOutputInfo, want, kind string) (onnx.InputOutputInfo, error) {
	names := make([]string, len(infos))
	for i, info := range infos {
		if info.Name == want {
			return info, nil
		}
		names[i] = info.Name
	}
	if len(infos) == 1 {
		return infos[0], nil
	}
	return onnx.InputOutputInfo{}, fmt.Errorf("%s %q not found (model has %s)", kind, want, strings.Join(names, ", "))
}

// lastDim returns the trailing dimension, 0 when it is dynamic or absent.
func lastDim(shape onnx.Shape) int {
	if len(shape) == 0 || shape[len(shape)-1] <= 0 {
		return 0
	}
	return int(shape[len(shape)-1])
}

// ModelID returns the model file name.
func (c *Classifier) ModelID() string { return c.modelID }

// InputWidth returns the declared feature width, 0 when dynamic.
func (c *Classifier) InputWidth() int { return c.width }

// NumClasses returns the declared class count, 0 when dynamic.
func (c *Classifier) NumClasses() int { return c.classes }

// PredictProba runs the model on a single row. The row is narrowed to
// float32, the input type of exported scikit-learn graphs.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	if c.session == nil {
		return nil, errors.New("classifier is closed")
	}
	if c.width > 0 && len(x) != c.width {
		return nil, fmt.Errorf("%s expects %d features, got %d", c.modelID, c.width, len(x))
	}
	row := make([]float32, len(x))
	for i, v := range x {
		row[i] = float32(v)
	}
	input, err := onnx.NewTensor(onnx.NewShape(1, int64(len(row))), row)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []onnx.Value{nil}
	if err := c.session.Run([]onnx.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run %s: %w", c.modelID, err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*onnx.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%s: output %q is not a float32 tensor", c.modelID, c.output)
	}
	data := tensor.GetData()
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out, nil
}

// Close releases the session and, with the last classifier, the environment.
func (c *Classifier) Close() error {
	c.closeOnce.Do(func() {
		if c.session != nil {
			c.closeErr = c.session.Destroy()
			c.session = nil
		}
		if err := releaseEnvironment(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
	})
	return c.closeErr
}
