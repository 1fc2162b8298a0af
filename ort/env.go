// Package ort runs scikit-learn models exported to ONNX through ONNX Runtime.
package ort

import (
	"fmt"
	"sync"

	onnx "github.com/yalue/onnxruntime_go"
)

var (
	envMu   sync.Mutex
	envRefs int
)

// acquireEnvironment initialises the shared ONNX Runtime environment on first use.
// Every successful call must be paired with releaseEnvironment.
func acquireEnvironment(sharedLibrary string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if !onnx.IsInitialized() {
		if sharedLibrary != "" {
			onnx.SetSharedLibraryPath(sharedLibrary)
		}
		if err := onnx.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		return nil
	}
	envRefs--
	if envRefs == 0 && onnx.IsInitialized() {
		if err := onnx.DestroyEnvironment(); err != nil {
			return fmt.Errorf("destroy onnxruntime: %w", err)
		}
	}
	return nil
}
