package advisor

import "errors"

var (
	// ErrInvalidInput reports a narrative that cannot be analysed (empty, no sentences, invalid UTF-8).
	ErrInvalidInput = errors.New("invalid input")
	// ErrArtifactLoad reports a missing, corrupt or internally inconsistent trained artifact.
	ErrArtifactLoad = errors.New("artifact load failed")
	// ErrConfigurationMismatch reports artifacts that disagree with the feature schema.
	ErrConfigurationMismatch = errors.New("configuration mismatch")
)
