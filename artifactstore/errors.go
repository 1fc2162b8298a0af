package artifactstore

import "errors"

var (
	// ErrNotFound indicates the requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrForbidden indicates the credentials cannot read the artifact.
	ErrForbidden = errors.New("artifact access denied")
	// ErrInvalidLocation indicates a malformed artifact URI.
	ErrInvalidLocation = errors.New("invalid artifact location")
	// ErrUnsupportedScheme indicates a URI scheme with no registered backend.
	ErrUnsupportedScheme = errors.New("unsupported artifact scheme")
)

// permanent reports errors that retrying cannot fix.
func permanent(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidLocation) ||
		errors.Is(err, ErrUnsupportedScheme)
}
