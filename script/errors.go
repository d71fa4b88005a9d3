package script

import "errors"

var (
	// ErrNotFound is returned when no script is stored under the given name.
	ErrNotFound = errors.New("script not found")
	// ErrUnsupportedExtension is returned for names without a script
	// extension when the write is not forced.
	ErrUnsupportedExtension = errors.New("unsupported script extension")
)
