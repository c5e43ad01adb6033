package grammar

import "errors"

var (
	// ErrInvalidParams indicates generator parameters that fail validation.
	// It is a configuration error, reported before any string is produced.
	ErrInvalidParams = errors.New("invalid generator parameters")

	// ErrSingular indicates a linear system without a unique solution.
	ErrSingular = errors.New("singular system")
)
