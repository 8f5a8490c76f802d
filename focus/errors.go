package focus

import "errors"

var (
	// ErrInvalidInput rejects the whole call: duplicate IDs within a side,
	// kinds missing from the type table, non-finite positions or bad health.
	// It signals a data or configuration defect upstream, not a transient
	// condition, so callers should skip the tick rather than retry.
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidConfig = errors.New("invalid config")
)
