package custom_err

import "errors"

var (
	// Record errors
	ErrDuplicateRecord = errors.New("record already exists")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Infrastructure errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)
