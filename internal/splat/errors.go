package splat

import "errors"

var (
	// ErrMissingRequiredField is returned when a position axis is absent
	// from the input table. Nothing is emitted.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidParameter is returned for a non-positive particle budget,
	// a non-positive target extent or an opacity threshold outside [0,1].
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyInput marks a table that decoded to zero splats. It is not
	// fatal: Run reports it through Result.Empty and still writes a
	// header-only script.
	ErrEmptyInput = errors.New("no splats decoded")
)
