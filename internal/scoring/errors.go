package scoring

import "errors"

var (
	// ErrInvalidInput aborts a ranking run: malformed matrix shape, bad weights,
	// or a value outside the domain of the requested formula.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownCriterion is returned when a criterion id is not registered.
	ErrUnknownCriterion = errors.New("unknown criterion")

	// ErrEmptyInput means no alternative survived validation.
	ErrEmptyInput = errors.New("no valid alternatives")
)
