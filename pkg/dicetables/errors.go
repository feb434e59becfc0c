package dicetables

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package wraps one of them.
var (
	// ErrValidation marks a rejected argument. Validation errors are never retried.
	ErrValidation = errors.New("dicetables: validation error")

	// ErrArithmetic marks a computation that has no defined result.
	ErrArithmetic = errors.New("dicetables: arithmetic error")
)

// Validation errors.
var (
	ErrNegativeTimes      = fmt.Errorf("%w: times must be non-negative", ErrValidation)
	ErrEmptyAddend        = fmt.Errorf("%w: addend has no positive occurrences", ErrValidation)
	ErrNegativeOccurrence = fmt.Errorf("%w: occurrences must be non-negative", ErrValidation)
	ErrNegativeCount      = fmt.Errorf("%w: dice count must be non-negative", ErrValidation)
	ErrRecordUnderflow    = fmt.Errorf("%w: cannot remove more dice than the record holds", ErrValidation)
	ErrCountOverflow      = fmt.Errorf("%w: dice count overflows int", ErrValidation)
	ErrInvalidDescriptor  = fmt.Errorf("%w: invalid die", ErrValidation)
	ErrInvalidPool        = fmt.Errorf("%w: invalid dice pool", ErrValidation)
	ErrInvalidPercentile  = fmt.Errorf("%w: percentile must be within [0, 100]", ErrValidation)
)

// Arithmetic errors.
var (
	// ErrZeroTotal is returned by statistics of a distribution with no occurrences.
	ErrZeroTotal = fmt.Errorf("%w: distribution has zero total occurrences", ErrArithmetic)
)
