package dawg

import "github.com/pkg/errors"

// Every error below is fatal for the Dawg that returned it: the build is
// discarded and later calls return the same error.
var (
	ErrAllocation         = errors.New("dawg: node or transition allocation failed")
	ErrInvariant          = errors.New("dawg: internal invariant violated")
	ErrHeightExceeded     = errors.New("dawg: automaton height exceeds the configured ceiling")
	ErrMissingLine        = errors.New("dawg: code has no line number")
	ErrOffsetOverflow     = errors.New("dawg: value does not fit in a 3-byte field")
	ErrTooManyTransitions = errors.New("dawg: node has more transitions than the header can count")
	ErrWrongPhase         = errors.New("dawg: operation called out of order")
	ErrWrite              = errors.New("dawg: could not write output")
)

// ErrBadFormat is returned by the reader when a .bin file is inconsistent.
var ErrBadFormat = errors.New("dawg: malformed automaton file")
