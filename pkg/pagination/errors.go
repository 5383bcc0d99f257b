package pagination

import "errors"

var (
	// Done is returned by Sequence.Next when no elements remain.
	// It is never wrapped.
	Done = errors.New("no more items in sequence")

	// ErrLimitViolation is returned at construction time for a negative
	// element limit or a non-positive chunk size.
	ErrLimitViolation = errors.New("invalid sequence limit")

	// ErrRepeatedPageToken is returned when a page hands back the token that
	// was used to request it, which would loop forever.
	ErrRepeatedPageToken = errors.New("page token did not advance")
)
