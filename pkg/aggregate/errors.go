package aggregate

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is matched by every *InvalidRequestError.
var ErrInvalidRequest = errors.New("invalid request")

// InvalidRequestError reports a caller mistake: empty query, page or limit
// out of bounds, unknown source.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// SourceError marks a catalog call that failed. It is logged and counted
// but never returned by the aggregator.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s failed: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
