package paging

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCursor matches any *InvalidCursorError.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrInvalidArgument matches any *InvalidArgumentError or *PageSizeError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable matches any *StoreUnavailableError.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCanceled matches any *CancellationError.
	ErrCanceled = errors.New("pagination canceled")
)

// InvalidCursorError is returned when an after/before cursor can not be decoded.
// It is a client input error and must not be retried.
type InvalidCursorError struct {
	Cursor string
	Reason string
}

func (e *InvalidCursorError) Error() string {
	return "invalid cursor: " + e.Reason
}

func (e *InvalidCursorError) Is(target error) bool {
	return target == ErrInvalidCursor
}

// InvalidArgumentError is returned when the paging arguments are contradictory
// or out of range.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Field == "" {
		return "invalid argument: " + e.Reason
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// PageSizeError is returned when the requested page size exceeds the maximum allowed.
type PageSizeError struct {
	Requested int
	Maximum   int
}

func (e *PageSizeError) Error() string {
	return fmt.Sprintf("requested page size %d exceeds maximum allowed page size of %d",
		e.Requested, e.Maximum)
}

func (e *PageSizeError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// StoreUnavailableError wraps a failure reported by a Fetcher.
// The paginator never retries; retry policy belongs to the store accessor.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// CancellationError is returned when the caller's context ends mid-call.
// No partial page accompanies it.
type CancellationError struct {
	Err error
}

func (e *CancellationError) Error() string {
	return "pagination canceled: " + e.Err.Error()
}

func (e *CancellationError) Unwrap() error {
	return e.Err
}

func (e *CancellationError) Is(target error) bool {
	return target == ErrCanceled
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidCursor) || errors.Is(err, ErrInvalidArgument)
}

// Canceled converts a context error into a *CancellationError.
// It returns nil when ctx is still live.
func Canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CancellationError{Err: err}
	}
	return nil
}
