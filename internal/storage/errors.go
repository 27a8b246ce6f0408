package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("key not found")
	errValueTooLarge = errors.New("value exceeds the size limit")
	errStoreFull     = errors.New("store capacity exceeded")
)

type ErrorType string

const (
	ErrorTypeQuotaExceeded ErrorType = "QUOTA_EXCEEDED"
	ErrorTypeAccessDenied  ErrorType = "ACCESS_DENIED"
	ErrorTypeParse         ErrorType = "PARSE_ERROR"
	ErrorTypeUnknown       ErrorType = "UNKNOWN"
)

// Error is a failed store operation, classified by Type.
type Error struct {
	Type ErrorType
	Key  Key
	Err  error
}

func newError(t ErrorType, key Key, err error) *Error {
	return &Error{Type: t, Key: key, Err: err}
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %s", e.Type, e.Err)
	}
	return fmt.Sprintf("storage %s [%s]: %s", e.Type, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TypeOf returns the type of the first storage error in err's chain.
// Errors that did not come from a store are UNKNOWN.
func TypeOf(err error) ErrorType {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Type
	}
	return ErrorTypeUnknown
}
