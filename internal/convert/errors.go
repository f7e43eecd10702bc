package convert

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a single file could not be converted.
type ErrorKind int

const (
	// KindUnknown covers encoder failures and anything unexpected.
	KindUnknown ErrorKind = iota
	// KindUnreadable means the source could not be decoded as an image.
	KindUnreadable
	// KindIOFailure means a read, write or filesystem operation failed.
	KindIOFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreadable:
		return "unreadable"
	case KindIOFailure:
		return "io-failure"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Engine.Convert.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func newError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err. Errors that are not *Error are KindUnknown.
func KindOf(err error) ErrorKind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindUnknown
}
