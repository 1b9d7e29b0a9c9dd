package cache

import "errors"

var (
	ErrEmptyContent    = errors.New("cache: Empty content")
	ErrNotContainer    = errors.New("cache: Top-level JSON value is neither an object nor an array")
	ErrTrailingContent = errors.New("cache: Unexpected content after JSON value")
	ErrNilCompiler     = errors.New("cache: Nil schema compiler")
)

type DuplicateKeyError string

func (e DuplicateKeyError) Error() string {
	return "cache: Duplicate object key at " + string(e)
}

// ParseError wraps any failure to turn content into a JSON value.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "cache: Invalid JSON content: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
