package core

import (
	"errors"
	"strconv"
)

var (
	ErrNilConfig  = NilPointerError("config")
	ErrNoSessions = errors.New("core: Sessions not enabled")
)

type NilPointerError string

func (e NilPointerError) Error() string {
	return "core: Nil " + string(e)
}

// RunError is the failure of one run of a batch.
type RunError struct {
	Index int
	Err   error
}

func (e *RunError) Error() string {
	return "core: Run #" + strconv.Itoa(e.Index) + " failed: " + e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}
