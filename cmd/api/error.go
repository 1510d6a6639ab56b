package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// errid is an error that remembers the request it failed. The request id
// leads its message so answers and log lines can be matched.
type errid struct {
	reqid string
	err   error
}

// wrap prefixes cause with op. Under SLOPER_DEBUG the stack is kept too.
func (e errid) wrap(cause error, op string) error {
	if _, debug := os.LookupEnv("SLOPER_DEBUG"); debug {
		e.err = errors.Wrap(cause, op)
		return e
	}
	e.err = errors.WithMessage(cause, op)
	return e
}

// textf is a refusal of the handler itself, with nothing underneath.
func (e errid) textf(format string, args ...interface{}) error {
	e.err = errors.Errorf(format, args...)
	return e
}

func (e errid) from(err error) error {
	e.err = errors.WithStack(err)
	return e
}

func (e errid) id() string { return e.reqid }

func (e errid) Error() string {
	return fmt.Sprintf("%s: %s", e.reqid, e.err.Error())
}

// Cause lets errors.Cause reach the error the request failed with.
func (e errid) Cause() error { return e.err }

func (e errid) Unwrap() error { return e.err }
