package sloper

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Problem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports input that is missing, non positive or out of the
// supported range. The computation is deterministic: only corrected input
// can make it go away.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+" "+p.Reason)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, a ...interface{}) {
	e.Problems = append(e.Problems, Problem{Field: field, Reason: fmt.Sprintf(format, a...)})
}

// orNil keeps a ValidationError without problems from leaking as a non nil error.
func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

func invalid(field, format string, a ...interface{}) error {
	e := &ValidationError{}
	e.add(field, format, a...)
	return e
}

// GeometryError reports measurements that passed validation but cannot be
// drawn: coincident anchors, crossing darts, an outline that does not close.
type GeometryError struct {
	Piece  string
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Piece == "" {
		return "geometry: " + e.Reason
	}
	return fmt.Sprintf("geometry of %s: %s", e.Piece, e.Reason)
}

func infeasible(piece, format string, a ...interface{}) error {
	return &GeometryError{Piece: piece, Reason: fmt.Sprintf(format, a...)}
}

// IsValidation reports whether the cause of err is a *ValidationError.
func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// IsGeometry reports whether the cause of err is a *GeometryError.
func IsGeometry(err error) bool {
	_, ok := errors.Cause(err).(*GeometryError)
	return ok
}
