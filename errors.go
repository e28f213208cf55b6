// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"errors"
	"fmt"

	"github.com/creachadair/jdom/storage"
)

// ErrorKind classifies the errors reported by a Parser.
type ErrorKind byte

// Constants defining the kinds of parse error.
const (
	Syntax      ErrorKind = iota + 1 // malformed input
	TooDeep                          // nesting exceeds the maximum depth
	Incomplete                       // input ended before the value was complete
	OutOfMemory                      // a resource could not satisfy a request
	SizeLimit                        // a string, array, or object is too large
	NumberRange                      // a well-formed number exceeds the range of float64
)

var kindStr = [...]string{
	Syntax:      "syntax error",
	TooDeep:     "too deep",
	Incomplete:  "incomplete input",
	OutOfMemory: "out of memory",
	SizeLimit:   "size limit exceeded",
	NumberRange: "number out of range",
}

func (k ErrorKind) String() string {
	if k > 0 && int(k) < len(kindStr) {
		return kindStr[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", byte(k))
}

var (
	// ErrSyntax matches any *Error of kind Syntax.
	ErrSyntax = errors.New("syntax error")

	// ErrTooDeep matches any *Error of kind TooDeep.
	ErrTooDeep = errors.New("too deep")

	// ErrIncomplete matches any *Error of kind Incomplete.
	ErrIncomplete = errors.New("incomplete input")

	// ErrNumberRange matches any *Error of kind NumberRange. Such errors also
	// wrap strconv.ErrRange.
	ErrNumberRange = errors.New("number out of range")
)

// Error is the concrete type of errors reported by a Parser. Errors of kind
// OutOfMemory and SizeLimit wrap the error reported by the storage layer,
// so errors.Is matches storage.ErrOutOfMemory and storage.ErrSizeLimit.
// Errors of kind NumberRange wrap strconv.ErrRange.
type Error struct {
	Kind    ErrorKind
	Offset  int64 // byte offset of the fault, 0-based
	LineCol       // line and column of the fault
	Message string

	err error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("at %s (offset %d): %s: %s", e.LineCol, e.Offset, e.Kind, e.Message)
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel error for the kind of e.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSyntax:
		return e.Kind == Syntax
	case ErrTooDeep:
		return e.Kind == TooDeep
	case ErrIncomplete:
		return e.Kind == Incomplete
	case ErrNumberRange:
		return e.Kind == NumberRange
	}
	return false
}

func errorIsSizeLimit(err error) bool { return errors.Is(err, storage.ErrSizeLimit) }
