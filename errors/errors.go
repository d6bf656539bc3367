// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package errors provides error creation and matching for the wallet
// persistence core. It is imported as errors and takes over the role of the
// standard library errors package within this module.
//
// API inspired by https://commandcenter.blogspot.com/2017/12/error-handling-in-upspin.html
package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Separator is inserted between nested errors when formatting as strings.
var Separator = ":\n\t"

// Error describes an error condition raised within the wallet persistence
// core. Errors may optionally carry the operation and class of error for
// debugging and runtime matching.
type Error struct {
	Op   Op
	Kind Kind
	Err  error

	stack []byte
}

// Op describes the operation or method in which an error condition was
// raised.
type Op string

// Opf returns a formatted Op.
func Opf(format string, a ...interface{}) Op {
	return Op(fmt.Sprintf(format, a...))
}

// Kind describes the class of error.
type Kind int

// Error kinds.
const (
	Other   Kind = iota // Unclassified error -- does not appear in error strings
	Bug                 // Error is known to be a result of our bug
	Invalid             // Invalid operation
	IO                  // I/O error
	Exist               // Item already exists
	NotExist            // Item does not exist
	Encoding            // Invalid encoding
	Crypto              // Encryption, decryption, or hash verification error
	Corrupt             // Persisted record is corrupt
	TooNew              // File requires a newer implementation to load
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "unclassified error"
	case Bug:
		return "internal error"
	case Invalid:
		return "invalid operation"
	case IO:
		return "I/O error"
	case Exist:
		return "item already exists"
	case NotExist:
		return "item does not exist"
	case Encoding:
		return "invalid encoding"
	case Crypto:
		return "cryptographic error"
	case Corrupt:
		return "corrupt record"
	case TooNew:
		return "file requires a newer implementation"
	default:
		return "unknown error kind"
	}
}

// New creates a simple error from a string. Identical to "errors".New.
func New(text string) error {
	return errors.New(text)
}

// Errorf creates a simple error from a format string and arguments.
// Identical to "fmt".Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// E creates an *Error from one or more arguments.
//
// Each argument type is inspected when constructing the error. If multiple
// args of similar type are passed, the final arg is recorded. Recognized
// types:
//
//	Op      the operation in which the error occurred
//	Kind    the class of error
//	string  description of the error condition
//	error   the underlying error; if it is an *Error, Op/Kind are promoted
//
// Panics if no arguments are passed.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E: no args")
	}

	var e Error
	var prev *Error

	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case Kind:
			e.Kind = arg
		case string:
			e.Err = New(arg)
		case *Error:
			prev = arg
			e.Err = arg
		case error:
			e.Err = arg
		}
	}

	if e.Err == prev && prev != nil {
		if e.Op == "" {
			e.Op = prev.Op
		}
		if e.Kind == 0 {
			e.Kind = prev.Kind
		}
		if (prev.Op == "" || e.Op == prev.Op) && (prev.Kind == 0 || e.Kind == prev.Kind) {
			e.Err = prev.Err
			if e.stack == nil {
				e.stack = prev.stack
			}
		}
	}

	return &e
}

// WithStack is identical to E but includes a stacktrace. Stack traces do not
// appear in formatted error strings and are not compared when matching
// errors; retrieve them with Stacks.
func WithStack(args ...interface{}) error {
	err := E(args...).(*Error)
	err.stack = debug.Stack()
	return err
}

func (e *Error) Error() string {
	var b strings.Builder
	var last Error

	for {
		pad := false
		if e.Op != "" && e.Op != last.Op {
			b.WriteString(string(e.Op))
			pad = true
			last.Op = e.Op
		}
		if e.Kind != 0 && e.Kind != last.Kind {
			if pad {
				b.WriteString(": ")
			}
			b.WriteString(e.Kind.String())
			pad = true
			last.Kind = e.Kind
		}
		if e.Err == nil {
			break
		}
		if err, ok := e.Err.(*Error); ok {
			if pad {
				b.WriteString(Separator)
			}
			e = err
			continue
		}
		if pad {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
		break
	}

	s := b.String()
	if s == "" {
		return Other.String()
	}
	return s
}

// Unwrap allows errors.Is/As (standard library) to traverse the chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is returns whether err is an *Error with a matching kind, checking nested
// errors. Never matches the Other kind.
func Is(kind Kind, err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	if e.Kind != Other {
		return e.Kind == kind
	}
	return Is(kind, e.Err)
}

// Match compares two errors, returning true if every non-zero field of err1
// is equal to the same field in err2. Nested errors are compared similarly.
func Match(err1, err2 error) bool {
	e1, ok := err1.(*Error)
	if !ok {
		return false
	}
	e2, ok := err2.(*Error)
	if !ok {
		return false
	}

	if e1.Op != "" && e1.Op != e2.Op {
		return false
	}
	if e1.Kind != 0 && e1.Kind != e2.Kind {
		return false
	}
	if e1.Err == nil {
		return true
	}
	if e1.Err == e2.Err {
		return true
	}
	if _, ok := e1.Err.(*Error); ok {
		return Match(e1.Err, e2.Err)
	}
	return e1.Err.Error() == e2.Err.Error()
}

// MatchAll performs Match on needle using haystack and every nested error of
// haystack.
func MatchAll(needle, haystack error) bool {
	n, ok := needle.(*Error)
	if !ok {
		return false
	}
	h, ok := haystack.(*Error)
	if !ok {
		return false
	}
	for h != nil {
		if Match(n, h) {
			return true
		}
		h, _ = h.Err.(*Error)
	}
	return false
}

// Stacks extracts all stacktraces from err, ordered top-most to bottom-most.
func Stacks(err error) [][]byte {
	var stacks [][]byte
	e, _ := err.(*Error)
	for e != nil {
		if e.stack != nil {
			stacks = append(stacks, e.stack)
		}
		e, _ = e.Err.(*Error)
	}
	return stacks
}
