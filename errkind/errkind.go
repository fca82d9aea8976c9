// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package errkind defines the engine's fatal error kinds (spec §7). Every
// error the pipeline returns to its caller is wrapped in a *Error so
// callers can branch on Kind without string matching, the same way the
// teacher's scheduler package exposes ErrOpTimeout as a sentinel.
package errkind

import "fmt"

// Kind identifies one of the fatal error categories the engine can
// report. There is no retryable kind: per spec §7 nothing is auto-retried.
type Kind string

const (
	// InputUnavailable: the data source could not be read at all.
	InputUnavailable Kind = "input_unavailable"
	// InputInconsistent: dangling ids or malformed shift times.
	InputInconsistent Kind = "input_inconsistent"
	// CalendarOverflow: a resource has no working day within the bounded
	// look-ahead horizon.
	CalendarOverflow Kind = "calendar_overflow"
	// InfeasibleModel: the solver proved the model has no solution.
	InfeasibleModel Kind = "infeasible_model"
	// SolveTimeout: wall-clock elapsed with no feasible incumbent.
	SolveTimeout Kind = "solve_timeout"
	// SinkFailure: the output sink reported a write error.
	SinkFailure Kind = "sink_failure"
)

// Error is a Kind-tagged error with a human-readable message and an
// optional reference to the offending record.
type Error struct {
	Kind    Kind
	Message string
	Record  string // identifies the offending record, if any; empty otherwise
	Err     error  // wrapped cause, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Record != "" {
		msg += fmt.Sprintf(" (record: %s)", e.Record)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no offending record.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithRecord attaches the identifier of the offending record to an error.
func WithRecord(kind Kind, record, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Record: record}
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
