// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package warpbase defines an error taxonomy for failures the orchestrator
// needs to react to differently:
// a denied approval is not handled the same way as a timed-out shell
// command, even though both arrive as a Go error.
package warpbase

import "fmt"

// Kind classifies why an operation failed, so callers can switch on it
// instead of string-matching error messages.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindPathUnsafe        Kind = "path_unsafe"
	KindPolicyDenied      Kind = "policy_denied"
	KindTimeout           Kind = "timeout"
	KindOutputCapExceeded Kind = "output_cap_exceeded"
	KindTransient         Kind = "transient"
	KindHandler           Kind = "handler"
	KindFatal             Kind = "fatal"
)

// Error is the concrete error type of this taxonomy. No other package in
// the module returns it; sandbox tools report failures as sandbox.Error.
type Error struct {
	Kind      Kind
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a non-retryable Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around cause, classified as kind. retryable marks
// whether the orchestrator may resubmit the operation unchanged.
func Wrap(kind Kind, message string, cause error, retryable bool) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, Retryable: retryable}
}

// As reports whether err is a *Error of the given kind.
func As(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
