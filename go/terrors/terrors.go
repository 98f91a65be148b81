/*
Copyright 2026 The ArchiveText Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package terrors provides the error values used throughout the text
// conversion engine.
//
// Every error carries a Code classifying the failure. Conversion code
// distinguishes two tiers: OutOfMemory should halt further processing,
// while the remaining codes describe degraded-but-produced output that
// callers may choose to tolerate.
//
// The package is modeled on the pattern of wrapping errors with a
// typed code at creation time and recovering the code at the boundary
// with Code(err), so that intermediate layers can annotate errors with
// Wrapf without losing the classification.
package terrors

import (
	"errors"
	"fmt"
)

// Code classifies a conversion failure.
type Code int

const (
	// Undefined is the code of a nil or foreign error.
	Undefined Code = iota

	// OutOfMemory: allocation or size arithmetic failed. Unlike the
	// other codes, there is no usable output.
	OutOfMemory

	// UnsupportedConversion: no viable conversion pipeline exists for
	// the requested charset pair and best-effort was disallowed.
	UnsupportedConversion

	// MalformedInput: the source violated its encoding's grammar; a
	// replacement character was substituted for the offending bytes.
	MalformedInput

	// Unrepresentable: valid input had no mapping in the target
	// encoding; a replacement was substituted per policy.
	Unrepresentable

	// BackendUnavailable: the charset name could not be resolved to
	// any transcoding backend.
	BackendUnavailable
)

func (c Code) String() string {
	switch c {
	case OutOfMemory:
		return "out of memory"
	case UnsupportedConversion:
		return "unsupported conversion"
	case MalformedInput:
		return "malformed input"
	case Unrepresentable:
		return "unrepresentable input"
	case BackendUnavailable:
		return "backend unavailable"
	default:
		return "undefined"
	}
}

type codedError struct {
	code Code
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// New returns an error with the given code and message.
func New(code Code, msg string) error {
	return &codedError{code: code, err: errors.New(msg)}
}

// Errorf returns an error with the given code and formatted message.
func Errorf(code Code, format string, args ...any) error {
	return &codedError{code: code, err: fmt.Errorf(format, args...)}
}

// Wrap annotates err with msg, preserving any existing code.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &codedError{code: CodeOf(err), err: fmt.Errorf("%s: %w", msg, err)}
}

// Wrapf annotates err with a formatted message, preserving any
// existing code.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &codedError{
		code: CodeOf(err),
		err:  fmt.Errorf(format+": %w", append(args, err)...),
	}
}

// WithCode attaches code to err, overriding any code already present.
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// CodeOf extracts the code from err, unwrapping as needed. A nil or
// uncoded error yields Undefined.
func CodeOf(err error) Code {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return Undefined
}
