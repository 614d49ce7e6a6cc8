// Package errors provides structured error handling for the harness.
// It includes categorized errors with actionable remediation guidance.
package errors

import "fmt"

// Category represents the type of harness failure.
type Category int

const (
	// Setup failures occur while constructing a sandbox or fixture.
	Setup Category = iota
	// Subprocess failures are non-zero exits from a command the caller
	// expected to succeed.
	Subprocess
	// Parse failures signal a malformed mock-tool transcript: a broken
	// mock or a protocol mismatch, never recoverable input.
	Parse
	// Transport failures occur starting or reaching a mock upstream
	// server. A not-found object from the toolchain mock is NOT one of
	// these; that is a normal protocol outcome.
	Transport
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case Setup:
		return "Setup Error"
	case Subprocess:
		return "Subprocess Error"
	case Parse:
		return "Parse Error"
	case Transport:
		return "Transport Error"
	default:
		return "Error"
	}
}

// HarnessError is a structured error with category, remediation guidance,
// and optionally the stderr captured from a failed subprocess.
type HarnessError struct {
	Category    Category
	Message     string
	Remediation []string
	// Stderr holds the captured standard error of the failing subprocess,
	// when there is one. Surfaced so a failing test carries its diagnosis.
	Stderr string
}

// Error implements the error interface.
func (e *HarnessError) Error() string {
	return e.Message
}

// NewSetupError creates a sandbox or fixture construction error.
func NewSetupError(message string, remediation ...string) *HarnessError {
	return &HarnessError{Category: Setup, Message: message, Remediation: remediation}
}

// NewSubprocessError creates an unexpected-exit error carrying the
// subprocess's stderr.
func NewSubprocessError(message, stderr string, remediation ...string) *HarnessError {
	return &HarnessError{Category: Subprocess, Message: message, Stderr: stderr, Remediation: remediation}
}

// NewParseError creates a transcript parse error.
func NewParseError(message string, remediation ...string) *HarnessError {
	return &HarnessError{Category: Parse, Message: message, Remediation: remediation}
}

// NewTransportError creates a mock-server transport error.
func NewTransportError(message string, remediation ...string) *HarnessError {
	return &HarnessError{Category: Transport, Message: message, Remediation: remediation}
}

// Wrap wraps an existing error with a HarnessError, preserving its message.
func Wrap(err error, category Category, remediation ...string) *HarnessError {
	if err == nil {
		return nil
	}
	return &HarnessError{Category: category, Message: err.Error(), Remediation: remediation}
}

// WrapWithMessage wraps an error with a custom message and category.
func WrapWithMessage(err error, category Category, message string, remediation ...string) *HarnessError {
	if err == nil {
		return nil
	}
	return &HarnessError{
		Category:    category,
		Message:     fmt.Sprintf("%s: %v", message, err),
		Remediation: remediation,
	}
}

// AsHarnessError attempts to convert an error to a HarnessError.
// Returns nil if the error is not one.
func AsHarnessError(err error) *HarnessError {
	harnessErr, ok := err.(*HarnessError)
	if ok {
		return harnessErr
	}
	return nil
}
