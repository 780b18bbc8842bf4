// Package errors provides error classification for sshfan.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the classification of errors
type ErrorType int

const (
	// SetupErrorType represents configuration or validation errors
	SetupErrorType ErrorType = iota

	// ConnectionErrorType represents network or SSH connection errors
	ConnectionErrorType

	// AuthenticationErrorType represents SSH authentication failures
	AuthenticationErrorType

	// ExecutionErrorType represents command execution errors
	ExecutionErrorType

	// TimeoutErrorType represents timeout-related errors
	TimeoutErrorType

	// UnknownErrorType represents unclassified errors
	UnknownErrorType
)

// String returns a string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case SetupErrorType:
		return "setup"
	case ConnectionErrorType:
		return "connection"
	case AuthenticationErrorType:
		return "authentication"
	case ExecutionErrorType:
		return "execution"
	case TimeoutErrorType:
		return "timeout"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with classification information
type ClassifiedError struct {
	Type     ErrorType
	Original error
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Original != nil {
		return ce.Original.Error()
	}
	return "unknown error"
}

// Unwrap returns the original error for error unwrapping
func (ce *ClassifiedError) Unwrap() error {
	return ce.Original
}

// Classify analyzes an error and returns its classification
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case isAuthenticationError(errStr):
		return &ClassifiedError{Type: AuthenticationErrorType, Original: err}
	case isTimeoutError(errStr):
		return &ClassifiedError{Type: TimeoutErrorType, Original: err}
	case isConnectionError(errStr):
		return &ClassifiedError{Type: ConnectionErrorType, Original: err}
	case isExecutionError(errStr):
		return &ClassifiedError{Type: ExecutionErrorType, Original: err}
	}

	return &ClassifiedError{Type: UnknownErrorType, Original: err}
}

func isAuthenticationError(errStr string) bool {
	return containsAny(errStr,
		"authentication failed",
		"auth fail",
		"permission denied (publickey)",
		"no supported authentication methods",
		"unable to authenticate",
		"handshake failed: ssh: unable to authenticate",
	)
}

func isTimeoutError(errStr string) bool {
	return containsAny(errStr,
		"timeout",
		"timed out",
		"deadline exceeded",
		"i/o timeout",
	)
}

func isConnectionError(errStr string) bool {
	return containsAny(errStr,
		"connection refused",
		"connection reset",
		"connection closed",
		"network unreachable",
		"no route to host",
		"host unreachable",
		"broken pipe",
		"handshake failed",
		"no such host",
		"unexpected eof",
	)
}

func isExecutionError(errStr string) bool {
	return containsAny(errStr,
		"command not found",
		"exec failed",
		"process exited",
		"signal:",
	)
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// Collector aggregates errors from a run, grouped by type.
type Collector struct {
	errors map[ErrorType][]error
	count  int
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{
		errors: make(map[ErrorType][]error),
	}
}

// Add adds an error to the collector
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	classified := Classify(err)
	c.errors[classified.Type] = append(c.errors[classified.Type], err)
	c.count++
}

// Count returns the total number of errors
func (c *Collector) Count() int {
	return c.count
}

// CountByType returns the number of errors of a specific type
func (c *Collector) CountByType(errorType ErrorType) int {
	return len(c.errors[errorType])
}

// Summary returns a summary of all collected errors
func (c *Collector) Summary() string {
	if c.count == 0 {
		return "no errors"
	}

	var parts []string
	for errorType := ErrorType(0); errorType <= UnknownErrorType; errorType++ {
		if n := len(c.errors[errorType]); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, errorType.String()))
		}
	}

	return fmt.Sprintf("total: %d errors (%s)", c.count, strings.Join(parts, ", "))
}
