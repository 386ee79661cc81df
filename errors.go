// Package coldcopy structured error types for better error handling
package coldcopy

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Configuration errors: invalid sizes, counts or size arithmetic overflow
	ErrTypeConfig ErrorType = iota
	// Allocation errors: an arena or scratch region could not be obtained
	ErrTypeAlloc
	// Unsupported errors: the selected eviction primitive is unavailable here
	ErrTypeUnsupported
	// State errors: a cycle method called from the wrong lifecycle state
	ErrTypeState
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("coldcopy %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("coldcopy %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConfig:
		return "Configuration"
	case ErrTypeAlloc:
		return "Allocation"
	case ErrTypeUnsupported:
		return "PlatformUnsupported"
	case ErrTypeState:
		return "State"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewConfigError creates a configuration error
func NewConfigError(op string, message string) error {
	return &Error{
		Type:    ErrTypeConfig,
		Op:      op,
		Message: message,
	}
}

// NewAllocError creates an allocation failure error
func NewAllocError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeAlloc,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedError creates a platform-unsupported error
func NewUnsupportedError(op string, message string) error {
	return &Error{
		Type:    ErrTypeUnsupported,
		Op:      op,
		Message: message,
	}
}

// NewStateError creates a lifecycle state error
func NewStateError(op string, message string) error {
	return &Error{
		Type:    ErrTypeState,
		Op:      op,
		Message: message,
	}
}

// Common pre-defined errors

var (
	// ErrZeroCopyCount indicates a pool configured with no copies
	ErrZeroCopyCount = NewConfigError("BufferPool", "copy count must be positive")

	// ErrZeroSourceSize indicates an empty source pattern
	ErrZeroSourceSize = NewConfigError("BufferPool", "source size must be positive")

	// ErrSizeOverflow indicates the arena size is not address-space representable
	ErrSizeOverflow = NewConfigError("BufferPool", "arena size overflows")

	// ErrBadAlignment indicates an alignment that is not zero or a power of two
	ErrBadAlignment = NewConfigError("BufferPool", "alignment must be zero or a power of two")

	// ErrCycleFinished indicates reuse of a torn-down benchmark cycle
	ErrCycleFinished = NewStateError("Run", "cycle already ran")
)

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeConfig
	}
	return false
}

// IsAllocError checks if an error is an allocation failure
func IsAllocError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeAlloc
	}
	return false
}

// IsUnsupportedError checks if an error is a platform-unsupported error
func IsUnsupportedError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeUnsupported
	}
	return false
}

// IsStateError checks if an error is a lifecycle state error
func IsStateError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeState
	}
	return false
}
