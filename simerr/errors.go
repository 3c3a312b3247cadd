// Package simerr defines the error taxonomy shared by the simulation packages.
package simerr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Code identifies the class of a simulation error.
type Code int

const (
	// Unknown represents an unclassified error
	Unknown Code = iota

	// IllegalPhase represents an operation attempted in the wrong engine phase
	IllegalPhase

	// DuplicateAgent represents an agent that is already live
	DuplicateAgent

	// AgentNotFound represents a lookup of an agent that is not live
	AgentNotFound

	// InvalidMessage represents a message violating its invariants
	InvalidMessage

	// AnonymousSender represents a reply attempted to a message without sender
	AnonymousSender

	// TaskFailed represents an agent tick or movement task that failed
	TaskFailed

	// CloneOrder represents a clone constructor that recursed before registering itself
	CloneOrder

	// SessionClosed represents reuse of a finished clone session
	SessionClosed

	// NonEmptyIndex represents a spatial index handed over with content
	NonEmptyIndex

	// InvalidConfiguration represents an invalid configuration value
	InvalidConfiguration

	// RecipientNotFound represents a message addressed to no live agent
	RecipientNotFound
)

// String returns a string representation of the error code.
func (c Code) String() string {
	switch c {
	case Unknown:
		return "unknown"
	case IllegalPhase:
		return "illegal_phase"
	case DuplicateAgent:
		return "duplicate_agent"
	case AgentNotFound:
		return "agent_not_found"
	case InvalidMessage:
		return "invalid_message"
	case AnonymousSender:
		return "anonymous_sender"
	case TaskFailed:
		return "task_failed"
	case CloneOrder:
		return "clone_order"
	case SessionClosed:
		return "session_closed"
	case NonEmptyIndex:
		return "non_empty_index"
	case InvalidConfiguration:
		return "invalid_configuration"
	case RecipientNotFound:
		return "recipient_not_found"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the simulation packages.
type Error struct {
	Code       Code
	Message    string
	Cause      error
	StackTrace string
	Context    map[string]any
}

// New creates a new error with the given code.
func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StackTrace: stackTrace(),
		Context:    make(map[string]any),
	}
}

// Newf creates a new error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error with a cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StackTrace: stackTrace(),
		Context:    make(map[string]any),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or Unknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	return err != nil && errors.Is(err, &Error{Code: code})
}

// stackTrace captures the current stack without this package's frames.
func stackTrace() string {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, 2*len(buf))
	}

	lines := strings.Split(string(buf), "\n")
	cleaned := make([]string, 0, len(lines))
	skip := 0
	for i, line := range lines {
		if strings.Contains(line, "agentsim/simerr.") {
			skip = i + 2
			continue
		}
		if i >= skip {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
