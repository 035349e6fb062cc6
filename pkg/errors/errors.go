// Package errors provides structured error handling for tablelink.
//
// Every failure a link operation can produce is an *Error carrying an
// ErrorType. Callers branch on the category with IsType or with the standard
// library's errors.Is against the exported sentinels:
//
//	res, err := engine.Link(ctx, req)
//	if errors.Is(err, tlerrors.ErrEmptySelection) {
//	    // ask the user to pick at least one column
//	}
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeSourceRead represents unreachable, corrupt or unsupported input
	ErrorTypeSourceRead ErrorType = "source_read"
	// ErrorTypeNoCommonKey represents an empty column intersection in automatic mode
	ErrorTypeNoCommonKey ErrorType = "no_common_key"
	// ErrorTypeMissingKeySelection represents unset key fields
	ErrorTypeMissingKeySelection ErrorType = "missing_key_selection"
	// ErrorTypeEmptySelection represents an empty column selection
	ErrorTypeEmptySelection ErrorType = "empty_selection"
	// ErrorTypeKeyNotFound represents a resolved key absent from one dataset
	ErrorTypeKeyNotFound ErrorType = "key_not_found"
	// ErrorTypeColumnNotFound represents a selected column absent from the source
	ErrorTypeColumnNotFound ErrorType = "column_not_found"
	// ErrorTypeColumnConflict represents a projected column already present in the destination
	ErrorTypeColumnConflict ErrorType = "column_conflict"
	// ErrorTypeWrite represents an unwritable or missing output location
	ErrorTypeWrite ErrorType = "write"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Sentinels for errors.Is. Any *Error of the same type matches.
var (
	ErrSourceRead          = sentinel(ErrorTypeSourceRead)
	ErrNoCommonKey         = sentinel(ErrorTypeNoCommonKey)
	ErrMissingKeySelection = sentinel(ErrorTypeMissingKeySelection)
	ErrEmptySelection      = sentinel(ErrorTypeEmptySelection)
	ErrKeyNotFound         = sentinel(ErrorTypeKeyNotFound)
	ErrColumnNotFound      = sentinel(ErrorTypeColumnNotFound)
	ErrColumnConflict      = sentinel(ErrorTypeColumnConflict)
	ErrWrite               = sentinel(ErrorTypeWrite)
	ErrConfig              = sentinel(ErrorTypeConfig)
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame

	isSentinel bool
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func sentinel(t ErrorType) *Error {
	return &Error{Type: t, Message: string(t), isSentinel: true}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.isSentinel {
		return false
	}
	return t.Type == e.Type
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost *Error in err's chain,
// or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
