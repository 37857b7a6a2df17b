// Package errors provides structured error types for the tabular engine.
// Every error carries a category, a code and a message; errors.Is matches
// on category and code so callers can test against the exported sentinels.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by the part of the engine that raised them.
type ErrorCategory string

const (
	ErrCategoryShape    ErrorCategory = "SHAPE"
	ErrCategorySchema   ErrorCategory = "SCHEMA"
	ErrCategoryJoin     ErrorCategory = "JOIN"
	ErrCategoryGroup    ErrorCategory = "GROUP"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Shape codes
	CodeDimensionMismatch = "DIMENSION_MISMATCH"
	CodeIndexOutOfRange   = "INDEX_OUT_OF_RANGE"

	// Schema codes
	CodeUnknownColumn       = "UNKNOWN_COLUMN"
	CodeDuplicateColumnName = "DUPLICATE_COLUMN_NAME"
	CodeTypeMismatch        = "TYPE_MISMATCH"
	CodeInvalidArgument     = "INVALID_ARGUMENT"

	// Join codes
	CodeInvalidJoinKey = "INVALID_JOIN_KEY"

	// Group codes
	CodeGroupOverflow = "GROUP_OVERFLOW"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// Sentinels for errors.Is. Only category and code take part in matching.
var (
	ErrDimensionMismatch   = New(ErrCategoryShape, CodeDimensionMismatch, "dimension mismatch")
	ErrIndexOutOfRange     = New(ErrCategoryShape, CodeIndexOutOfRange, "index out of range")
	ErrUnknownColumn       = New(ErrCategorySchema, CodeUnknownColumn, "unknown column")
	ErrDuplicateColumnName = New(ErrCategorySchema, CodeDuplicateColumnName, "duplicate column name")
	ErrTypeMismatch        = New(ErrCategorySchema, CodeTypeMismatch, "type mismatch")
	ErrInvalidArgument     = New(ErrCategorySchema, CodeInvalidArgument, "invalid argument")
	ErrInvalidJoinKey      = New(ErrCategoryJoin, CodeInvalidJoinKey, "invalid join key")
	ErrGroupOverflow       = New(ErrCategoryGroup, CodeGroupOverflow, "group overflow")
)

// TableError is the structured error type used throughout the engine.
type TableError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *TableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TableError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *TableError) Is(target error) bool {
	var t *TableError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new TableError.
func New(category ErrorCategory, code, message string) *TableError {
	return &TableError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new TableError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *TableError {
	return &TableError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *TableError) WithDetails(details map[string]interface{}) *TableError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a TableError.
func GetCategory(err error) ErrorCategory {
	var te *TableError
	if errors.As(err, &te) {
		return te.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a TableError.
func GetCode(err error) string {
	var te *TableError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// Convenience constructors for the error kinds raised by the engine.

func DimensionMismatch(format string, args ...interface{}) *TableError {
	return New(ErrCategoryShape, CodeDimensionMismatch, fmt.Sprintf(format, args...))
}

func IndexOutOfRange(format string, args ...interface{}) *TableError {
	return New(ErrCategoryShape, CodeIndexOutOfRange, fmt.Sprintf(format, args...))
}

func UnknownColumn(name string) *TableError {
	return New(ErrCategorySchema, CodeUnknownColumn, fmt.Sprintf("unknown column %q", name)).
		WithDetails(map[string]interface{}{"column": name})
}

func DuplicateColumnName(name string) *TableError {
	return New(ErrCategorySchema, CodeDuplicateColumnName, fmt.Sprintf("duplicate column name %q", name)).
		WithDetails(map[string]interface{}{"column": name})
}

func TypeMismatch(format string, args ...interface{}) *TableError {
	return New(ErrCategorySchema, CodeTypeMismatch, fmt.Sprintf(format, args...))
}

func InvalidArgument(format string, args ...interface{}) *TableError {
	return New(ErrCategorySchema, CodeInvalidArgument, fmt.Sprintf(format, args...))
}

func InvalidJoinKey(format string, args ...interface{}) *TableError {
	return New(ErrCategoryJoin, CodeInvalidJoinKey, fmt.Sprintf(format, args...))
}

func GroupOverflow(format string, args ...interface{}) *TableError {
	return New(ErrCategoryGroup, CodeGroupOverflow, fmt.Sprintf(format, args...))
}

func NewInternalError(message string, cause error) *TableError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
