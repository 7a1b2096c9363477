package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// DashError is a structured error type with context.
type DashError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Line        int
	Recoverable bool
}

// Error implements the error interface.
func (e *DashError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause error.
func (e *DashError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code.
func (e *DashError) Is(target error) bool {
	var t *DashError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context information to the error.
func (e *DashError) WithContext(key string, value interface{}) *DashError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithLocation adds file location information.
func (e *DashError) WithLocation(filePath string, line int) *DashError {
	e.FilePath = filePath
	e.Line = line
	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *DashError {
	return &DashError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *DashError {
	return &DashError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *DashError {
	return &DashError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *DashError {
	return &DashError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *DashError {
	return &DashError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var de *DashError
	if errors.As(err, &de) {
		return de.Recoverable
	}
	return false
}

// IsType reports whether err is a DashError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DashError
	if errors.As(err, &de) {
		return de.Type == errType
	}
	return false
}

// Logger is the subset of logging.Logger the handler needs.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// Handler routes errors to the log at a level matching their type.
type Handler struct {
	logger Logger
}

// NewHandler creates a new error handler.
func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs err. Recoverable and validation errors are warnings, the rest
// are errors.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var de *DashError
	if !errors.As(err, &de) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	if de.Recoverable || de.Type == ErrorTypeValidation {
		h.logger.Warn(ctx, de, "Recoverable error occurred", "type", de.Type, "code", de.Code)
		return
	}
	h.logger.Error(ctx, de, "Error occurred", "type", de.Type, "code", de.Code)
}

// Common error codes.
const (
	ErrCodeConfigInvalid  = "ERR_CONFIG_INVALID"
	ErrCodeAliasFile      = "ERR_ALIAS_FILE"
	ErrCodeAliasInvalid   = "ERR_ALIAS_INVALID"
	ErrCodeUnknownSection = "ERR_UNKNOWN_SECTION"
	ErrCodeInvalidOrigin  = "ERR_INVALID_ORIGIN"
	ErrCodeWatch          = "ERR_WATCH"
)

// ErrUnknownSection reports an identifier that names no section.
func ErrUnknownSection(id string) *DashError {
	return NewValidationError(ErrCodeUnknownSection, fmt.Sprintf("unknown section: %s", id)).
		WithContext("section", id)
}

// ErrInvalidOrigin reports a rejected websocket origin.
func ErrInvalidOrigin(origin string) *DashError {
	return NewValidationError(ErrCodeInvalidOrigin, fmt.Sprintf("origin not allowed: %s", origin)).
		WithContext("origin", origin)
}
