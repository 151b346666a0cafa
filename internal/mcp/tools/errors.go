package tools

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/usestring/formjson-mcp/internal/pipeline"
	"github.com/usestring/formjson-mcp/internal/widgets"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInternal     = "INTERNAL"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapWidgetError converts an error from the widget layer to a coded error.
func WrapWidgetError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	switch {
	case errors.As(err, &coded):
		return coded
	case errors.Is(err, widgets.ErrEmptyID),
		errors.Is(err, pipeline.ErrNotSelectable),
		errors.Is(err, pipeline.ErrUnknownOption):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: err.Error(), Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeInternal, Message: err.Error(), Cause: err}
	}

	slog.Warn("widget error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// toWidgetError converts a recovered pipeline failure for tool output.
func toWidgetError(err *pipeline.Error) *types.WidgetError {
	if err == nil {
		return nil
	}
	return &types.WidgetError{
		Code:    err.Kind.Code(),
		Message: err.Message,
		Status:  err.Status,
	}
}
