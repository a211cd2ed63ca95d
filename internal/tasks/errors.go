package tasks

import (
	"errors"
	"fmt"
)

// ErrorType classifies task operation failures
type ErrorType string

// Task error types
const (
	ErrorTypeInvalidInput     ErrorType = "invalid_input"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeForbidden        ErrorType = "forbidden"
	ErrorTypeStoreUnavailable ErrorType = "store_unavailable"
)

// TaskError represents a failed task or user operation
type TaskError struct {
	Type    ErrorType
	TaskID  string
	Message string
	Cause   error
}

func (e *TaskError) Error() string {
	var msg string
	if e.TaskID != "" {
		msg = fmt.Sprintf("task error [%s] for task %s: %s", e.Type, e.TaskID, e.Message)
	} else {
		msg = fmt.Sprintf("task error [%s]: %s", e.Type, e.Message)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// NewInvalidInputError creates an error for user-correctable input problems
func NewInvalidInputError(message string) *TaskError {
	return &TaskError{
		Type:    ErrorTypeInvalidInput,
		Message: message,
	}
}

// NewTaskNotFoundError creates an error for an unknown task id
func NewTaskNotFoundError(taskID string) *TaskError {
	return &TaskError{
		Type:    ErrorTypeNotFound,
		TaskID:  taskID,
		Message: "Task not found",
	}
}

// NewForbiddenError creates an error for an ownership mismatch
func NewForbiddenError(taskID string) *TaskError {
	return &TaskError{
		Type:    ErrorTypeForbidden,
		TaskID:  taskID,
		Message: "Task belongs to another user",
	}
}

// NewStoreUnavailableError creates an error for a failed collection read or write
func NewStoreUnavailableError(cause error) *TaskError {
	return &TaskError{
		Type:    ErrorTypeStoreUnavailable,
		Message: "task store unavailable",
		Cause:   cause,
	}
}

// ErrorTypeOf returns the type of the first TaskError in err's chain
func ErrorTypeOf(err error) (ErrorType, bool) {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr.Type, true
	}
	return "", false
}

func IsInvalidInput(err error) bool {
	t, ok := ErrorTypeOf(err)
	return ok && t == ErrorTypeInvalidInput
}

func IsNotFound(err error) bool {
	t, ok := ErrorTypeOf(err)
	return ok && t == ErrorTypeNotFound
}

func IsForbidden(err error) bool {
	t, ok := ErrorTypeOf(err)
	return ok && t == ErrorTypeForbidden
}

func IsStoreUnavailable(err error) bool {
	t, ok := ErrorTypeOf(err)
	return ok && t == ErrorTypeStoreUnavailable
}
