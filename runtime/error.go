package runtime

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrDuplicateTask   = errors.New("task already registered")
	ErrAmbiguousTask   = errors.New("task name is ambiguous")
	ErrInvalidTaskName = errors.New("invalid task name")
	ErrUnknownPlugin   = errors.New("unknown plugin")
	ErrTaskAlreadyRun  = errors.New("task already left the registered state")
)

// TaskError wraps a failed task action with execution metadata.
// Metadata carries things like the task name, its duration and an error
// category ("action", "condition") so callers can report failures uniformly.
type TaskError struct {
	Task     string
	Err      error
	Metadata map[string]any
}

// Error implements the error interface
func (e *TaskError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("task %q failed", e.Task)
	}
	return fmt.Sprintf("task %q failed: %v", e.Task, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *TaskError) Unwrap() error {
	return e.Err
}

// NewTaskError creates a new task error for the named task
func NewTaskError(task string, err error) *TaskError {
	return &TaskError{
		Task:     task,
		Err:      err,
		Metadata: make(map[string]any),
	}
}

// WithMetadata adds metadata to the error
func (e *TaskError) WithMetadata(key string, value any) *TaskError {
	e.Metadata[key] = value
	return e
}

// WithType sets the failure category
func (e *TaskError) WithType(errorType string) *TaskError {
	e.Metadata["type"] = errorType
	return e
}

// GetType returns the failure category if set
func (e *TaskError) GetType() string {
	if val, ok := e.Metadata["type"]; ok {
		if errorType, ok := val.(string); ok {
			return errorType
		}
	}
	return ""
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
}
