package runtime

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

var _ context.Context = &Execution{}

// Execution is the context handed to Task.Execute. It implements
// context.Context by delegating to the build's context, so tasks can pass it
// straight to anything expecting a context.
type Execution struct {
	ID       string
	BuildID  string
	Project  *Project
	TaskName string
	ctx      context.Context
}

// NewExecution creates the execution context for a single task run.
func NewExecution(ctx context.Context, buildID string, project *Project, taskName string) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Execution{
		ID:       uuid.New().String(),
		BuildID:  buildID,
		Project:  project,
		TaskName: taskName,
		ctx:      ctx,
	}
}

func (e *Execution) Deadline() (deadline time.Time, ok bool) {
	return e.ctx.Deadline()
}

func (e *Execution) Done() <-chan struct{} {
	return e.ctx.Done()
}

func (e *Execution) Err() error {
	return e.ctx.Err()
}

// Value resolves string keys against the project properties before falling
// back to the wrapped context.
func (e *Execution) Value(key any) any {
	if k, ok := key.(string); ok && e.Project != nil {
		if v, found := e.Project.Property(k); found {
			return v
		}
	}
	return e.ctx.Value(key)
}

// WithContext returns a shallow copy of the Execution with a new embedded context.
func (e *Execution) WithContext(ctx context.Context) *Execution {
	copy := *e
	copy.ctx = ctx
	return &copy
}

// Stdout is where task output goes: the project's writer, os.Stdout by default.
func (e *Execution) Stdout() io.Writer {
	if e.Project == nil {
		return os.Stdout
	}
	return e.Project.Stdout()
}

func (e *Execution) Logger() *slog.Logger {
	if e.Project == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Project.Logger().With("task", e.TaskName, "execution_id", e.ID)
}
