package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kerstholt/taskplug/runtime"

// TaskOutcome is what happened to one requested task.
type TaskOutcome struct {
	Name     string
	State    TaskState
	Duration time.Duration
	Err      error
}

// BuildResult collects the outcomes of one Executor.Run call.
type BuildResult struct {
	ID       string
	Outcomes []TaskOutcome
}

// Failed reports whether any task ended in StateFailed.
func (r *BuildResult) Failed() bool {
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			return true
		}
	}
	return false
}

// Executor runs tasks by name against a project.
// It resolves names, evaluates enabled/onlyIf, drives the task state machine
// and wraps every action in a tracing span.
type Executor struct {
	l                 *slog.Logger
	evaluator         *ConditionEvaluator
	tracer            trace.Tracer
	continueOnFailure bool
}

type ExecutorOption func(*Executor)

func WithTracer(tracer trace.Tracer) ExecutorOption {
	return func(e *Executor) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithContinueOnFailure keeps running the remaining tasks after a failure.
func WithContinueOnFailure(enabled bool) ExecutorOption {
	return func(e *Executor) {
		e.continueOnFailure = enabled
	}
}

func NewExecutor(l *slog.Logger, opts ...ExecutorOption) *Executor {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Executor{
		l:         l,
		evaluator: NewConditionEvaluator(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the named tasks in request order. All names are resolved
// before anything runs, so a typo fails the build without side effects.
// A name requested twice runs once.
func (e *Executor) Run(ctx context.Context, project *Project, names ...string) (*BuildResult, error) {
	result := &BuildResult{ID: uuid.New().String()}
	if len(names) == 0 {
		return result, fmt.Errorf("no tasks requested")
	}

	var providers []*TaskProvider
	seen := make(map[string]bool)
	for _, name := range names {
		p, err := project.Tasks().Named(name)
		if err != nil {
			return result, err
		}
		if seen[p.Name()] {
			continue
		}
		seen[p.Name()] = true
		providers = append(providers, p)
	}

	var errs []error
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("build %s interrupted before %s: %w", result.ID, p.Name(), err))
			break
		}

		outcome := e.runTask(ctx, result.ID, project, p)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Err != nil {
			errs = append(errs, outcome.Err)
			if !e.continueOnFailure {
				break
			}
		}
	}

	return result, errors.Join(errs...)
}

func (e *Executor) runTask(ctx context.Context, buildID string, project *Project, p *TaskProvider) TaskOutcome {
	name := p.Name()
	outcome := TaskOutcome{Name: name}

	task, err := p.Get()
	if err != nil {
		outcome.State = StateFailed
		outcome.Err = NewTaskError(name, err).WithType("realize")
		return outcome
	}

	base := task.base()
	if base.State() != StateRegistered {
		e.l.DebugContext(ctx, "Task already ran in this build", "task", name, "state", base.State().String())
		outcome.State = base.State()
		return outcome
	}

	ctx, span := e.tracer.Start(ctx, "task "+name, trace.WithAttributes(
		attribute.String("task.name", name),
		attribute.String("task.group", task.Group()),
		attribute.String("project.name", project.Name()),
		attribute.String("build.id", buildID),
	))
	defer span.End()

	exec := NewExecution(ctx, buildID, project, name)

	skip, reason, err := e.shouldSkip(project, task)
	if err != nil {
		_ = base.transition(StateFailed)
		outcome.State = StateFailed
		outcome.Err = NewTaskError(name, err).WithType("condition")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.l.ErrorContext(exec, "Error evaluating task condition", "task", name, "error", err)
		return outcome
	}
	if skip {
		_ = base.transition(StateSkipped)
		outcome.State = StateSkipped
		span.SetAttributes(attribute.String("task.skip_reason", reason))
		e.l.InfoContext(exec, "Skipping task", "task", name, "reason", reason)
		return outcome
	}

	e.l.InfoContext(exec, "Running task", "task", name, "execution_id", exec.ID)

	start := time.Now()
	runErr := execute(task, exec)
	outcome.Duration = time.Since(start)

	if runErr != nil {
		_ = base.transition(StateFailed)
		outcome.State = StateFailed
		outcome.Err = NewTaskError(name, runErr).
			WithType("action").
			WithMetadata("duration_ms", outcome.Duration.Milliseconds())
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		e.l.ErrorContext(exec, "Task failed", "task", name, "error", runErr)
		return outcome
	}

	_ = base.transition(StateExecuted)
	outcome.State = StateExecuted
	e.l.InfoContext(exec, "Task finished", "task", name, "duration", outcome.Duration.String())
	return outcome
}

func (e *Executor) shouldSkip(project *Project, task Task) (bool, string, error) {
	base := task.base()
	if !base.Enabled() {
		return true, "disabled", nil
	}
	for _, predicate := range base.Predicates() {
		ok, err := e.evaluator.Eval(predicate, project, task)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return true, "onlyIf: " + predicate, nil
		}
	}
	return false, "", nil
}

// execute runs the task action, turning a panic into an error.
func execute(task Task, exec *Execution) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(exec)
}
