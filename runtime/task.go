package runtime

import "fmt"

// Task is a named unit of work registered on a project's TaskContainer.
//
// Implementations embed DefaultTask, which supplies the name, state and
// configuration plumbing; they override Group and Description when they carry
// fixed metadata and implement Execute with the task action.
type Task interface {
	Name() string
	Group() string
	Description() string
	Execute(exec *Execution) error

	base() *DefaultTask
}

// TaskState is the lifecycle position of a task within one build.
type TaskState int

const (
	StateRegistered TaskState = iota
	StateExecuted
	StateSkipped
	StateFailed
)

func (s TaskState) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateExecuted:
		return "executed"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultTask holds the state shared by every task. Embed it by value.
type DefaultTask struct {
	name        string
	group       string
	description string
	disabled    bool
	onlyIf      []string
	state       TaskState
}

func (t *DefaultTask) base() *DefaultTask { return t }

// Name returns the name the task was registered under.
func (t *DefaultTask) Name() string { return t.name }

func (t *DefaultTask) Group() string { return t.group }

func (t *DefaultTask) Description() string { return t.description }

func (t *DefaultTask) SetGroup(group string) { t.group = group }

func (t *DefaultTask) SetDescription(description string) { t.description = description }

// Enabled reports whether the executor will run the task's action.
func (t *DefaultTask) Enabled() bool { return !t.disabled }

func (t *DefaultTask) SetEnabled(enabled bool) { t.disabled = !enabled }

// OnlyIf adds a predicate expression. The action runs only when every
// predicate evaluates to true.
func (t *DefaultTask) OnlyIf(expression string) {
	t.onlyIf = append(t.onlyIf, expression)
}

// Predicates returns the onlyIf expressions in the order they were added.
func (t *DefaultTask) Predicates() []string {
	return append([]string(nil), t.onlyIf...)
}

func (t *DefaultTask) State() TaskState { return t.state }

// transition moves the task out of StateRegistered. Every other state is terminal.
func (t *DefaultTask) transition(to TaskState) error {
	if t.state != StateRegistered {
		return fmt.Errorf("%w: %s is %s", ErrTaskAlreadyRun, t.name, t.state)
	}
	t.state = to
	return nil
}
