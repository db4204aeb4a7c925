package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// TaskProvider is a lazily constructed task. The task instance is built the
// first time Get is called, either because something asked for it by name or
// because the executor is about to run it.
type TaskProvider struct {
	name      string
	typ       reflect.Type
	factory   func() Task
	configure []func(Task)
	task      Task
	l         *slog.Logger
}

func (p *TaskProvider) Name() string { return p.name }

// Type returns the concrete task type the provider will construct.
func (p *TaskProvider) Type() reflect.Type { return p.typ }

func (p *TaskProvider) IsRealized() bool { return p.task != nil }

// Configure registers an action applied to the task when it is realized.
// If the task already exists the action runs immediately.
func (p *TaskProvider) Configure(fn func(Task)) {
	if p.task != nil {
		fn(p.task)
		return
	}
	p.configure = append(p.configure, fn)
}

// Get realizes the task on first call and returns the same instance afterwards.
func (p *TaskProvider) Get() (Task, error) {
	if p.task != nil {
		return p.task, nil
	}

	task := p.factory()
	if task == nil {
		return nil, fmt.Errorf("task factory for %q returned nil", p.name)
	}
	task.base().name = p.name

	for _, fn := range p.configure {
		fn(task)
	}
	p.configure = nil
	p.task = task

	p.l.Debug("Realized task", "task", p.name, "type", p.typ.String())
	return task, nil
}

// TaskContainer is the per-project task registry. It is never shared between projects.
type TaskContainer struct {
	providers map[string]*TaskProvider
	l         *slog.Logger
}

func NewTaskContainer(l *slog.Logger) *TaskContainer {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TaskContainer{
		providers: make(map[string]*TaskProvider),
		l:         l,
	}
}

// Register binds name to the task type T without constructing it.
//
//	provider, err := runtime.Register[CompileTask](project.Tasks(), "compile")
func Register[T any, PT interface {
	*T
	Task
}](c *TaskContainer, name string) (*TaskProvider, error) {
	return c.register(name, reflect.TypeOf((*PT)(nil)).Elem(), func() Task { return PT(new(T)) })
}

func (c *TaskContainer) register(name string, typ reflect.Type, factory func() Task) (*TaskProvider, error) {
	if err := validateTaskName(name); err != nil {
		return nil, err
	}
	if _, exists := c.providers[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTask, name)
	}

	provider := &TaskProvider{
		name:    name,
		typ:     typ,
		factory: factory,
		l:       c.l,
	}
	c.providers[name] = provider

	c.l.Debug("Registered task", "task", name, "type", fmt.Sprint(typ))
	return provider, nil
}

// Named looks a task up by exact name first, then by camel-case abbreviation
// ("mPT" or "myPlug" both resolve "myPluginTask").
func (c *TaskContainer) Named(name string) (*TaskProvider, error) {
	if p, ok := c.providers[name]; ok {
		return p, nil
	}
	if name == "" {
		return nil, notFound(name)
	}

	var matches []string
	for _, candidate := range c.Names() {
		if abbreviates(name, candidate) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return nil, notFound(name)
	case 1:
		return c.providers[matches[0]], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguousTask, name, strings.Join(matches, ", "))
	}
}

// Names returns the registered task names in sorted order.
func (c *TaskContainer) Names() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *TaskContainer) Len() int { return len(c.providers) }

func validateTaskName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidTaskName)
	}
	if strings.ContainsAny(name, " \t\r\n:/\\") {
		return fmt.Errorf("%w: %q contains whitespace, ':' or a path separator", ErrInvalidTaskName, name)
	}
	return nil
}

func abbreviates(abbrev, name string) bool {
	parts := splitCamel(abbrev)
	words := splitCamel(name)
	if len(parts) == 0 || len(parts) > len(words) {
		return false
	}
	for i, part := range parts {
		if !strings.HasPrefix(words[i], part) {
			return false
		}
	}
	return true
}

// splitCamel splits "myPluginTask" into ["my", "Plugin", "Task"].
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > start && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}
