package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/Jeffail/gabs/v2"
)

type appliedPlugin struct {
	id     string
	plugin Plugin
}

// Project is the context a plugin is applied against. It owns its task
// container, its properties and the list of applied plugins.
type Project struct {
	name       string
	dir        string
	tasks      *TaskContainer
	properties *gabs.Container
	plugins    []appliedPlugin
	stdout     io.Writer
	l          *slog.Logger
}

type ProjectOption func(*Project)

func WithLogger(l *slog.Logger) ProjectOption {
	return func(p *Project) {
		if l != nil {
			p.l = l
		}
	}
}

// WithStdout redirects what tasks print. Defaults to os.Stdout.
func WithStdout(w io.Writer) ProjectOption {
	return func(p *Project) {
		if w != nil {
			p.stdout = w
		}
	}
}

// WithProperties seeds the project properties like SetProperties, stopping
// silently at the first conflicting key. Use SetProperties to see the error.
func WithProperties(props map[string]any) ProjectOption {
	return func(p *Project) {
		_ = p.SetProperties(props)
	}
}

// copyValue deep-copies maps and slices so SetProperty never writes into
// the caller's data.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = copyValue(item)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = copyValue(item)
		}
		return s
	default:
		return v
	}
}

func NewProject(name, dir string, opts ...ProjectOption) *Project {
	p := &Project{
		name:       name,
		dir:        dir,
		properties: gabs.New(),
		stdout:     os.Stdout,
		l:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.l = p.l.With("project", name)
	p.tasks = NewTaskContainer(p.l)
	return p
}

func (p *Project) Name() string { return p.name }

func (p *Project) Dir() string { return p.dir }

func (p *Project) Tasks() *TaskContainer { return p.tasks }

func (p *Project) Logger() *slog.Logger { return p.l }

func (p *Project) Stdout() io.Writer { return p.stdout }

// Apply activates plugin under id. A plugin id is applied at most once per
// project; applying it again is a no-op.
func (p *Project) Apply(id string, plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("plugin %q cannot be nil", id)
	}
	if p.HasPlugin(id) {
		p.l.Debug("Plugin already applied", "plugin", id)
		return nil
	}

	if err := plugin.Apply(p); err != nil {
		return fmt.Errorf("failed to apply plugin %q: %w", id, err)
	}
	p.plugins = append(p.plugins, appliedPlugin{id: id, plugin: plugin})

	p.l.Info("Applied plugin", "plugin", id)
	return nil
}

func (p *Project) HasPlugin(id string) bool {
	for _, ap := range p.plugins {
		if ap.id == id {
			return true
		}
	}
	return false
}

// Plugins returns the applied plugin ids in application order.
func (p *Project) Plugins() []string {
	ids := make([]string, len(p.plugins))
	for i, ap := range p.plugins {
		ids[i] = ap.id
	}
	return ids
}

// Property returns the value at a dotted path such as "deploy.region".
func (p *Project) Property(path string) (any, bool) {
	if !p.properties.ExistsP(path) {
		return nil, false
	}
	return p.properties.Path(path).Data(), true
}

// SetProperty stores value at a dotted path, creating intermediate objects.
func (p *Project) SetProperty(path string, value any) error {
	if _, err := p.properties.SetP(value, path); err != nil {
		return fmt.Errorf("failed to set property %q: %w", path, err)
	}
	return nil
}

// SetProperties stores a copy of every value in props. Keys are dotted paths
// applied in sorted order, so "deploy.region" lands under "deploy" whether it
// came from build.yaml or from -P. It stops at the first key that cannot be set.
func (p *Project) SetProperties(props map[string]any) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := p.SetProperty(k, copyValue(props[k])); err != nil {
			return err
		}
	}
	return nil
}

// Properties returns the property tree. Callers must not modify it.
func (p *Project) Properties() map[string]any {
	if m, ok := p.properties.Data().(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
