package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// App turns ProjectSpecs into configured projects using a plugin registry.
// It holds no per-project state and can be shared between goroutines once built.
type App struct {
	registry *PluginRegistry
	l        *slog.Logger
}

func NewApp(registry *PluginRegistry, l *slog.Logger) *App {
	if registry == nil {
		registry = NewPluginRegistry()
	}
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{
		registry: registry,
		l:        l,
	}
}

func (a *App) Registry() *PluginRegistry { return a.registry }

func (a *App) Logger() *slog.Logger { return a.l }

// NewProject builds a project from spec: properties and overrides first, then
// plugins in the listed order, then task overrides, then Initializer hooks.
func (a *App) NewProject(ctx context.Context, spec ProjectSpec, opts ...ProjectOption) (*Project, error) {
	project := NewProject(spec.Name, spec.Dir, append([]ProjectOption{WithLogger(a.l)}, opts...)...)

	if err := project.SetProperties(spec.Properties); err != nil {
		return nil, fmt.Errorf("invalid properties: %w", err)
	}
	if err := project.SetProperties(spec.Overrides); err != nil {
		return nil, fmt.Errorf("invalid property override: %w", err)
	}

	for _, id := range spec.Plugins {
		factory, err := a.registry.Lookup(id)
		if err != nil {
			return nil, err
		}
		if err := project.Apply(id, factory()); err != nil {
			return nil, err
		}
	}

	taskNames := make([]string, 0, len(spec.Tasks))
	for name := range spec.Tasks {
		taskNames = append(taskNames, name)
	}
	sort.Strings(taskNames)
	for _, name := range taskNames {
		provider, err := project.Tasks().Named(name)
		if err != nil {
			return nil, fmt.Errorf("task configuration for %q: %w", name, err)
		}
		provider.Configure(spec.Tasks[name].apply)
	}

	for _, ap := range project.plugins {
		initializer, ok := ap.plugin.(Initializer)
		if !ok {
			continue
		}
		if err := initializer.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("plugin %q initialization failed: %w", ap.id, err)
		}
	}

	return project, nil
}

// Close runs Shutdowner hooks in reverse order of plugin application.
func (a *App) Close(ctx context.Context, project *Project) error {
	var errs []error
	for i := len(project.plugins) - 1; i >= 0; i-- {
		ap := project.plugins[i]
		shutdowner, ok := ap.plugin.(Shutdowner)
		if !ok {
			continue
		}
		if err := shutdowner.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("plugin %q shutdown failed: %w", ap.id, err))
		}
	}
	return errors.Join(errs...)
}
