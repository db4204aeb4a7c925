package runtime

import "fmt"

// ProjectSpec describes a project as written in build.yaml.
type ProjectSpec struct {
	Name       string              `yaml:"name"`
	Dir        string              `yaml:"-"`
	Plugins    []string            `yaml:"plugins" validate:"dive,plugin_id"`
	Properties map[string]any      `yaml:"properties"`
	Tasks      map[string]TaskSpec `yaml:"tasks" validate:"dive,keys,task_name,endkeys"`

	// Overrides are dotted property paths set after Properties, e.g. from -P flags.
	Overrides map[string]any `yaml:"-"`
}

// TaskSpec configures an already registered task.
type TaskSpec struct {
	Group       string   `yaml:"group,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Enabled     *bool    `yaml:"enabled,omitempty"`
	OnlyIf      []string `yaml:"onlyIf,omitempty" validate:"dive,predicate"`
}

// Validate checks plugin ids, task override names and onlyIf expressions.
func (s ProjectSpec) Validate() error {
	if err := validateConfig(s); err != nil {
		return fmt.Errorf("invalid project %q: %w", s.Name, err)
	}
	return nil
}

func (s TaskSpec) apply(task Task) {
	base := task.base()
	if s.Group != "" {
		base.SetGroup(s.Group)
	}
	if s.Description != "" {
		base.SetDescription(s.Description)
	}
	if s.Enabled != nil {
		base.SetEnabled(*s.Enabled)
	}
	for _, predicate := range s.OnlyIf {
		base.OnlyIf(predicate)
	}
}
