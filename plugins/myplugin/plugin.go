// Package myplugin is the example plugin: it registers a single task that prints a greeting.
package myplugin

import "github.com/kerstholt/taskplug/runtime/plugin"

const (
	// ID is the plugin id used in build.yaml and with --plugin.
	ID = "top.kerstholt.my-plugin"

	// TaskName is the name the plugin registers its task under.
	TaskName = "myPluginTask"
)

// Plugin registers myPluginTask on the project it is applied to.
type Plugin struct{}

func New() plugin.Plugin {
	return &Plugin{}
}

// Apply registers the task lazily. A name collision is returned as is.
func (p *Plugin) Apply(project *plugin.Project) error {
	_, err := plugin.Register[Task](project.Tasks(), TaskName)
	return err
}
