package runtime

import "context"

// Plugin is the contract every taskplug plugin implements.
// Apply is called once per project when the plugin is activated and is expected
// to configure the project, typically by registering tasks on project.Tasks().
type Plugin interface {
	Apply(project *Project) error
}

// Initializer allows plugins to perform startup initialization.
// Plugins implementing this interface will have Initialize called after every
// plugin of the project has been applied.
type Initializer interface {
	// Initialize is called once per project, after Apply.
	// Use this to open clients or warm caches the plugin's tasks need.
	Initialize(ctx context.Context) error
}

// Shutdowner allows plugins to release resources when a build finishes.
// Shutdown hooks run in reverse order of plugin application.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// PluginFactory builds a fresh plugin instance for a project.
type PluginFactory func() Plugin
