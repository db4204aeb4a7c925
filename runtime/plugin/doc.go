// Package plugin is the API surface for taskplug plugin authors.
//
// Plugin code imports only this package:
//
//	import "github.com/kerstholt/taskplug/runtime/plugin"
//
// # Plugin Structure
//
// A plugin is any type with an Apply method. Apply receives the project the
// plugin is activated against and registers tasks on it:
//
//	type Plugin struct{}
//
//	func (Plugin) Apply(project *plugin.Project) error {
//	    _, err := plugin.Register[GreetTask](project.Tasks(), "greet")
//	    return err
//	}
//
// Registration is lazy. The task value is constructed only when something asks
// for it by name or the executor is about to run it.
//
// # Tasks
//
// Tasks embed DefaultTask and implement Execute. Fixed metadata is expressed
// by overriding Group and Description:
//
//	type GreetTask struct {
//	    plugin.DefaultTask
//	}
//
//	func (t *GreetTask) Group() string       { return "Greetings" }
//	func (t *GreetTask) Description() string { return "Says hello" }
//
//	func (t *GreetTask) Execute(exec *plugin.Execution) error {
//	    _, err := fmt.Fprintln(exec.Stdout(), "hello")
//	    return err
//	}
//
// Execution implements context.Context. Write task output to exec.Stdout(),
// not to os.Stdout, so the daemon can capture it.
//
// # Lifecycle
//
// Plugins may implement Initializer and Shutdowner. Initialize runs once all
// plugins of the project are applied; Shutdown runs when the build ends, in
// reverse order of application.
package plugin
