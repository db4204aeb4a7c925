package plugin

import "github.com/kerstholt/taskplug/runtime"

type (
	Plugin        = runtime.Plugin
	Initializer   = runtime.Initializer
	Shutdowner    = runtime.Shutdowner
	Project       = runtime.Project
	Task          = runtime.Task
	DefaultTask   = runtime.DefaultTask
	TaskProvider  = runtime.TaskProvider
	TaskContainer = runtime.TaskContainer
	Execution     = runtime.Execution
)

// Register binds name to task type T on tasks without constructing it.
// The error wraps runtime.ErrDuplicateTask when name is taken.
func Register[T any, PT interface {
	*T
	Task
}](tasks *TaskContainer, name string) (*TaskProvider, error) {
	return runtime.Register[T, PT](tasks, name)
}
