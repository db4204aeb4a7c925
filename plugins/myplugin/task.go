package myplugin

import (
	"fmt"

	"github.com/kerstholt/taskplug/runtime/plugin"
)

const (
	Group       = "My custom tasks"
	Description = "Task #1 from my custom gradle plugin"
	Greeting    = "Hello from my custom plugin!"
)

// Task prints Greeting when executed.
type Task struct {
	plugin.DefaultTask
}

func (t *Task) Group() string { return Group }

func (t *Task) Description() string { return Description }

func (t *Task) Execute(exec *plugin.Execution) error {
	_, err := fmt.Fprintln(exec.Stdout(), Greeting)
	return err
}
