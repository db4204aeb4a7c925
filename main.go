package main

import (
	"os"

	"github.com/kerstholt/taskplug/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
