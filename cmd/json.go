package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kerstholt/taskplug/jsondisplay"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var jsonCmd = &cobra.Command{
	Use:   "json [file]",
	Short: "Print a YAML or JSON document as single-line JSON",
	Long: `Reads a YAML or JSON document from file, or from stdin when no file is
given, and prints it as one line of JSON.

Example:
  taskplug json build.yaml
  echo '{"a": 1}' | taskplug json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJSON,
}

func runJSON(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to parse input: %w", err)
	}

	return jsondisplay.Fprint(cmd.OutOrStdout(), value)
}
