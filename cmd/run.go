package cmd

import (
	"fmt"
	"time"

	"github.com/kerstholt/taskplug/runtime"
	"github.com/spf13/cobra"
)

var continueOnFailure bool

var runCmd = &cobra.Command{
	Use:   "run <task>...",
	Short: "Run tasks by name",
	Long: `Run resolves every task name (exact or camel-case abbreviation such as
"mPT") and runs the tasks in the given order. Task output goes to stdout,
log output to stderr.

Example:
  taskplug run myPluginTask
  taskplug run -P env=ci myPluginTask
  taskplug run --continue a b c`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&continueOnFailure, "continue", false, "Keep running remaining tasks after a failure")
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	project, err := s.app.NewProject(ctx, s.cfg.Project, runtime.WithStdout(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	executor := runtime.NewExecutor(s.logger, runtime.WithContinueOnFailure(continueOnFailure))

	start := time.Now()
	result, runErr := executor.Run(ctx, project, args...)

	if err := s.app.Close(ctx, project); err != nil {
		s.logger.Warn("Plugin shutdown failed", "error", err)
	}

	executed, skipped, failed := 0, 0, 0
	for _, o := range result.Outcomes {
		switch o.State {
		case runtime.StateExecuted:
			executed++
		case runtime.StateSkipped:
			skipped++
		case runtime.StateFailed:
			failed++
		}
	}

	if runErr != nil {
		s.logger.Error("Build failed",
			"build_id", result.ID,
			"executed", executed,
			"skipped", skipped,
			"failed", failed,
			"duration", time.Since(start).String())
		return fmt.Errorf("build failed: %w", runErr)
	}

	s.logger.Info("Build successful",
		"build_id", result.ID,
		"executed", executed,
		"skipped", skipped,
		"duration", time.Since(start).String())
	return nil
}
