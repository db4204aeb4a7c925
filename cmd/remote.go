package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/kerstholt/taskplug/internal/config"
	"github.com/kerstholt/taskplug/internal/daemon"
	"github.com/kerstholt/taskplug/runtime"
	"github.com/spf13/cobra"
)

var remoteURL string

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Talk to a running taskplug daemon",
}

var remoteTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the daemon's tasks",
	Args:  cobra.NoArgs,
	RunE:  runRemoteTasks,
}

var remoteRunCmd = &cobra.Command{
	Use:   "run <task>...",
	Short: "Run tasks on the daemon and print their output",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemoteRun,
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteURL, "url", "", "Daemon base URL (defaults to http://<settings.daemon_addr>)")
	remoteTasksCmd.Flags().BoolVar(&showAllTasks, "all", false, "Also show tasks without a group")
	remoteCmd.AddCommand(remoteTasksCmd)
	remoteCmd.AddCommand(remoteRunCmd)
}

func newDaemonClient(s *session) (*daemon.Client, error) {
	url := remoteURL
	if url == "" {
		url = "http://" + s.cfg.Settings.DaemonAddr
	}
	return daemon.NewClient(daemon.Config{
		BaseURL: url,
		Timeout: s.cfg.Settings.DaemonTimeout,
	})
}

func runRemoteTasks(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	client, err := newDaemonClient(s)
	if err != nil {
		return err
	}

	infos, err := client.ListTasks(cmd.Context())
	if err != nil {
		return err
	}

	writeTaskListing(cmd.OutOrStdout(), s.cfg.Project.Name, infos, showAllTasks)
	return nil
}

func runRemoteRun(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	client, err := newDaemonClient(s)
	if err != nil {
		return err
	}

	properties, err := config.ParseProperties(propertyPairs)
	if err != nil {
		return err
	}

	resp, runErr := client.Run(cmd.Context(), args, properties)
	if resp != nil {
		printRemoteRun(cmd.OutOrStdout(), resp)
		for _, o := range resp.Outcomes {
			s.logger.Info("Remote task outcome",
				"build_id", resp.BuildID,
				"task", o.Name,
				"state", o.State,
				"duration_ms", o.DurationMS,
				"error", o.Error)
		}
	}

	var remoteErr *daemon.RemoteError
	if errors.As(runErr, &remoteErr) {
		return fmt.Errorf("remote build failed: %w", remoteErr)
	}
	return runErr
}

func printRemoteRun(w io.Writer, resp *runtime.RunResponse) {
	fmt.Fprint(w, resp.Output)
}
