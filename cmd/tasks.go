package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kerstholt/taskplug/runtime"
	"github.com/spf13/cobra"
)

var showAllTasks bool

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the tasks registered by the project's plugins",
	Args:  cobra.NoArgs,
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().BoolVar(&showAllTasks, "all", false, "Also show tasks without a group")
}

func runTasks(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	project, err := s.app.NewProject(ctx, s.cfg.Project)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.app.Close(ctx, project); err != nil {
			s.logger.Warn("Plugin shutdown failed", "error", err)
		}
	}()

	infos, err := runtime.DescribeTasks(project)
	if err != nil {
		return err
	}

	writeTaskListing(cmd.OutOrStdout(), project.Name(), infos, showAllTasks)
	return nil
}

const otherTasksGroup = "Other tasks"

func writeTaskListing(w io.Writer, projectName string, infos []runtime.TaskInfo, all bool) {
	title := fmt.Sprintf("Tasks runnable from project '%s'", projectName)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))

	groups := make(map[string][]runtime.TaskInfo)
	for _, info := range infos {
		group := info.Group
		if group == "" {
			if !all {
				continue
			}
			group = otherTasksGroup
		}
		groups[group] = append(groups[group], info)
	}

	if len(groups) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No tasks")
		return
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		if name != otherTasksGroup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := groups[otherTasksGroup]; ok {
		names = append(names, otherTasksGroup)
	}

	for _, name := range names {
		fmt.Fprintln(w)
		fmt.Fprintln(w, name)
		fmt.Fprintln(w, strings.Repeat("-", len(name)))
		for _, info := range groups[name] {
			if info.Description == "" {
				fmt.Fprintln(w, info.Name)
				continue
			}
			fmt.Fprintf(w, "%s - %s\n", info.Name, info.Description)
		}
	}
}
