package cmd

import (
	"fmt"
	"log/slog"

	"github.com/kerstholt/taskplug/internal/config"
	"github.com/kerstholt/taskplug/internal/logging"
	"github.com/kerstholt/taskplug/plugins/myplugin"
	"github.com/kerstholt/taskplug/runtime"
	"github.com/spf13/cobra"
)

var (
	projectDir     string
	buildFileName  string
	pluginIDs      []string
	logLevel       string
	propertyPairs  []string
	pluginRegistry = builtinPlugins()
)

var rootCmd = &cobra.Command{
	Use:   "taskplug",
	Short: "taskplug - plugin-based task runner",
	Long: `taskplug activates the plugins listed in build.yaml against a project and
runs the tasks they register by name.

Example:
  taskplug tasks
  taskplug run myPluginTask
  taskplug --plugin top.kerstholt.my-plugin run mPT`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "d", ".", "Project directory containing build.yaml")
	rootCmd.PersistentFlags().StringVarP(&buildFileName, "build-file", "b", "", "Build file relative to the project directory (default build.yaml)")
	rootCmd.PersistentFlags().StringArrayVar(&pluginIDs, "plugin", nil, "Apply a plugin by id in addition to build.yaml (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringArrayVarP(&propertyPairs, "property", "P", nil, "Set a project property as key=value (repeatable)")

	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(jsonCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
}

// builtinPlugins is the registry of plugins compiled into the binary.
func builtinPlugins() *runtime.PluginRegistry {
	registry := runtime.NewPluginRegistry()
	if err := registry.Register(myplugin.ID, myplugin.New); err != nil {
		panic(fmt.Sprintf("failed to register built-in plugin: %v", err))
	}
	return registry
}

// session is the state every project-facing command needs.
type session struct {
	cfg    *config.Config
	app    *runtime.App
	logger *slog.Logger
}

func loadSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(projectDir, buildFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.AddPlugins(pluginIDs...)

	overrides, err := config.ParseProperties(propertyPairs)
	if err != nil {
		return nil, err
	}
	cfg.Project.Overrides = overrides

	if logLevel != "" {
		cfg.Settings.LogLevel = logLevel
	}

	logger := logging.New(cfg.Settings, cmd.ErrOrStderr())
	logger.Debug("Loaded build file",
		"path", cfg.Path,
		"found", cfg.Found,
		"plugins", cfg.Project.Plugins)

	return &session{
		cfg:    cfg,
		app:    runtime.NewApp(pluginRegistry, logger),
		logger: logger,
	}, nil
}
