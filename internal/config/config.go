package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kerstholt/taskplug/internal/security"
	"github.com/kerstholt/taskplug/runtime"
	"gopkg.in/yaml.v3"
)

// BuildFileName is the build file looked up in the project directory.
const BuildFileName = "build.yaml"

// Settings controls the host itself rather than the project.
type Settings struct {
	LogLevel      string        `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
	LogFormat     string        `yaml:"log_format" default:"text" validate:"oneof=text json"`
	DaemonAddr    string        `yaml:"daemon_addr" default:"localhost:7070" validate:"required,hostname_port"`
	DaemonTimeout time.Duration `yaml:"daemon_timeout" default:"30s" validate:"gte=1s"`
}

// Config is a loaded build file.
type Config struct {
	Project  runtime.ProjectSpec
	Settings Settings

	// Path is the build file location; Found is false when it does not exist.
	Path  string
	Found bool
}

type buildFile struct {
	runtime.ProjectSpec `yaml:",inline"`
	Settings            map[string]any `yaml:"settings"`
}

// Load reads the build file of projectDir. fileName is relative to
// projectDir and must stay inside it; empty means build.yaml.
//
// A missing build.yaml yields a project named after the directory, with no
// plugins and default settings. A missing fileName that was asked for
// explicitly is an error.
func Load(projectDir, fileName string) (*Config, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	explicit := fileName != ""
	if !explicit {
		fileName = BuildFileName
	}
	if !filepath.IsAbs(fileName) {
		fileName = filepath.Join(absDir, fileName)
	}
	buildPath, err := security.ResolveWithinBoundary(absDir, fileName)
	if err != nil {
		return nil, fmt.Errorf("invalid build file path: %w", err)
	}

	cfg := &Config{Path: buildPath}

	var file buildFile
	data, err := os.ReadFile(buildPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to read %s from %q: %w", BuildFileName, buildPath, err)
	default:
		cfg.Found = true
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", BuildFileName, err)
		}
	}

	if err := file.resolveEnv(); err != nil {
		return nil, err
	}

	if err := runtime.InitializeConfig(&cfg.Settings, file.Settings); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", BuildFileName, err)
	}

	cfg.Project = file.ProjectSpec
	cfg.Project.Dir = absDir
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(absDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (f *buildFile) resolveEnv() error {
	if f.Properties != nil {
		resolved, err := ResolveEnv(f.Properties)
		if err != nil {
			return fmt.Errorf("properties: %w", err)
		}
		f.Properties = resolved.(map[string]any)
	}
	if f.Settings != nil {
		resolved, err := ResolveEnv(f.Settings)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		f.Settings = resolved.(map[string]any)
	}
	return nil
}

// Validate checks the fields Load cannot default.
func (c *Config) Validate() error {
	if err := c.Project.Validate(); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(c.Path), err)
	}
	return nil
}

// AddPlugins appends plugin ids not already listed, keeping order.
func (c *Config) AddPlugins(ids ...string) {
	for _, id := range ids {
		found := false
		for _, existing := range c.Project.Plugins {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			c.Project.Plugins = append(c.Project.Plugins, id)
		}
	}
}

// ParseProperties turns "key=value" pairs into property overrides.
// Keys are dotted paths; values are kept as strings.
func ParseProperties(pairs []string) (map[string]any, error) {
	props := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q: expected key=value", pair)
		}
		props[key] = value
	}
	return props, nil
}
