// Package config provides hierarchical configuration for the harness using
// koanf. Values are loaded with priority: environment variables
// (OASIS_HARNESS_*) > project config (.oasis-harness/config.yml) > user
// config (~/.config/oasis-harness/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the harness's environment overrides so they never
// collide with variables meant for the CLI under test.
const envPrefix = "OASIS_HARNESS_"

// Config is the harness configuration.
type Config struct {
	// OasisDir is the directory containing the built oasis binary, placed
	// on every sandbox PATH after the sandbox bin dir. Empty means the
	// binary is resolved from the outer PATH.
	OasisDir string `koanf:"oasis_dir"`

	// OasisCmd is the name of the CLI under test.
	OasisCmd string `koanf:"oasis_cmd"`

	// Platform is the platform segment used when resolving toolchain
	// objects against the mock catalog.
	Platform string `koanf:"platform"`

	// ServerHost is the loopback host the mock upstream servers bind to.
	ServerHost string `koanf:"server_host"`

	// ToolsPort and TelemetryPort are the starting points of the
	// ascending port scans.
	ToolsPort     int `koanf:"tools_port"`
	TelemetryPort int `koanf:"telemetry_port"`

	// KeepSandboxes leaves sandbox directories on disk after each test for
	// post-mortem inspection.
	KeepSandboxes bool `koanf:"keep_sandboxes"`

	// CommandTimeout bounds a single CLI invocation, in seconds. Zero
	// disables the bound; a hung CLI then blocks its test indefinitely.
	CommandTimeout int `koanf:"command_timeout"`
}

// Load reads configuration from the default locations. projectConfigPath
// overrides the project-level file location when non-empty.
func Load(projectConfigPath string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	if userPath, err := UserConfigPath(); err == nil {
		if err := loadFileIfPresent(k, userPath, "user"); err != nil {
			return nil, err
		}
	}

	projectPath := ProjectConfigPath()
	if projectConfigPath != "" {
		projectPath = projectConfigPath
	}
	if err := loadFileIfPresent(k, projectPath, "project"); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.OasisDir = expandHomePath(cfg.OasisDir)
	return &cfg, nil
}

func loadFileIfPresent(k *koanf.Koanf, path, kind string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s config %s: %w", kind, path, err)
	}
	return nil
}

// envTransform maps OASIS_HARNESS_TOOLS_PORT to tools_port.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// expandHomePath expands a leading ~ to the user's home directory.
func expandHomePath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
