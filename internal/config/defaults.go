package config

import "runtime"

// Defaults returns the default configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"oasis_dir":       "",
		"oasis_cmd":       "oasis",
		"platform":        runtime.GOOS,
		"server_host":     "localhost",
		"tools_port":      8080,
		"telemetry_port":  8090,
		"keep_sandboxes":  false,
		"command_timeout": 0,
	}
}
