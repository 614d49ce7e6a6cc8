package sandbox

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadConfig decodes the CLI's persisted config.toml into a generic map
// for assertions against its on-disk form.
func (e *Env) LoadConfig() map[string]interface{} {
	e.t.Helper()

	var cfg map[string]interface{}
	if _, err := toml.DecodeFile(e.ConfigFile, &cfg); err != nil {
		e.t.Fatalf("decoding %s: %v", e.ConfigFile, err)
	}
	return cfg
}

// Profile returns one profile table from the CLI's config, failing the test
// if it does not exist.
func (e *Env) Profile(name string) map[string]interface{} {
	e.t.Helper()

	profiles, ok := e.LoadConfig()["profile"].(map[string]interface{})
	if !ok {
		e.t.Fatalf("config has no profile section")
	}
	profile, ok := profiles[name].(map[string]interface{})
	if !ok {
		e.t.Fatalf("config has no profile.%s", name)
	}
	return profile
}

// MetricsEvents returns the raw lines of the CLI's metrics log, one per
// recorded event. A missing file yields no events.
func (e *Env) MetricsEvents() []string {
	e.t.Helper()

	data, err := os.ReadFile(e.MetricsFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		e.t.Fatalf("reading %s: %v", e.MetricsFile, err)
	}

	var events []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			events = append(events, line)
		}
	}
	return events
}

// WriteMetrics replaces the CLI's metrics log with the given lines, creating
// the data directory if the CLI has not yet.
func (e *Env) WriteMetrics(lines ...string) {
	e.t.Helper()

	if err := os.MkdirAll(e.DataDir, 0o755); err != nil {
		e.t.Fatalf("creating data dir: %v", err)
	}
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(e.MetricsFile, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing metrics file: %v", err)
	}
}
