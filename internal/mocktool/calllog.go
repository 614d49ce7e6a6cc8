package mocktool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CallLogEntry is the YAML form of one Invocation.
type CallLogEntry struct {
	Name   string            `yaml:"name"`
	Args   []string          `yaml:"args,omitempty"`
	Env    map[string]string `yaml:"env,omitempty"`
	Output string            `yaml:"output,omitempty"`
}

// CallLog wraps a sequence of entries for YAML serialization. It is the
// format printed by `oasis-harness parse` and used for fixture files.
type CallLog struct {
	Entries []CallLogEntry `yaml:"entries"`
}

// NewCallLog converts parsed invocations into a serializable call log.
func NewCallLog(invocations []Invocation) CallLog {
	log := CallLog{Entries: make([]CallLogEntry, 0, len(invocations))}
	for _, inv := range invocations {
		log.Entries = append(log.Entries, CallLogEntry{
			Name:   inv.Name,
			Args:   inv.Args,
			Env:    inv.Env,
			Output: inv.Output,
		})
	}
	return log
}

// Invocations converts the call log back into invocation records.
func (log CallLog) Invocations() []Invocation {
	invocations := make([]Invocation, 0, len(log.Entries))
	for _, entry := range log.Entries {
		invocations = append(invocations, Invocation{
			Name:   entry.Name,
			Args:   entry.Args,
			Env:    entry.Env,
			Output: entry.Output,
		})
	}
	return invocations
}

// WriteCallLog writes invocations to a YAML file.
func WriteCallLog(path string, invocations []Invocation) error {
	data, err := yaml.Marshal(NewCallLog(invocations))
	if err != nil {
		return fmt.Errorf("marshaling call log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing call log to %s: %w", path, err)
	}
	return nil
}

// ReadCallLog reads a YAML call log file.
func ReadCallLog(path string) (CallLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CallLog{}, fmt.Errorf("reading call log from %s: %w", path, err)
	}
	var log CallLog
	if err := yaml.Unmarshal(data, &log); err != nil {
		return CallLog{}, fmt.Errorf("unmarshaling call log: %w", err)
	}
	return log, nil
}
