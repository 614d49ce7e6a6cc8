// Package mocktool builds the self-describing stand-in executables that
// shadow real tools (npm, oasis-chain, ...) inside a sandbox, and decodes
// the transcripts they emit back into structured invocation records.
package mocktool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LogEnvVar names the environment variable that, when set for a mock tool
// invocation, makes the tool append its transcript to the named file in
// addition to stdout. The file can then be followed with a Tailer.
const LogEnvVar = "MOCK_TOOL_LOG"

// scriptTemplate is the POSIX shell body of every mock tool. The tool
// announces itself, dumps its environment and arguments, runs the embedded
// user script, and exits with the user script's status. The END MOCK marker
// is printed even when the user script fails so the parser never sees a
// truncated record.
const scriptTemplate = `#!/bin/sh

emit() {
	printf '%%s\n' "$1"
	if [ -n "${MOCK_TOOL_LOG:-}" ]; then
		printf '%%s\n' "$1" >> "$MOCK_TOOL_LOG"
	fi
}

emit "BEGIN MOCK $0"
env | while IFS= read -r __mock_env_line; do
	emit "$__mock_env_line"
done
emit "---"
for __mock_arg in "$@"; do
	emit "$__mock_arg"
done
emit "---"
__mock_user_output=$(%s)
__mock_status=$?
if [ -n "$__mock_user_output" ]; then
	printf '%%s\n' "$__mock_user_output" | while IFS= read -r __mock_out_line; do
		emit "$__mock_out_line"
	done
fi
emit "END MOCK"
exit $__mock_status
`

// Script renders a mock tool with the given user script embedded. An empty
// user script produces a tool that records its invocation and exits 0.
// The user script's stdout lands in the transcript's output section; its
// stderr passes through untouched.
func Script(userScript string) string {
	body := strings.TrimSpace(userScript)
	if body == "" {
		body = ":"
	}
	return fmt.Sprintf(scriptTemplate, body)
}

// Create writes an executable mock tool at path. The tool's recorded name
// is the path it is invoked as, so installing the same script under two
// names yields distinguishable records.
func Create(path, userScript string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating mock tool directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Script(userScript)), 0o755); err != nil {
		return fmt.Errorf("writing mock tool %s: %w", path, err)
	}
	return nil
}
