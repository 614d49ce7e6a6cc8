package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasislabs/oasis-cli-harness/internal/errors"
)

func TestCommandRegistration(t *testing.T) {
	t.Parallel()

	want := []string{"serve", "parse", "doctor", "version"}
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "command %s should be registered", name)
	}
}

func TestServeSubcommands(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	for _, cmd := range serveCmd.Commands() {
		names[cmd.Name()] = true
	}
	require.True(t, names["tools"])
	require.True(t, names["telemetry"])
}

func TestUsageArgsWrapsValidationFailures(t *testing.T) {
	t.Parallel()

	// Extra positional arguments are a usage mistake on par with a bad
	// flag and map to the same exit code.
	for _, cmd := range []*cobra.Command{doctorCmd, versionCmd, serveToolsCmd, serveTelemetryCmd} {
		err := cmd.Args(cmd, []string{"unexpected"})
		require.Error(t, err, "command %s should reject positional arguments", cmd.Name())
		assert.Equal(t, ExitInvalidArguments, ExitCodeFor(err))
	}

	err := parseCmd.Args(parseCmd, []string{"one", "two"})
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArguments, ExitCodeFor(err))

	require.NoError(t, parseCmd.Args(parseCmd, []string{"one"}))
	require.NoError(t, doctorCmd.Args(doctorCmd, nil))
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"nil is success": {
			err:  nil,
			want: ExitSuccess,
		},
		"usage error": {
			err:  &usageError{err: assert.AnError},
			want: ExitInvalidArguments,
		},
		"parse error": {
			err:  errors.NewParseError("bad transcript"),
			want: ExitParseFailed,
		},
		"setup error": {
			err:  errors.NewSetupError("git missing"),
			want: ExitMissingPrereqs,
		},
		"transport error": {
			err:  errors.NewTransportError("bind failed"),
			want: ExitRuntimeFailure,
		},
		"plain error": {
			err:  assert.AnError,
			want: ExitRuntimeFailure,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}
