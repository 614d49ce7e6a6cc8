// Package cli implements the oasis-harness command line interface: the mock
// upstream servers the integration suite points the oasis CLI at, transcript
// decoding, and environment diagnostics.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oasislabs/oasis-cli-harness/internal/errors"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "oasis-harness",
	Short: "Fixture toolbox for the oasis CLI integration suite",
	Long: `oasis-harness bundles the supporting processes the oasis CLI
integration suite runs around the CLI under test: mock upstream servers
(toolchain bucket and telemetry sink), mock tool transcript decoding, and
environment diagnostics.

Mock servers announce their bound port as the first line on stdout so the
suite can discover them without fixed port assignments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// usageError marks errors caused by bad flags or arguments so they map to
// their own exit code.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra positional-argument validator so its failures
// carry the same exit code as flag errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// Execute runs the root command, printing any failure to stderr. The caller
// maps the returned error to a process exit code with ExitCodeFor.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func printError(err error) {
	if harnessErr := errors.AsHarnessError(err); harnessErr != nil {
		fmt.Fprintln(os.Stderr, errors.FormatError(harnessErr))
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
}

// ExitCodeFor maps a command error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usage *usageError
	if stderrors.As(err, &usage) {
		return ExitInvalidArguments
	}
	if harnessErr := errors.AsHarnessError(err); harnessErr != nil {
		switch harnessErr.Category {
		case errors.Parse:
			return ExitParseFailed
		case errors.Setup:
			return ExitMissingPrereqs
		}
	}
	return ExitRuntimeFailure
}
