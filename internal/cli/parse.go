package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oasislabs/oasis-cli-harness/internal/errors"
	"github.com/oasislabs/oasis-cli-harness/internal/mocktool"
)

var parseCmd = &cobra.Command{
	Use:   "parse [transcript-file]",
	Short: "Decode a mock tool transcript into a YAML call log",
	Long: `Decode the combined stdout of one or more mock tool runs into a YAML
call log: one entry per invocation, in invocation order, each carrying the
tool's name, arguments, environment, and user-script output.

Reads the transcript from the given file, or from stdin when no file is
given.`,
	Example: `  # Decode a captured transcript file
  oasis-harness parse transcript.txt

  # Decode a live invocation
  ./sandbox/bin/npm install | oasis-harness parse`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, err := readTranscript(cmd, args)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}

		invocations, err := mocktool.Parse(string(transcript))
		if err != nil {
			return errors.Wrap(err, errors.Parse)
		}

		out, err := yaml.Marshal(mocktool.NewCallLog(invocations))
		if err != nil {
			return errors.WrapWithMessage(err, errors.Parse, "encoding call log")
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func readTranscript(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(cmd.InOrStdin())
}
