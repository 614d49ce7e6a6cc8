package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oasislabs/oasis-cli-harness/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print harness version information",
	Args:  usageArgs(cobra.NoArgs),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "oasis-harness %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
