package main

import (
	"os"

	"github.com/oasislabs/oasis-cli-harness/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCodeFor(err))
	}
}
