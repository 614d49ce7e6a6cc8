package cli

// Exit codes for the oasis-harness CLI.
// These codes support programmatic composition and CI integration.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitRuntimeFailure indicates a failure while running the command
	ExitRuntimeFailure = 1

	// ExitParseFailed indicates a mock tool transcript could not be decoded
	ExitParseFailed = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingPrereqs indicates required external tools are missing
	ExitMissingPrereqs = 4
)
