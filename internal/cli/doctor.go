package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oasislabs/oasis-cli-harness/internal/config"
	"github.com/oasislabs/oasis-cli-harness/internal/errors"
	"github.com/oasislabs/oasis-cli-harness/internal/progress"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the environment can run the integration suite",
	Long: `Check the external prerequisites the integration suite needs: the oasis
CLI under test, a POSIX shell, git, and a writable temp directory for
sandboxes. Each check prints a pass/fail line; any failure exits non-zero.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck is one prerequisite probe. detail describes what was found
// (a resolved path, a version); on failure it describes what is missing.
type doctorCheck struct {
	name  string
	probe func(cfg *config.Config) (detail string, err error)
}

var doctorChecks = []doctorCheck{
	{name: "oasis CLI", probe: probeOasis},
	{name: "POSIX shell", probe: probeTool("sh")},
	{name: "git", probe: probeTool("git")},
	{name: "sandbox temp dir", probe: probeTempDir},
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ProjectConfigPath())
	if err != nil {
		return errors.WrapWithMessage(err, errors.Setup, "loading harness config")
	}

	caps := progress.DetectTerminalCapabilities()
	symbols := progress.SelectSymbols(caps)
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	var failed []string
	for _, check := range doctorChecks {
		var s *spinner.Spinner
		if caps.IsTTY {
			s = spinner.New(spinner.CharSets[symbols.SpinnerSet], 100*time.Millisecond,
				spinner.WithWriter(cmd.ErrOrStderr()))
			s.Suffix = " " + check.name
			s.Start()
		}

		detail, probeErr := check.probe(cfg)

		if s != nil {
			s.Stop()
		}
		if probeErr != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", red(symbols.Failure), check.name, probeErr)
			failed = append(failed, check.name)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", green(symbols.Checkmark), check.name, dim(detail))
	}

	if len(failed) > 0 {
		return errors.NewSetupError(
			fmt.Sprintf("missing prerequisites: %s", strings.Join(failed, ", ")),
			"install the missing tools and run 'oasis-harness doctor' again")
	}
	return nil
}

// probeOasis resolves the CLI under test: an explicit build directory wins,
// otherwise PATH decides.
func probeOasis(cfg *config.Config) (string, error) {
	if cfg.OasisDir != "" {
		path := filepath.Join(cfg.OasisDir, cfg.OasisCmd)
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("not found at %s", path)
		}
		if info.Mode()&0o111 == 0 {
			return "", fmt.Errorf("%s is not executable", path)
		}
		return path, nil
	}
	path, err := exec.LookPath(cfg.OasisCmd)
	if err != nil {
		return "", fmt.Errorf("%s not on PATH (set oasis_dir in the harness config to use a build tree)", cfg.OasisCmd)
	}
	return path, nil
}

func probeTool(name string) func(cfg *config.Config) (string, error) {
	return func(cfg *config.Config) (string, error) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%s not on PATH", name)
		}
		return path, nil
	}
}

func probeTempDir(cfg *config.Config) (string, error) {
	dir, err := os.MkdirTemp("", "oasis-doctor-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "probe"), []byte("ok"), 0o644); err != nil {
		return "", fmt.Errorf("temp dir is not writable: %v", err)
	}
	return os.TempDir(), nil
}
