package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/oasislabs/oasis-cli-harness/internal/errors"
)

// Result captures one finished invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

type runOptions struct {
	env          map[string]string
	input        string
	dir          string
	checkDisable bool
	discard      bool
}

// RunOption adjusts a single invocation.
type RunOption func(*runOptions)

// WithEnv merges extra environment variables over the sandbox base
// environment for this invocation only.
func WithEnv(env map[string]string) RunOption {
	return func(o *runOptions) { o.env = env }
}

// WithInput feeds the command's standard input.
func WithInput(input string) RunOption {
	return func(o *runOptions) { o.input = input }
}

// WithDir runs the command in dir instead of the sandbox home.
func WithDir(dir string) RunOption {
	return func(o *runOptions) { o.dir = dir }
}

// CheckDisabled opts out of the non-zero-exit test failure, for tests that
// assert on the failure itself.
func CheckDisabled() RunOption {
	return func(o *runOptions) { o.checkDisable = true }
}

// Run executes a shell command inside the sandbox. The first Run in an
// unconfigured sandbox performs the CLI's first-run configuration with
// default answers before the command itself. A non-zero exit fails the test
// with the captured stderr unless CheckDisabled is given.
func (e *Env) Run(command string, opts ...RunOption) Result {
	e.t.Helper()

	if !e.configured {
		e.ForceDefaultConfiguration()
	}

	result, err := e.exec(command, opts...)
	if err != nil {
		e.t.Fatalf("running %q: %v", command, err)
	}

	options := collectOptions(opts)
	if result.ExitCode != 0 && !options.checkDisable {
		failure := errors.NewSubprocessError(
			fmt.Sprintf("command %q exited with status %d", command, result.ExitCode),
			result.Stderr)
		e.t.Fatal(errors.FormatErrorPlain(failure))
	}
	return result
}

// exec runs the command without the lazy-configuration hook or the exit
// check. First-run configuration itself goes through here.
func (e *Env) exec(command string, opts ...RunOption) (Result, error) {
	options := collectOptions(opts)

	ctx := context.Background()
	if e.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.CommandTimeout)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.HomeDir
	if options.dir != "" {
		cmd.Dir = options.dir
	}
	cmd.Env = e.mergedEnviron(options.env)
	cmd.Stdin = strings.NewReader(options.input)

	var stdout, stderr bytes.Buffer
	if !options.discard {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return result, fmt.Errorf("starting command: %w", err)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}

// mergedEnviron flattens the sandbox environment with per-invocation
// overrides into the form exec.Cmd wants. Keys are sorted so the
// environment a mock tool records is deterministic.
func (e *Env) mergedEnviron(overrides map[string]string) []string {
	merged := make(map[string]string, len(e.Environ)+len(overrides))
	for k, v := range e.Environ {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	environ := make([]string, 0, len(keys))
	for _, k := range keys {
		environ = append(environ, k+"="+merged[k])
	}
	return environ
}

func collectOptions(opts []RunOption) runOptions {
	var options runOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// discardOutput is used by first-run configuration, which nobody asserts
// against.
func discardOutput() RunOption {
	return func(o *runOptions) { o.discard = true }
}
