// Package sandbox constructs the isolated per-test identity the oasis CLI
// runs inside: a private home directory, isolated config/data roots, a
// private bin directory that shadows real executables, and a controlled
// process environment. No two sandboxes share any state; each belongs to
// exactly one test.
package sandbox

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oasislabs/oasis-cli-harness/internal/config"
	"github.com/oasislabs/oasis-cli-harness/internal/mocktool"
)

// Layout selects where the CLI's config and data roots live relative to the
// sandbox home. Every test that touches configuration should run once per
// layout to prove the CLI respects both.
type Layout int

const (
	// DefaultLayout places roots at the conventional locations under the
	// sandbox home (.config and .local/share).
	DefaultLayout Layout = iota
	// CustomPrefixLayout places roots under an explicit prefix and exports
	// XDG_CONFIG_HOME / XDG_DATA_HOME, simulating a non-standard override.
	CustomPrefixLayout
)

// String names the layout for use as a subtest name.
func (l Layout) String() string {
	if l == CustomPrefixLayout {
		return "custom_prefix"
	}
	return "default"
}

// Layouts returns both layouts, in the order tests should run them.
func Layouts() []Layout {
	return []Layout{DefaultLayout, CustomPrefixLayout}
}

// Env is one sandboxed user environment. All paths are private to this
// sandbox; Environ is merged into every invocation and owned exclusively by
// the sandbox's test.
type Env struct {
	// HomeDir is the sandbox's home and the working directory of every
	// invocation that does not override it.
	HomeDir string
	// ConfigDir and DataDir are the CLI's own directories under the
	// configured roots.
	ConfigDir string
	DataDir   string
	// ConfigFile and MetricsFile are the files the CLI persists there.
	ConfigFile  string
	MetricsFile string
	// BinDir is first on PATH, so mock tools installed there shadow the
	// genuine executables.
	BinDir string
	// Environ is the base process environment for every invocation.
	Environ map[string]string

	t          *testing.T
	cfg        *config.Config
	configured bool
}

// Option adjusts sandbox construction.
type Option func(*Env)

// WithOasisDir overrides the directory the oasis binary is expected in.
func WithOasisDir(dir string) Option {
	return func(e *Env) {
		e.cfg.OasisDir = dir
	}
}

// New allocates a fresh sandbox for the given layout. Teardown is
// registered via t.Cleanup; the sandbox directory is removed unless the
// harness is configured to keep sandboxes for inspection.
func New(t *testing.T, layout Layout, opts ...Option) *Env {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading harness config: %v", err)
	}

	home, err := os.MkdirTemp("", "oasis-sandbox-*")
	if err != nil {
		t.Fatalf("allocating sandbox home: %v", err)
	}

	env := &Env{HomeDir: home, t: t, cfg: cfg}
	for _, opt := range opts {
		opt(env)
	}

	var configRoot, dataRoot string
	switch layout {
	case CustomPrefixLayout:
		configRoot = filepath.Join(home, "custom_prefix", "config")
		dataRoot = filepath.Join(home, "custom_prefix", "data")
	default:
		configRoot = filepath.Join(home, ".config")
		dataRoot = filepath.Join(home, ".local", "share")
	}

	env.ConfigDir = filepath.Join(configRoot, "oasis")
	env.DataDir = filepath.Join(dataRoot, "oasis")
	env.ConfigFile = filepath.Join(env.ConfigDir, "config.toml")
	env.MetricsFile = filepath.Join(env.DataDir, "metrics.jsonl")

	env.BinDir = filepath.Join(filepath.Dir(dataRoot), "bin")
	if err := os.MkdirAll(env.BinDir, 0o755); err != nil {
		t.Fatalf("creating sandbox bin dir: %v", err)
	}

	env.Environ = env.baseEnviron()
	if layout == CustomPrefixLayout {
		env.Environ["XDG_CONFIG_HOME"] = configRoot
		env.Environ["XDG_DATA_HOME"] = dataRoot
	}

	t.Cleanup(env.cleanup)
	return env
}

// baseEnviron seeds the invocation environment: sandbox home, rigged PATH,
// and the build-toolchain locations the CLI's own subprocess chain needs.
func (e *Env) baseEnviron() map[string]string {
	outerHome, _ := os.UserHomeDir()

	environ := map[string]string{
		"HOME":        e.HomeDir,
		"CARGO_HOME":  envOr("CARGO_HOME", filepath.Join(outerHome, ".cargo")),
		"RUSTUP_HOME": envOr("RUSTUP_HOME", filepath.Join(outerHome, ".rustup")),
		"PATH":        e.searchPath(),
	}
	return environ
}

// searchPath builds the invocation PATH: the sandbox bin dir first (so mock
// tools shadow genuine ones), then the CLI build output, then a minimal set
// of system directories, then wherever git lives.
func (e *Env) searchPath() string {
	entries := []string{e.BinDir}
	if e.cfg.OasisDir != "" {
		entries = append(entries, e.cfg.OasisDir)
	}
	entries = append(entries, "/usr/bin", "/bin")
	if gitPath, err := exec.LookPath("git"); err == nil {
		entries = append(entries, filepath.Dir(gitPath))
	}
	return strings.Join(entries, string(os.PathListSeparator))
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// InstallMockTool writes a mock executable into the sandbox bin dir, where
// it shadows any genuine tool of the same name.
func (e *Env) InstallMockTool(name, userScript string) string {
	e.t.Helper()

	path := filepath.Join(e.BinDir, name)
	if err := mocktool.Create(path, userScript); err != nil {
		e.t.Fatalf("installing mock %s: %v", name, err)
	}
	return path
}

func (e *Env) cleanup() {
	if e.cfg.KeepSandboxes {
		e.t.Logf("keeping sandbox %s", e.HomeDir)
		return
	}
	if err := os.RemoveAll(e.HomeDir); err != nil {
		e.t.Logf("note: could not remove sandbox: %v", err)
	}
}
