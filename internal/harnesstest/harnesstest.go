// Package harnesstest provides helpers shared by the harness's own test
// suites: building the oasis-harness binary once per test session and
// launching mock upstream servers against it.
package harnesstest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/oasislabs/oasis-cli-harness/internal/config"
	"github.com/oasislabs/oasis-cli-harness/internal/mockserver"
)

var (
	// harnessBinaryPath caches the built oasis-harness binary path.
	harnessBinaryPath string
	harnessBuildOnce  sync.Once
	harnessBuildErr   error
)

// BuildBinary builds the oasis-harness binary once per test session and
// returns its path.
func BuildBinary(t *testing.T) string {
	t.Helper()

	harnessBuildOnce.Do(func() {
		harnessBinaryPath, harnessBuildErr = buildHarness()
	})
	if harnessBuildErr != nil {
		t.Fatalf("building oasis-harness: %v", harnessBuildErr)
	}
	return harnessBinaryPath
}

func buildHarness() (string, error) {
	root, err := repoRoot()
	if err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "oasis-harness-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "oasis-harness")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/oasis-harness")
	cmd.Dir = root
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("building oasis-harness: %w\nOutput: %s", err, output)
	}
	return binaryPath, nil
}

func repoRoot() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	return filepath.Join(filepath.Dir(currentFile), "..", ".."), nil
}

// StartServer builds the harness binary, launches a mock upstream server of
// the given kind, and registers its shutdown with t.Cleanup.
func StartServer(t *testing.T, kind mockserver.Kind) *mockserver.Proc {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading harness config: %v", err)
	}

	proc, err := mockserver.Start(context.Background(), BuildBinary(t), kind, cfg.ServerHost, kind.StartPort())
	if err != nil {
		t.Fatalf("starting %s server: %v", kind, err)
	}
	t.Cleanup(func() {
		if err := proc.Stop(); err != nil {
			t.Logf("note: stopping %s server: %v", kind, err)
		}
	})
	return proc
}

// StartServerPair launches the toolchain and telemetry servers together.
func StartServerPair(t *testing.T) (*mockserver.Proc, *mockserver.Proc) {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading harness config: %v", err)
	}

	tools, telemetry, err := mockserver.StartPair(context.Background(), BuildBinary(t), cfg.ServerHost)
	if err != nil {
		t.Fatalf("starting server pair: %v", err)
	}
	t.Cleanup(func() {
		if tools != nil {
			_ = tools.Stop()
		}
		if telemetry != nil {
			_ = telemetry.Stop()
		}
	})
	return tools, telemetry
}

// RequireOasis skips the test when the oasis CLI under test cannot be
// resolved, so the suite degrades gracefully on machines without a build.
func RequireOasis(t *testing.T) {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading harness config: %v", err)
	}

	if cfg.OasisDir != "" {
		if _, err := os.Stat(filepath.Join(cfg.OasisDir, cfg.OasisCmd)); err != nil {
			t.Skipf("oasis CLI not found in %s; skipping", cfg.OasisDir)
		}
		return
	}
	if _, err := exec.LookPath(cfg.OasisCmd); err != nil {
		t.Skipf("oasis CLI not on PATH; skipping")
	}
}
