//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oasislabs/oasis-cli-harness/internal/sandbox"
)

func TestBuildWorkspaceResolution(t *testing.T) {
	env := newSandbox(t, sandbox.DefaultLayout)

	projDir := filepath.Join(env.HomeDir, "multiproj")
	require.NoError(t, os.MkdirAll(projDir, 0o755))

	// Without a repository there is no workspace root to resolve against.
	result := env.Run("oasis build", sandbox.WithDir(projDir), sandbox.CheckDisabled())
	require.Contains(t, result.Stderr, "could not find workspace")

	env.InitRepo(projDir)

	result = env.Run("oasis build /", sandbox.WithDir(projDir), sandbox.CheckDisabled())
	require.Contains(t, result.Stderr, "the path `/` exists outside of this workspace")
}
