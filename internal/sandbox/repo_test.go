package sandbox

import (
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

func TestInitRepo(t *testing.T) {
	env := New(t, DefaultLayout)

	dir := filepath.Join(env.HomeDir, "project")
	env.InitRepo(dir)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	require.Equal(t, "Sandbox", cfg.User.Name)
	require.Equal(t, "sandbox@localhost", cfg.User.Email)
}
