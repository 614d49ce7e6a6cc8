package sandbox

import (
	"os"

	"github.com/go-git/go-git/v5"
)

// InitRepo initializes a git repository at dir with a default committer
// identity, so CLI commands that expect a workspace root (and may commit)
// work inside the sandbox.
func (e *Env) InitRepo(dir string) {
	e.t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("creating repository dir %s: %v", dir, err)
	}
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		e.t.Fatalf("initializing repository at %s: %v", dir, err)
	}

	cfg, err := repo.Config()
	if err != nil {
		e.t.Fatalf("reading repository config: %v", err)
	}
	cfg.User.Name = "Sandbox"
	cfg.User.Email = "sandbox@localhost"
	if err := repo.SetConfig(cfg); err != nil {
		e.t.Fatalf("writing repository config: %v", err)
	}
}
