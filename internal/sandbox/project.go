package sandbox

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// CreateProject materializes a throwaway project under the sandbox home via
// the CLI's init command and returns its path. Names are random 8-letter
// identifiers; collisions within a test are negligible, not impossible.
func (e *Env) CreateProject() string {
	e.t.Helper()

	name := projectName()
	path := filepath.Join(e.HomeDir, name)
	e.Run(fmt.Sprintf("%s init %s", e.cfg.OasisCmd, path))
	return path
}

// projectName derives an 8-char lowercase-alphabetic identifier from a
// random UUID. Letters only, so the name is valid wherever the CLI embeds
// it (package names reject leading digits).
func projectName() string {
	id := uuid.New()
	name := make([]byte, 8)
	for i := range name {
		name[i] = 'a' + id[i]%26
	}
	return string(name)
}
