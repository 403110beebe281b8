package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/roach88/projdoc/internal/engine"
	"github.com/roach88/projdoc/internal/project"
	"github.com/roach88/projdoc/internal/store"
)

// openDocument loads the project at path with engines wired in. The
// identity is the absolute path, so revisions recorded from different
// working directories line up.
func (o *RootOptions) openDocument(f *OutputFormatter, path string, kind project.EngineKind) (*project.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("bad path: %s", path), err)
	}
	logger := o.logger()
	d, err := project.Load(abs,
		project.WithLogger(logger),
		project.WithEngineFactory(engine.NewFactory(engine.WithLogger(logger))),
		project.WithEngineKind(kind),
	)
	switch {
	case err == nil:
		f.VerboseLog("loaded %s (%s)", abs, d.Format().Encoding)
		return d, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("project file not found: %s", path), err)
	case project.IsMalformed(err):
		return nil, f.Fail(ExitCommandError, ErrCodeMalformed, fmt.Sprintf("malformed project: %s", path), err)
	default:
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to load %s", path), err)
	}
}

func (o *RootOptions) openStore(f *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path, store.WithLogger(o.logger()))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}

func parseEngineKind(s string) (project.EngineKind, error) {
	switch k := project.EngineKind(s); k {
	case project.LegacyEngine, project.FullEngine:
		return k, nil
	}
	return "", NewExitError(ExitCommandError, fmt.Sprintf("invalid engine %q: must be legacy or full", s))
}
