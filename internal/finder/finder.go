// Package finder discovers the source files under a root directory,
// parses each into its conditional-structure tree, and drives the
// per-platform association passes. The resulting State feeds the
// platform mapper.
package finder

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/src-d/enry/v2"

	"divmap/internal/config"
	"divmap/internal/platform"
	"divmap/internal/preproc"
	"divmap/internal/walkers"
)

// Find walks rootdir, parses every recognized source file, and runs one
// association pass per (platform, file). Parse and evaluation failures
// abort the run; a partially analyzed codebase would report misleading
// divergence totals.
func Find(rootdir string, cfg *config.Config, platforms []*platform.Platform, log *slog.Logger) (*State, error) {
	state := NewState()

	err := filepath.WalkDir(rootdir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootdir && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		if !isSourceFile(path, data, cfg.Languages()) {
			return nil
		}

		rel, err := filepath.Rel(rootdir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		t, err := preproc.Parse(rel, bytes.NewReader(data))
		if err != nil {
			return err
		}

		inCodebase := matchCodebase(rel, cfg.Codebase.Include, cfg.Codebase.Exclude)
		state.AddTree(rel, t, inCodebase)
		log.Debug("parsed source file", "file", rel, "nodes", t.NodeCount(), "codebase", inCodebase)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", rootdir)
	}

	// All files for one platform before the next, each pass on its own
	// platform clone so #define side effects stay within the file.
	for _, p := range platforms {
		for _, filename := range state.Filenames() {
			associator := walkers.NewTreeAssociator(state.Tree(filename), state.Associations(filename))
			if err := associator.Walk(p.Clone()); err != nil {
				return nil, err
			}
		}
		log.Info("associated platform", "platform", p.Name(), "files", len(state.Filenames()))
	}

	return state, nil
}

func shouldSkipDir(name string) bool {
	switch name {
	case "vendor", "node_modules", "build", "dist":
		return true
	}
	return strings.HasPrefix(name, ".")
}

// isSourceFile reports whether the file belongs to one of the analyzed
// languages, using enry's detection over the filename and contents.
func isSourceFile(path string, data []byte, languages []string) bool {
	if enry.IsBinary(data) {
		return false
	}
	lang := enry.GetLanguage(filepath.Base(path), data)
	for _, want := range languages {
		if lang == want {
			return true
		}
	}
	return false
}

// matchCodebase decides codebase membership for a root-relative path.
// Exclusion wins over inclusion.
func matchCodebase(rel string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if matchPattern(pattern, rel) {
			return false
		}
	}
	for _, pattern := range include {
		if matchPattern(pattern, rel) {
			return true
		}
	}
	return false
}

// matchPattern matches a config glob against a slash-separated relative
// path. Patterns match the full path or the base name; a trailing "/**"
// matches everything under a directory.
func matchPattern(pattern, rel string) bool {
	if pattern == "*" || pattern == "**" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return rel == prefix || strings.HasPrefix(rel, prefix+"/")
	}
	if ok, _ := filepath.Match(pattern, rel); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, filepath.Base(rel))
	return ok
}
