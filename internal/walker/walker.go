// Package walker enumerates project files for analysis and reads their text
// content. Walks are sorted and deterministic; excluded directories are pruned
// by name the way the usual web-project junk dirs (node_modules, vendor, .git)
// need to be.
package walker

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssaudit/internal/config"
)

// Walker enumerates CSS-family and source-family files under a root
type Walker struct {
	cfg config.Config
	log *zap.Logger
}

// New creates a walker for one analysis run
func New(cfg config.Config, log *zap.Logger) *Walker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Walker{cfg: cfg, log: log.Named("walker")}
}

// CSSFiles returns all stylesheet-family files under root, sorted.
// The returned error aggregates per-entry walk failures; the file list is
// valid even when it is non-nil.
func (w *Walker) CSSFiles(root string) ([]string, error) {
	return w.walk(root, w.cfg.IsCSSExtension)
}

// SourceFiles returns all source-family files under root, sorted
func (w *Walker) SourceFiles(root string) ([]string, error) {
	return w.walk(root, w.cfg.IsSourceExtension)
}

func (w *Walker) walk(root string, match func(string) bool) ([]string, error) {
	var files []string
	var errs error

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if match(strings.ToLower(filepath.Ext(root))) {
			abs, err := filepath.Abs(root)
			if err != nil {
				return nil, err
			}
			files = append(files, abs)
		}
		return files, nil
	}

	excluded := make(map[string]struct{}, len(w.cfg.ExcludeDirs))
	for _, d := range w.cfg.ExcludeDirs {
		excluded[d] = struct{}{}
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			errs = multierr.Append(errs, err)
			return nil
		}
		if d.IsDir() {
			if _, skip := excluded[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !match(strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		if IsBinary(path) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		files = append(files, abs)
		return nil
	})
	if walkErr != nil {
		errs = multierr.Append(errs, walkErr)
	}

	sort.Strings(files)
	return files, errs
}

// IsBinary reports whether a file looks binary: a NUL byte within the first
// kilobyte.
func IsBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// NormalizePath returns the identity key for a filesystem path: absolute,
// cleaned, forward-slashed and lowercased, so different reference spellings of
// one file deduplicate.
func NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return strings.ToLower(filepath.ToSlash(abs))
}
