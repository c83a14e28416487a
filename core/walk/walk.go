// Package walk enumerates the regular files under an analysis root.
package walk

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// DefaultSkipDirs are dependency caches, version-control metadata and build output.
var DefaultSkipDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "bower_components",
	"__pycache__", ".venv", "venv", "env", ".tox", ".mypy_cache", ".pytest_cache", ".ruff_cache",
	"dist", "build", ".next", ".nuxt", "target",
	".idea", ".vscode",
}

// Options controls which entries are yielded. The zero value yields every regular file.
type Options struct {
	// SkipDirs are directory base names that are never entered.
	SkipDirs []string

	// Excludes are contract.ShouldIgnore patterns matched against the root-relative path.
	Excludes []string

	// Extensions restricts output to these lower-case extensions (with the dot).
	// An empty set means all extensions.
	Extensions map[string]struct{}
}

// DefaultOptions returns options that skip DefaultSkipDirs and apply the given excludes.
func DefaultOptions(excludes []string, extensions ...string) Options {
	opts := Options{SkipDirs: DefaultSkipDirs, Excludes: excludes}
	if len(extensions) > 0 {
		opts.Extensions = make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			opts.Extensions[strings.ToLower(ext)] = struct{}{}
		}
	}
	return opts
}

// Extension returns the lower-case extension of a path, including the dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Files lazily enumerates regular files under root. A file root yields itself.
// Symbolic links are never followed, so nothing outside root's subtree is visited.
// Unreadable subdirectories are skipped.
func Files(root string, opts Options) (iter.Seq[schema.FileRecord], error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &contract.PathNotFoundError{Path: root}
		}
		return nil, err
	}

	if !info.IsDir() {
		return func(yield func(schema.FileRecord) bool) {
			if !info.Mode().IsRegular() || !opts.wantsExtension(root) {
				return
			}
			yield(schema.FileRecord{Path: root, Extension: Extension(root), Size: info.Size()})
		}, nil
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		skip[d] = struct{}{}
	}

	return func(yield func(schema.FileRecord) bool) {
		_ = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == resolved {
					contract.Logger().Warn("cannot read root", "path", path, "error", walkErr)
					return walkErr
				}
				contract.Logger().Debug("skipping unreadable entry", "path", path, "error", walkErr)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(resolved, path)
			if relErr != nil {
				rel = path
			}

			if d.IsDir() {
				if path == resolved {
					return nil
				}
				if _, ok := skip[d.Name()]; ok {
					return fs.SkipDir
				}
				if len(opts.Excludes) > 0 && contract.ShouldIgnore(filepath.ToSlash(rel)+"/", opts.Excludes) {
					return fs.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}
			if !opts.wantsExtension(path) {
				return nil
			}
			if len(opts.Excludes) > 0 && contract.ShouldIgnore(filepath.ToSlash(rel), opts.Excludes) {
				return nil
			}

			info, infoErr := d.Info()
			if infoErr != nil {
				contract.Logger().Debug("skipping file without info", "path", path, "error", infoErr)
				return nil
			}
			if !yield(schema.FileRecord{Path: path, Extension: Extension(path), Size: info.Size()}) {
				return fs.SkipAll
			}
			return nil
		})
	}, nil
}

// Collect gathers all files yielded by Files into a slice.
func Collect(root string, opts Options) ([]schema.FileRecord, error) {
	seq, err := Files(root, opts)
	if err != nil {
		return nil, err
	}
	var out []schema.FileRecord
	for rec := range seq {
		out = append(out, rec)
	}
	return out, nil
}

// CountDirs returns the number of directories below root that Files would enter.
func CountDirs(root string, opts Options) int {
	skip := make(map[string]struct{}, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		skip[d] = struct{}{}
	}
	count := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if _, ok := skip[d.Name()]; ok {
			return fs.SkipDir
		}
		count++
		return nil
	})
	return count
}

func (o Options) wantsExtension(path string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	_, ok := o.Extensions[Extension(path)]
	return ok
}
