// Package core has the canonical analyzers, their scoring policies, the
// analyzer registry and the command entry points built on them.
package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/qascope/qascope/core/scan"
	"github.com/qascope/qascope/core/walk"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// codeExtensions are the extensions counted as source code.
var codeExtensions = []string{
	".py", ".js", ".jsx", ".ts", ".tsx", ".mjs",
	".go", ".java", ".kt", ".scala", ".c", ".h", ".cpp", ".hpp", ".cs",
	".rb", ".php", ".rs", ".swift", ".sh", ".sql",
}

// sourceFile is a walked file together with its root-relative slash path.
type sourceFile struct {
	schema.FileRecord
	Rel string
}

// Execute runs an analysis step and converts errors and panics into a failed report.
func Execute(ctx context.Context, name schema.AnalyzerName, target string, run func(context.Context) (schema.Report, error)) (rep schema.Report) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			contract.Logger().Error("analyzer panicked", "analyzer", name, "panic", p)
			rep = report.Failed(name, target, fmt.Errorf("internal error: %v", p))
		}
		rep.Duration = time.Since(start)
	}()

	rep, err := run(ctx)
	if err != nil {
		contract.Logger().Debug("analyzer failed", "analyzer", name, "target", target, "error", err)
		return report.Failed(name, target, err)
	}
	return rep
}

// sourceFiles lazily yields the files under target that match extensions, with
// paths relative to the analysis root.
func sourceFiles(target schema.AnalysisTarget, extensions ...string) (iter.Seq[sourceFile], error) {
	if target.Path == "" {
		return nil, errors.New("path is required")
	}
	seq, err := walk.Files(target.Path, walk.DefaultOptions(target.Excludes, extensions...))
	if err != nil {
		return nil, err
	}
	base := target.Path
	if resolved, err := filepath.EvalSymlinks(target.Path); err == nil {
		base = resolved
	}
	return func(yield func(sourceFile) bool) {
		for rec := range seq {
			if !yield(sourceFile{FileRecord: rec, Rel: relativePath(base, rec.Path)}) {
				return
			}
		}
	}, nil
}

// relativePath returns path relative to base as a slash path. A path that is
// base itself, or lies outside it, is reported by its base name.
func relativePath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// selfScanned reports whether f holds the scanner's own rule table, judged by
// its absolute path so the result does not depend on the analysis root.
func selfScanned(f sourceFile) bool {
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		abs = f.Path
	}
	return scan.IsSkipped(abs)
}

// readSource reads a text file, logging and skipping unreadable or binary ones.
func readSource(f sourceFile) (string, bool) {
	text, err := walk.ReadText(f.Path)
	if err != nil {
		contract.Logger().Debug("skipping unreadable file", "path", f.Rel, "error", err)
		return "", false
	}
	return text, true
}

// countLines returns the number of lines in text.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// isRootFile reports whether rel names a file directly inside the root.
func isRootFile(rel string) bool {
	return !strings.Contains(rel, "/")
}

// isReadme reports whether rel is a top-level README.
func isReadme(rel string) bool {
	if !isRootFile(rel) {
		return false
	}
	return strings.HasPrefix(strings.ToLower(rel), "readme")
}

// targetRoot returns the root a report is labelled with.
func targetRoot(target schema.AnalysisTarget) string {
	if abs, err := filepath.Abs(target.Path); err == nil {
		return abs
	}
	return target.Path
}
