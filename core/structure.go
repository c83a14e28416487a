package core

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/qascope/qascope/core/pyast"
	"github.com/qascope/qascope/core/walk"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// Structure thresholds.
const (
	TopFileTypes      = 10
	LongFileLines     = 1000
	LargeFileBytes    = 5 << 20
	DuplicateMaxBytes = 1 << 20
	noExtensionLabel  = "(none)"
	maxDiversityScore = 10
)

// StructureAnalysis reports file counts, type distribution, duplicates and large files.
type StructureAnalysis struct{}

// Name implements contract.Analyzer.
func (StructureAnalysis) Name() schema.AnalyzerName { return schema.StructureAnalyzer }

// Tool implements contract.Analyzer.
func (StructureAnalysis) Tool() string { return "analyze_code_structure" }

// Description implements contract.Analyzer.
func (StructureAnalysis) Description() string {
	return "Analyze project structure: file types, sizes, lines of code, duplicates and very large files"
}

// Run implements contract.Analyzer.
func (a StructureAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeStructure(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.Structure(res, Score(res.Findings, DefaultPolicy)), nil
	})
}

// AnalyzeStructure walks the target once and gathers structure facts.
func AnalyzeStructure(ctx context.Context, target schema.AnalysisTarget) (schema.StructureResult, error) {
	files, err := sourceFiles(target)
	if err != nil {
		return schema.StructureResult{}, err
	}

	res := schema.StructureResult{
		Root:             targetRoot(target),
		TotalDirectories: walk.CountDirs(target.Path, walk.DefaultOptions(target.Excludes)),
	}
	types := map[string]int{}
	hashes := map[uint64][]string{}
	codeFiles := 0

	for f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.TotalFiles++
		res.TotalSizeBytes += f.Size

		ext := f.Extension
		if ext == "" {
			ext = noExtensionLabel
		}
		types[ext]++

		if f.Size > LargeFileBytes {
			res.LargeFiles = append(res.LargeFiles, schema.FileRecord{Path: f.Rel, Extension: f.Extension, Size: f.Size})
			res.Findings = append(res.Findings, schema.Finding{
				File:        f.Rel,
				Description: fmt.Sprintf("very large file (%.1f MB)", float64(f.Size)/(1<<20)),
				Tier:        schema.LowRisk,
				Category:    schema.CategoryStructure,
			})
		}
		if f.Size == 0 || f.Size > walk.MaxReadBytes {
			continue
		}

		isCode := slices.Contains(codeExtensions, f.Extension)
		if !isCode && f.Size > DuplicateMaxBytes {
			continue
		}
		raw, err := os.ReadFile(f.Path)
		if err != nil {
			contract.Logger().Debug("skipping unreadable file", "path", f.Rel, "error", err)
			continue
		}

		if f.Size <= DuplicateMaxBytes {
			if sum, err := walk.Hash(raw); err == nil {
				hashes[sum] = append(hashes[sum], f.Rel)
			}
		}
		if !isCode {
			continue
		}

		text, err := walk.DecodeText(raw)
		if err != nil {
			continue
		}
		codeFiles++
		lines := countLines(text)
		res.TotalLines += lines
		if lines > LongFileLines {
			res.Findings = append(res.Findings, schema.Finding{
				File:        f.Rel,
				Description: fmt.Sprintf("%d lines, consider splitting the file", lines),
				Tier:        schema.MediumRisk,
				Category:    schema.CategoryStructure,
			})
		}

		if f.Extension == ".py" {
			res.PythonFiles++
			mod, err := pyast.Parse(ctx, []byte(text), f.Rel)
			if err != nil {
				contract.Logger().Debug("structure: skipping unparsable file", "path", f.Rel, "error", err)
				continue
			}
			res.TotalFunctions += len(mod.Functions)
			res.TotalClasses += len(mod.Classes)
		}
	}

	res.FileTypes = topExtensions(types, TopFileTypes)
	res.DiversityScore = min(len(types), maxDiversityScore)
	if codeFiles > 0 {
		res.AvgLinesPerFile = float64(res.TotalLines) / float64(codeFiles)
	}
	if res.PythonFiles > 0 {
		res.AvgFuncsPerFile = float64(res.TotalFunctions) / float64(res.PythonFiles)
	}
	res.Duplicates = duplicateGroups(hashes)
	for _, g := range res.Duplicates {
		res.Findings = append(res.Findings, schema.Finding{
			File:        g.Files[0],
			Description: fmt.Sprintf("identical content in %d files", len(g.Files)),
			Tier:        schema.LowRisk,
			Category:    schema.CategoryStructure,
		})
	}
	return res, nil
}

// topExtensions returns the n most common extensions, ties broken by name.
func topExtensions(types map[string]int, n int) []schema.ExtensionCount {
	exts := slices.Collect(maps.Keys(types))
	slices.SortFunc(exts, func(a, b string) int {
		if c := cmp.Compare(types[b], types[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	out := make([]schema.ExtensionCount, 0, min(n, len(exts)))
	for _, ext := range exts[:min(n, len(exts))] {
		out = append(out, schema.ExtensionCount{Extension: ext, Count: types[ext]})
	}
	return out
}

// duplicateGroups keeps hashes shared by more than one file, ordered by first path.
func duplicateGroups(hashes map[uint64][]string) []schema.DuplicateGroup {
	var groups []schema.DuplicateGroup
	for sum, files := range hashes {
		if len(files) < 2 {
			continue
		}
		slices.Sort(files)
		groups = append(groups, schema.DuplicateGroup{Hash: sum, Files: files})
	}
	slices.SortFunc(groups, func(a, b schema.DuplicateGroup) int {
		return cmp.Compare(a.Files[0], b.Files[0])
	})
	return groups
}
