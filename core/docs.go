package core

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/qascope/qascope/core/pyast"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// Documentation coverage weights, out of 100.
const (
	readmeWeight    = 30
	setupWeight     = 10
	docFilesWeight  = 10
	docstringWeight = 0.4 // applied to the docstring coverage percentage
	commentWeight   = 10

	// MinDocstringCoverage is the docstring coverage percentage below which a finding is raised.
	MinDocstringCoverage = 50.0

	// targetCommentRatio earns the full comment weight.
	targetCommentRatio = 0.1
)

var (
	docExtensions = []string{".md", ".rst", ".adoc"}
	setupMarkers  = []string{"install", "setup", "getting started", "quick start", "quickstart"}
)

// DocsAnalysis rates the documentation of a project.
type DocsAnalysis struct{}

// Name implements contract.Analyzer.
func (DocsAnalysis) Name() schema.AnalyzerName { return schema.DocsAnalyzer }

// Tool implements contract.Analyzer.
func (DocsAnalysis) Tool() string { return "analyze_documentation_quality" }

// Description implements contract.Analyzer.
func (DocsAnalysis) Description() string {
	return "Rate documentation: README, setup instructions, documentation files, docstrings and comments"
}

// Run implements contract.Analyzer.
func (a DocsAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeDocs(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.Docs(res, Score(res.Findings, DefaultPolicy)), nil
	})
}

// AnalyzeDocs gathers documentation facts and the 0-100 coverage metric.
func AnalyzeDocs(ctx context.Context, target schema.AnalysisTarget) (schema.DocsResult, error) {
	files, err := sourceFiles(target)
	if err != nil {
		return schema.DocsResult{}, err
	}

	res := schema.DocsResult{Root: targetRoot(target)}
	codeLines := 0
	for f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		readme := isReadme(f.Rel)
		isDoc := slices.Contains(docExtensions, f.Extension)
		isCode := slices.Contains(codeExtensions, f.Extension)
		if readme || isDoc {
			res.DocFiles = append(res.DocFiles, f.Rel)
		}
		if !readme && !isCode {
			continue
		}

		text, ok := readSource(f)
		if !ok {
			continue
		}
		if readme {
			res.HasReadme = true
			res.HasSetupSection = res.HasSetupSection || hasSetupSection(text)
			continue
		}

		codeLines += countLines(text)
		res.CommentLines += commentLines(text, f.Extension)
		if f.Extension != ".py" {
			continue
		}
		mod, err := pyast.Parse(ctx, []byte(text), f.Rel)
		if err != nil {
			contract.Logger().Debug("docs: skipping unparsable file", "path", f.Rel, "error", err)
			continue
		}
		for _, fn := range mod.Functions {
			res.Functions++
			if fn.HasDocstring {
				res.Documented++
			}
		}
	}

	if res.Functions > 0 {
		res.DocstringCoverage = float64(res.Documented) * 100 / float64(res.Functions)
	}
	res.Coverage = docsCoverage(res, codeLines)
	res.Findings = docsFindings(res)
	return res, nil
}

// docsCoverage combines the documentation facts into a 0-100 metric.
func docsCoverage(res schema.DocsResult, codeLines int) int {
	total := 0.0
	if res.HasReadme {
		total += readmeWeight
	}
	if res.HasSetupSection {
		total += setupWeight
	}
	extraDocs := 0
	for _, f := range res.DocFiles {
		if !isReadme(f) {
			extraDocs++
		}
	}
	if extraDocs > 0 {
		total += docFilesWeight
	}
	total += res.DocstringCoverage * docstringWeight
	if codeLines > 0 {
		ratio := float64(res.CommentLines) / float64(codeLines)
		total += math.Min(ratio/targetCommentRatio, 1) * commentWeight
	}
	return min(int(math.Round(total)), 100)
}

func docsFindings(res schema.DocsResult) []schema.Finding {
	var out []schema.Finding
	if !res.HasReadme {
		out = append(out, schema.Finding{
			File:        ".",
			Description: "no README found",
			Tier:        schema.HighRisk,
			Category:    schema.CategoryDocs,
		})
	} else if !res.HasSetupSection {
		out = append(out, schema.Finding{
			File:        readmeName(res.DocFiles),
			Description: "README has no installation or setup section",
			Tier:        schema.MediumRisk,
			Category:    schema.CategoryDocs,
		})
	}
	if res.Functions > 0 && res.DocstringCoverage < MinDocstringCoverage {
		out = append(out, schema.Finding{
			File:        ".",
			Description: fmt.Sprintf("docstring coverage is %.1f%%", res.DocstringCoverage),
			Tier:        schema.MediumRisk,
			Category:    schema.CategoryDocs,
		})
	}
	if missing := res.Functions - res.Documented; missing > 0 {
		out = append(out, schema.Finding{
			File:        ".",
			Description: fmt.Sprintf("%d %s without docstrings", missing, plural(missing, "function")),
			Tier:        schema.LowRisk,
			Category:    schema.CategoryDocs,
		})
	}
	return out
}

func hasSetupSection(readme string) bool {
	lower := strings.ToLower(readme)
	for _, marker := range setupMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func readmeName(docFiles []string) string {
	for _, f := range docFiles {
		if isReadme(f) {
			return f
		}
	}
	return "README"
}

// commentLines counts full-line comments for the comment styles of ext.
func commentLines(text, ext string) int {
	prefixes := []string{"//"}
	switch ext {
	case ".py", ".rb", ".sh":
		prefixes = []string{"#"}
	case ".sql":
		prefixes = []string{"--"}
	}
	n := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				n++
				break
			}
		}
	}
	return n
}
