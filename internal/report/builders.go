package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// TopFunctions is how many of the most complex functions a complexity report lists.
const TopFunctions = 5

// Structure builds the structure analysis report.
func Structure(res schema.StructureResult, score int) schema.Report {
	r := newReport(schema.StructureAnalyzer, res.Root)
	r.AddSection("Overview",
		fmt.Sprintf("Total files: %d", res.TotalFiles),
		fmt.Sprintf("Total directories: %d", res.TotalDirectories),
		fmt.Sprintf("Total size: %.1f KB", float64(res.TotalSizeBytes)/1024),
		fmt.Sprintf("Python files: %d", res.PythonFiles),
		fmt.Sprintf("Lines of code: %d", res.TotalLines),
		fmt.Sprintf("Functions: %d", res.TotalFunctions),
		fmt.Sprintf("Classes: %d", res.TotalClasses),
		fmt.Sprintf("Average lines per file: %.1f", res.AvgLinesPerFile),
		fmt.Sprintf("Average functions per file: %.1f", res.AvgFuncsPerFile),
		fmt.Sprintf("File type diversity: %d/10", res.DiversityScore),
	)

	var types []string
	for _, ft := range res.FileTypes {
		types = append(types, fmt.Sprintf("%s: %d", ft.Extension, ft.Count))
	}
	r.AddSection("File Types", types...)

	var dups []string
	for _, g := range res.Duplicates {
		dups = append(dups, strings.Join(sanitizeAll(g.Files), ", "))
	}
	r.AddSection(fmt.Sprintf("Duplicate Files (%d groups)", len(res.Duplicates)), dups...)

	var large []string
	for _, f := range res.LargeFiles {
		large = append(large, fmt.Sprintf("%s (%.1f KB)", contract.SanitizePath(f.Path), float64(f.Size)/1024))
	}
	r.AddSection("Large Files", large...)

	addFindingSections(&r, res.Findings)
	res.Root = r.Target
	res.Findings = r.Findings
	r.Data = res
	r.SetScore(score)
	return r
}

// Syntax builds the syntax check report.
func Syntax(res schema.SyntaxResult, score int) schema.Report {
	r := newReport(schema.SyntaxAnalyzer, res.Root)
	r.AddSection("Overview",
		fmt.Sprintf("Files checked: %d", res.FilesChecked),
		fmt.Sprintf("Valid files: %d", res.ValidFiles),
		fmt.Sprintf("Syntax errors: %d", len(res.Errors)),
		fmt.Sprintf("Style issues: %d", len(res.StyleIssues)),
	)

	var errs []string
	for _, f := range res.Errors {
		errs = append(errs, findingLine(f))
	}
	r.AddSection("Syntax Errors", errs...)

	var style []string
	for _, f := range res.StyleIssues {
		style = append(style, findingLine(f))
	}
	r.AddSection("Style Issues", style...)

	if len(res.Errors) == 0 && res.FilesChecked > 0 {
		r.AddSection("Result", "All Python files parse successfully")
	}

	r.Findings = sanitizeFindings(append(slices.Clone(res.Errors), res.StyleIssues...))
	res.Root = r.Target
	res.Errors = sanitizeFindings(res.Errors)
	res.StyleIssues = sanitizeFindings(res.StyleIssues)
	r.Data = res
	r.SetScore(score)
	return r
}

// Complexity builds the complexity analysis report.
func Complexity(res schema.ComplexityResult, score int) schema.Report {
	r := newReport(schema.ComplexityAnalyzer, res.Root)
	r.AddSection("Overview",
		fmt.Sprintf("Files analyzed: %d", res.FilesAnalyzed),
		fmt.Sprintf("Functions: %d", len(res.Functions)),
		fmt.Sprintf("Classes: %d", len(res.Classes)),
		fmt.Sprintf("Imports: %d", res.Imports),
		fmt.Sprintf("Average complexity: %.2f", res.AvgComplexity),
		fmt.Sprintf("Maximum complexity: %d", res.MaxComplexity),
		fmt.Sprintf("Docstring coverage: %.1f%%", res.DocstringCoverage),
	)

	if len(res.Functions) > 0 {
		r.AddSection("Complexity Distribution",
			fmt.Sprintf("Simple (1-2): %d", res.Bands.Simple),
			fmt.Sprintf("Moderate (3-5): %d", res.Bands.Moderate),
			fmt.Sprintf("Complex (6-10): %d", res.Bands.Complex),
			fmt.Sprintf("Very complex (11+): %d", res.Bands.VeryComplex),
		)
	}

	top := slices.Clone(res.Functions)
	slices.SortStableFunc(top, func(a, b schema.FunctionRecord) int {
		return cmp.Compare(b.Complexity, a.Complexity)
	})
	var topLines []string
	for _, fn := range top[:min(len(top), TopFunctions)] {
		topLines = append(topLines, fmt.Sprintf("%s (%s) complexity %d, %d lines",
			fn.Name, location(fn.File, fn.StartLine), fn.Complexity, fn.Lines()))
	}
	r.AddSection("Most Complex Functions", topLines...)

	if len(res.Classes) > 0 {
		methods, documented := 0, 0
		for _, c := range res.Classes {
			methods += c.MethodCount
			if c.HasDocstring {
				documented++
			}
		}
		r.AddSection("Class Statistics",
			fmt.Sprintf("Classes: %d", len(res.Classes)),
			fmt.Sprintf("Average methods per class: %.1f", float64(methods)/float64(len(res.Classes))),
			fmt.Sprintf("Classes with docstrings: %d", documented),
		)
	}

	addFindingSections(&r, res.Findings)
	res.Root = r.Target
	res.Findings = r.Findings
	res.Functions = slices.Clone(res.Functions)
	for i := range res.Functions {
		res.Functions[i].File = contract.SanitizePath(res.Functions[i].File)
	}
	res.Classes = slices.Clone(res.Classes)
	for i := range res.Classes {
		res.Classes[i].File = contract.SanitizePath(res.Classes[i].File)
	}
	r.Data = res
	r.SetScore(score)
	return r
}

// Security builds the security scan report.
func Security(res schema.SecurityResult, score int) schema.Report {
	r := newReport(schema.SecurityAnalyzer, res.Root)
	counts := schema.CountTiers(res.Findings)
	r.AddSection("Overview",
		fmt.Sprintf("Files scanned: %d", res.FilesScanned),
		fmt.Sprintf("Issues found: %d", counts.Total()),
		fmt.Sprintf("High risk: %d", counts.High),
		fmt.Sprintf("Medium risk: %d", counts.Medium),
		fmt.Sprintf("Low risk: %d", counts.Low),
	)
	addFindingSections(&r, res.Findings)
	r.AddSection("Rule Hits", countLines(res.RuleHits)...)
	if counts.Total() == 0 {
		r.AddSection("Result", "No security issues detected")
	}

	res.Root = r.Target
	res.Findings = r.Findings
	r.Data = res
	r.SetScore(score)
	return r
}

// SQL builds the SQL validation report.
func SQL(res schema.SQLResult, score int) schema.Report {
	r := newReport(schema.SQLAnalyzer, res.Root)
	kinds := map[string]int{}
	for _, s := range res.Statements {
		kinds[s.Kind]++
	}
	r.AddSection("Overview",
		fmt.Sprintf("Files scanned: %d", res.FilesScanned),
		fmt.Sprintf("Statements found: %d", len(res.Statements)),
		fmt.Sprintf("Issues found: %d", len(res.Findings)),
	)
	r.AddSection("Statement Types", countLines(kinds)...)

	var stmts []string
	for _, s := range res.Statements {
		stmts = append(stmts, fmt.Sprintf("%s %s: %s", location(s.File, s.Line), s.Kind, s.Snippet))
	}
	r.AddSection("Statements", stmts...)
	addFindingSections(&r, res.Findings)

	res.Root = r.Target
	res.Findings = r.Findings
	res.Statements = slices.Clone(res.Statements)
	for i := range res.Statements {
		res.Statements[i].File = contract.SanitizePath(res.Statements[i].File)
	}
	r.Data = res
	r.SetScore(score)
	return r
}

// Dependencies builds the dependency inspection report.
func Dependencies(res schema.DependencyResult, score int) schema.Report {
	r := newReport(schema.DependencyAnalyzer, res.Root)
	r.AddSection("Overview",
		fmt.Sprintf("Manifests: %d", len(res.Manifests)),
		fmt.Sprintf("Dependencies: %d", len(res.Dependencies)),
		fmt.Sprintf("Runtime: %d", res.RuntimeCount),
		fmt.Sprintf("Development: %d", res.DevCount),
	)
	r.AddSection("Manifests", sanitizeAll(res.Manifests)...)
	r.AddSection("Unparsed Manifests", sanitizeAll(res.Unparsed)...)

	var deps []string
	for _, d := range res.Dependencies {
		version := d.Constraint
		if version == "" {
			version = "(unpinned)"
		}
		line := fmt.Sprintf("%s %s [%s, %s]", d.Name, version, d.Ecosystem, contract.SanitizePath(d.Manifest))
		if d.Dev {
			line += " dev"
		}
		deps = append(deps, line)
	}
	r.AddSection("Dependencies", deps...)
	addFindingSections(&r, res.Findings)
	r.AddSection("Recommendations", res.Recommendations...)

	res.Root = r.Target
	res.Findings = r.Findings
	res.Manifests = sanitizeAll(res.Manifests)
	res.Unparsed = sanitizeAll(res.Unparsed)
	res.Dependencies = slices.Clone(res.Dependencies)
	for i := range res.Dependencies {
		res.Dependencies[i].Manifest = contract.SanitizePath(res.Dependencies[i].Manifest)
	}
	r.Data = res
	r.SetScore(score)
	return r
}

// Probe builds the live endpoint report.
func Probe(rep schema.EndpointReport, score int) schema.Report {
	r := newReport(schema.ProbeAnalyzer, rep.URL)
	lines := []string{
		fmt.Sprintf("URL: %s", rep.URL),
		fmt.Sprintf("State: %s", rep.State),
	}
	if rep.StatusCode > 0 {
		lines = append(lines, fmt.Sprintf("Status code: %d", rep.StatusCode))
	}
	lines = append(lines, fmt.Sprintf("Response time: %dms", rep.Latency.Milliseconds()))
	r.AddSection("Connection", lines...)

	if rep.State == schema.Accessible || rep.StatusCode > 0 {
		content := []string{
			fmt.Sprintf("Performance: %s", rep.Performance),
			fmt.Sprintf("Content type: %s", rep.ContentType),
			fmt.Sprintf("Content length: %d bytes", rep.ContentLength),
		}
		if rep.Title != "" {
			content = append(content, fmt.Sprintf("Page title: %s", rep.Title))
		}
		if len(rep.Frameworks) > 0 {
			content = append(content, fmt.Sprintf("Frameworks: %s", strings.Join(rep.Frameworks, ", ")))
		}
		if len(rep.Tags) > 0 {
			content = append(content, fmt.Sprintf("HTML elements: %s", strings.Join(rep.Tags, ", ")))
		}
		content = append(content, fmt.Sprintf("Error markers: %s", yesNo(rep.ErrorMarker)))
		r.AddSection("Response", content...)
	}
	if rep.Error != "" {
		r.AddSection("Error", rep.Error)
	}
	r.AddSection("Troubleshooting", rep.Hints...)

	r.Data = rep
	r.SetScore(score)
	return r
}

// React builds the React component analysis report.
func React(res schema.ReactResult, score int) schema.Report {
	r := newReport(schema.ReactAnalyzer, res.Root)
	r.AddSection("Overview",
		fmt.Sprintf("Files scanned: %d", res.FilesScanned),
		fmt.Sprintf("React files: %d", res.ReactFiles),
		fmt.Sprintf("Components: %d", len(res.Components)),
	)

	var comps []string
	for _, c := range res.Components {
		line := fmt.Sprintf("%s (%s)", c.Name, location(c.File, c.Line))
		if len(c.Hooks) > 0 {
			line += " hooks: " + strings.Join(c.Hooks, ", ")
		}
		comps = append(comps, line)
	}
	r.AddSection("Components", comps...)
	r.AddSection("Hook Usage", countLines(res.HookUsage)...)
	if res.ReactFiles == 0 {
		r.AddSection("Result", "No React code detected")
	}
	addFindingSections(&r, res.Findings)

	res.Root = r.Target
	res.Findings = r.Findings
	res.Components = slices.Clone(res.Components)
	for i := range res.Components {
		res.Components[i].File = contract.SanitizePath(res.Components[i].File)
	}
	r.Data = res
	r.SetScore(score)
	return r
}

// Docs builds the documentation quality report.
func Docs(res schema.DocsResult, score int) schema.Report {
	r := newReport(schema.DocsAnalyzer, res.Root)
	r.AddSection("Overview",
		fmt.Sprintf("README: %s", yesNo(res.HasReadme)),
		fmt.Sprintf("Setup instructions: %s", yesNo(res.HasSetupSection)),
		fmt.Sprintf("Documentation files: %d", len(res.DocFiles)),
		fmt.Sprintf("Documented functions: %d/%d (%.1f%%)", res.Documented, res.Functions, res.DocstringCoverage),
		fmt.Sprintf("Comment lines: %d", res.CommentLines),
		fmt.Sprintf("Documentation coverage: %d/100", res.Coverage),
	)
	r.AddSection("Documentation Files", sanitizeAll(res.DocFiles)...)
	addFindingSections(&r, res.Findings)

	res.Root = r.Target
	res.Findings = r.Findings
	res.DocFiles = sanitizeAll(res.DocFiles)
	r.Data = res
	r.SetScore(score)
	return r
}

// General builds the general QA report.
func General(res schema.GeneralResult, score int) schema.Report {
	r := newReport(schema.GeneralAnalyzer, res.Root)
	r.AddSection("Overview",
		fmt.Sprintf("Code files: %d", res.CodeFiles),
		fmt.Sprintf("README: %s", yesNo(res.HasReadme)),
		fmt.Sprintf("Test files: %d", len(res.TestFiles)),
		fmt.Sprintf("Config files: %d", len(res.ConfigFiles)),
		fmt.Sprintf(".gitignore: %s", yesNo(res.HasGitignore)),
		fmt.Sprintf("Dependency manifest: %s", yesNo(res.HasManifest)),
	)
	r.AddSection("Scores",
		fmt.Sprintf("Documentation: %d/10", res.Documentation),
		fmt.Sprintf("Testing: %d/10", res.Testing),
		fmt.Sprintf("Quality: %d/10", res.Quality),
	)
	r.AddSection("Test Files", sanitizeAll(res.TestFiles)...)
	r.AddSection("Config Files", sanitizeAll(res.ConfigFiles)...)
	addFindingSections(&r, res.Findings)

	res.Root = r.Target
	res.Findings = r.Findings
	res.TestFiles = sanitizeAll(res.TestFiles)
	res.ConfigFiles = sanitizeAll(res.ConfigFiles)
	r.Data = res
	r.SetScore(score)
	return r
}
