package core

import (
	"context"
	"path"
	"slices"
	"strings"

	"github.com/qascope/qascope/core/deps"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

var (
	testDirs    = []string{"test", "tests", "__tests__", "spec"}
	configFiles = []string{
		"setup.cfg", "tox.ini", "pytest.ini", "mypy.ini", ".flake8", ".pylintrc", ".ruff.toml", "ruff.toml",
		".editorconfig", ".pre-commit-config.yaml", ".golangci.yml", ".golangci.yaml",
		"tsconfig.json", "jsconfig.json", "babel.config.js", "jest.config.js", "vite.config.js", "vite.config.ts",
		"makefile", "dockerfile", "docker-compose.yml", "docker-compose.yaml", ".qascope.yaml",
	}
	configPrefixes = []string{".eslintrc", ".prettierrc", ".babelrc", ".env.example"}
)

// GeneralAnalysis is a quick QA checklist over the project layout.
type GeneralAnalysis struct{}

// Name implements contract.Analyzer.
func (GeneralAnalysis) Name() schema.AnalyzerName { return schema.GeneralAnalyzer }

// Tool implements contract.Analyzer.
func (GeneralAnalysis) Tool() string { return "run_general_qa_tests" }

// Description implements contract.Analyzer.
func (GeneralAnalysis) Description() string {
	return "Check for documentation, tests, configuration files, .gitignore and a dependency manifest"
}

// Run implements contract.Analyzer.
func (a GeneralAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeGeneral(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.General(res, Score(res.Findings, DefaultPolicy)), nil
	})
}

// AnalyzeGeneral classifies the files under the target and derives the checklist.
func AnalyzeGeneral(ctx context.Context, target schema.AnalysisTarget) (schema.GeneralResult, error) {
	files, err := sourceFiles(target)
	if err != nil {
		return schema.GeneralResult{}, err
	}

	res := schema.GeneralResult{Root: targetRoot(target)}
	docFiles := 0
	for f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		base := path.Base(f.Rel)
		switch {
		case isReadme(f.Rel):
			res.HasReadme = true
			docFiles++
		case slices.Contains(docExtensions, f.Extension):
			docFiles++
		case base == ".gitignore" && isRootFile(f.Rel):
			res.HasGitignore = true
		}

		if deps.IsManifest(base) {
			res.HasManifest = true
		}
		if isConfigFile(base) {
			res.ConfigFiles = append(res.ConfigFiles, f.Rel)
		}
		if slices.Contains(codeExtensions, f.Extension) {
			if isTestFile(f.Rel) {
				res.TestFiles = append(res.TestFiles, f.Rel)
			} else {
				res.CodeFiles++
			}
		}
	}

	res.Documentation = documentationScore(res.HasReadme, docFiles)
	res.Testing = testingScore(len(res.TestFiles), res.CodeFiles)
	res.Quality = qualityScore(res)
	res.Findings = generalFindings(res)
	return res, nil
}

// isTestFile recognizes test files by name or by a test directory in the path.
func isTestFile(rel string) bool {
	base := strings.ToLower(path.Base(rel))
	stem := strings.TrimSuffix(base, path.Ext(base))
	switch {
	case strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py"):
		return true
	case strings.HasSuffix(stem, "_test"):
		return true
	case strings.HasSuffix(stem, ".test"), strings.HasSuffix(stem, ".spec"):
		return true
	}
	for _, dir := range strings.Split(path.Dir(rel), "/") {
		if slices.Contains(testDirs, dir) {
			return true
		}
	}
	return false
}

func isConfigFile(base string) bool {
	lower := strings.ToLower(base)
	if slices.Contains(configFiles, lower) {
		return true
	}
	for _, p := range configPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// documentationScore rates documentation on 0-10.
func documentationScore(hasReadme bool, docFiles int) int {
	score := 0
	if hasReadme {
		score += 6
		docFiles--
	}
	score += min(docFiles, 4)
	return min(score, schema.MaxScore)
}

// testingScore rates the ratio of test files to code files on 0-10.
func testingScore(tests, code int) int {
	switch {
	case tests == 0:
		return 0
	case code == 0:
		return schema.MaxScore
	}
	ratio := float64(tests) / float64(code)
	switch {
	case ratio >= 0.3:
		return 10
	case ratio >= 0.1:
		return 7
	default:
		return 4
	}
}

// qualityScore rates project hygiene on 0-10.
func qualityScore(res schema.GeneralResult) int {
	score := schema.MaxScore
	if !res.HasGitignore {
		score -= 3
	}
	if !res.HasManifest {
		score -= 3
	}
	if len(res.ConfigFiles) == 0 {
		score -= 2
	}
	return score
}

func generalFindings(res schema.GeneralResult) []schema.Finding {
	var out []schema.Finding
	add := func(desc string, tier schema.RiskTier) {
		out = append(out, schema.Finding{File: ".", Description: desc, Tier: tier, Category: schema.CategoryQA})
	}
	if !res.HasReadme {
		add("no README found", schema.HighRisk)
	}
	if len(res.TestFiles) == 0 {
		add("no test files found", schema.HighRisk)
	}
	if !res.HasGitignore {
		add("no .gitignore file", schema.MediumRisk)
	}
	if !res.HasManifest {
		add("no dependency manifest found", schema.MediumRisk)
	}
	if len(res.ConfigFiles) == 0 {
		add("no linter, formatter or build configuration found", schema.LowRisk)
	}
	return out
}
