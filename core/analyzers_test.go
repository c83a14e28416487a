package core

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/qascope/qascope/core/probe"
	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under a fresh temp dir and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func pathTarget(root string) schema.AnalysisTarget {
	return schema.AnalysisTarget{Path: root}
}

func findingsWith(findings []schema.Finding, tier schema.RiskTier) []schema.Finding {
	var out []schema.Finding
	for _, f := range findings {
		if f.Tier == tier {
			out = append(out, f)
		}
	}
	return out
}

const helperSource = `def helper(x):
    """Double x."""
    return x * 2
`

func TestAnalyzeStructure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":        helperSource,
		"pkg/b.py":    helperSource,
		"README.md":   "# demo\n",
		"LICENSE":     "MIT\n",
		"web/app.js":  "console.log('hi');\n",
		"web/app2.js": "export const x = 1;\n",
	})

	res, err := AnalyzeStructure(context.Background(), pathTarget(root))
	require.NoError(t, err)

	assert.Equal(t, 6, res.TotalFiles)
	assert.Equal(t, 2, res.TotalDirectories)
	assert.Equal(t, 2, res.PythonFiles)
	assert.Equal(t, 2, res.TotalFunctions)
	assert.Equal(t, 0, res.TotalClasses)
	assert.Equal(t, 4, res.DiversityScore)
	require.NotEmpty(t, res.FileTypes)
	assert.Equal(t, schema.ExtensionCount{Extension: ".js", Count: 2}, res.FileTypes[0])
	assert.Equal(t, schema.ExtensionCount{Extension: ".py", Count: 2}, res.FileTypes[1])
	assert.Contains(t, res.FileTypes, schema.ExtensionCount{Extension: noExtensionLabel, Count: 1})

	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, []string{"a.py", "pkg/b.py"}, res.Duplicates[0].Files)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "identical content in 2 files", res.Findings[0].Description)
	assert.Equal(t, schema.LowRisk, res.Findings[0].Tier)
}

func TestAnalyzeStructure_LongFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"big.py": strings.Repeat("x = 1\n", LongFileLines+1),
	})

	res, err := AnalyzeStructure(context.Background(), pathTarget(root))
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "big.py", res.Findings[0].File)
	assert.Equal(t, schema.MediumRisk, res.Findings[0].Tier)
	assert.Equal(t, LongFileLines+1, res.TotalLines)
}

func TestSyntaxAndComplexity_SiblingSyntaxError(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad.py":  "def broken(:\n    pass\n",
		"good.py": helperSource,
	})
	ctx := context.Background()

	syntax, err := AnalyzeSyntax(ctx, pathTarget(root))
	require.NoError(t, err)
	assert.Equal(t, 2, syntax.FilesChecked)
	assert.Equal(t, 1, syntax.ValidFiles)
	require.Len(t, syntax.Errors, 1)
	assert.Equal(t, "bad.py", syntax.Errors[0].File)
	assert.Equal(t, schema.HighRisk, syntax.Errors[0].Tier)
	assert.True(t, strings.HasPrefix(syntax.Errors[0].Description, "syntax error: "))

	complexity, err := AnalyzeComplexity(ctx, pathTarget(root))
	require.NoError(t, err)
	assert.Equal(t, 1, complexity.FilesAnalyzed)
	require.Len(t, complexity.Functions, 1)
	assert.Equal(t, "helper", complexity.Functions[0].Name)
	require.Len(t, complexity.Findings, 1)
	assert.Equal(t, "bad.py", complexity.Findings[0].File)
	assert.Equal(t, schema.HighRisk, complexity.Findings[0].Tier)
}

func TestSyntaxAnalysis_Run(t *testing.T) {
	root := writeTree(t, map[string]string{"good.py": helperSource})

	rep := SyntaxAnalysis{}.Run(context.Background(), pathTarget(root))

	require.False(t, rep.Failed, rep.Error)
	require.NotNil(t, rep.Score)
	assert.Equal(t, schema.MaxScore, *rep.Score)
	assert.Equal(t, schema.SyntaxAnalyzer, rep.Analyzer)
}

func TestStyleIssues(t *testing.T) {
	text := strings.Join([]string{
		"x = 1",
		"y = 2   ",
		"\tz = 3",
		"s = '" + strings.Repeat("a", MaxLineLength) + "'",
		"w = 4 ",
	}, "\n")

	issues := styleIssues(text, "style.py")

	require.Len(t, issues, 3)
	assert.Equal(t, 4, issues[0].Line)
	assert.Equal(t, "1 line longer than 120 characters", issues[0].Description)
	assert.Equal(t, 2, issues[1].Line)
	assert.Equal(t, "2 lines with trailing whitespace", issues[1].Description)
	assert.Equal(t, 3, issues[2].Line)
	assert.Equal(t, "1 line indented with tabs", issues[2].Description)
	for _, issue := range issues {
		assert.Equal(t, schema.LowRisk, issue.Tier)
		assert.Equal(t, schema.CategoryStyle, issue.Category)
		assert.Equal(t, "style.py", issue.File)
	}

	assert.Empty(t, styleIssues("clean = True\n", "clean.py"))
}

func TestAnalyzeComplexity_Findings(t *testing.T) {
	src := `def branchy(a, b, c, d, e, f):
    if a:
        return 1
    if b:
        return 2
    if c:
        return 3
    if d:
        return 4
    if e:
        return 5
    if f:
        return 6
    return 0


class Greeter:
    """Says hello."""

    def greet(self):
        return "hi"
`
	root := writeTree(t, map[string]string{"mod.py": src})

	res, err := AnalyzeComplexity(context.Background(), pathTarget(root))
	require.NoError(t, err)

	require.Len(t, res.Functions, 2)
	assert.Equal(t, 7, res.MaxComplexity)
	assert.Equal(t, 1, res.Bands.Simple)
	assert.Equal(t, 1, res.Bands.Complex)
	require.Len(t, res.Classes, 1)
	assert.Equal(t, "Greeter", res.Classes[0].Name)
	assert.InDelta(t, 0.0, res.DocstringCoverage, 0.001)

	require.Len(t, res.Findings, 2)
	assert.Equal(t, "function branchy has complexity 7", res.Findings[0].Description)
	assert.Equal(t, schema.MediumRisk, res.Findings[0].Tier)
	assert.Equal(t, 1, res.Findings[0].Line)
	assert.Equal(t, "function branchy takes 6 parameters", res.Findings[1].Description)
	assert.Equal(t, schema.LowRisk, res.Findings[1].Tier)
}

func TestSecurityAnalysis_Run(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":    "import os\npassword = \"hunter2\"\n",
		"README.md": "password = \"not scanned\"\n",
	})

	rep := SecurityAnalysis{}.Run(context.Background(), pathTarget(root))

	require.False(t, rep.Failed, rep.Error)
	require.NotNil(t, rep.Score)
	assert.Equal(t, 7, *rep.Score)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, "app.py", rep.Findings[0].File)
	assert.Equal(t, 2, rep.Findings[0].Line)
	assert.Equal(t, "hardcoded password", rep.Findings[0].Description)

	res, ok := rep.Data.(schema.SecurityResult)
	require.True(t, ok)
	assert.Equal(t, 1, res.FilesScanned)
	assert.Equal(t, 1, res.RuleHits["hardcoded password"])
}

func TestSecurityAnalysis_Clean(t *testing.T) {
	root := writeTree(t, map[string]string{"app.py": helperSource})

	rep := SecurityAnalysis{}.Run(context.Background(), pathTarget(root))

	require.NotNil(t, rep.Score)
	assert.Equal(t, schema.MaxScore, *rep.Score)
	assert.Empty(t, rep.Findings)
}

func TestScanners_SkipRuleTableFromAnyRoot(t *testing.T) {
	root := writeTree(t, map[string]string{
		"core/scan/rules.go": "var p = `password = \"abc123\"`\nvar q = \"SELECT * FROM users\"\n",
		"core/scan/app.py":   "password = \"abc123\"\nq = \"SELECT * FROM users\"\n",
	})

	for _, sub := range []string{"", "core", filepath.Join("core", "scan")} {
		name := sub
		if name == "" {
			name = "root"
		}
		t.Run(name, func(t *testing.T) {
			target := pathTarget(filepath.Join(root, sub))

			sec, err := AnalyzeSecurity(context.Background(), target)
			require.NoError(t, err)
			assert.Equal(t, 1, sec.FilesScanned)
			require.Len(t, sec.Findings, 1)
			assert.True(t, strings.HasSuffix(sec.Findings[0].File, "app.py"))

			sql, err := AnalyzeSQL(context.Background(), target)
			require.NoError(t, err)
			assert.Equal(t, 1, sql.FilesScanned)
			require.Len(t, sql.Statements, 1)
			assert.True(t, strings.HasSuffix(sql.Statements[0].File, "app.py"))
		})
	}
}

func TestAnalyzeSQL(t *testing.T) {
	root := writeTree(t, map[string]string{
		"queries.py": "def load(cursor, uid):\n    cursor.execute(\"SELECT * FROM users WHERE id = \" + uid)\n",
		"schema.sql": "CREATE TABLE users (id INT);\n",
	})

	res, err := AnalyzeSQL(context.Background(), pathTarget(root))
	require.NoError(t, err)

	assert.Equal(t, 2, res.FilesScanned)
	require.Len(t, res.Statements, 2)
	kinds := []string{res.Statements[0].Kind, res.Statements[1].Kind}
	assert.ElementsMatch(t, []string{"SELECT", "CREATE"}, kinds)

	require.Len(t, findingsWith(res.Findings, schema.HighRisk), 1)
	lows := findingsWith(res.Findings, schema.LowRisk)
	require.Len(t, lows, 1)
	assert.Equal(t, schema.CategorySQLPerformance, lows[0].Category)
	assert.Equal(t, 2, lows[0].Line)
}

func TestAnalyzeDependencies(t *testing.T) {
	root := writeTree(t, map[string]string{
		"requirements.txt": "requests==2.31.0\nflask\n",
		"Gemfile":          "source 'https://rubygems.org'\n",
	})

	res, err := AnalyzeDependencies(context.Background(), pathTarget(root))
	require.NoError(t, err)

	assert.Equal(t, []string{"requirements.txt"}, res.Manifests)
	assert.Equal(t, []string{"Gemfile"}, res.Unparsed)
	assert.Equal(t, 2, res.RuntimeCount)
	assert.Equal(t, 0, res.DevCount)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "flask has no version specified", res.Findings[0].Description)
	assert.Equal(t, schema.MediumRisk, res.Findings[0].Tier)
	assert.Contains(t, res.Recommendations, "pin dependency versions for reproducible installs")
}

func TestAnalyzeDependencies_NoManifest(t *testing.T) {
	root := writeTree(t, map[string]string{"main.py": helperSource})

	rep := DependencyAnalysis{}.Run(context.Background(), pathTarget(root))

	require.False(t, rep.Failed, rep.Error)
	require.NotNil(t, rep.Score)
	assert.Equal(t, schema.MaxScore, *rep.Score)
	res, ok := rep.Data.(schema.DependencyResult)
	require.True(t, ok)
	assert.Equal(t, []string{"no dependency manifest found"}, res.Recommendations)
}

func TestAnalyzeReact(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/App.jsx": `import React, { useState } from "react";

export default function App() {
  const [count, setCount] = useState(0);
  return <button onClick={() => setCount(count + 1)}>{count}</button>;
}
`,
		"src/util.js": "export function add(a, b) {\n  return a + b;\n}\n",
	})

	res, err := AnalyzeReact(context.Background(), pathTarget(root))
	require.NoError(t, err)

	assert.Equal(t, 2, res.FilesScanned)
	assert.Equal(t, 1, res.ReactFiles)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "App", res.Components[0].Name)
	assert.Equal(t, "src/App.jsx", res.Components[0].File)
	assert.Equal(t, 1, res.HookUsage["useState"])
}

func TestAnalyzeDocs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":     "# Demo\n\n## Installation\n\npip install demo\n",
		"docs/guide.md": "# Guide\n",
		"app.py": `# entry point
def documented():
    """Has a docstring."""
    return 1


def bare():
    return 2
`,
	})

	res, err := AnalyzeDocs(context.Background(), pathTarget(root))
	require.NoError(t, err)

	assert.True(t, res.HasReadme)
	assert.True(t, res.HasSetupSection)
	assert.ElementsMatch(t, []string{"README.md", "docs/guide.md"}, res.DocFiles)
	assert.Equal(t, 2, res.Functions)
	assert.Equal(t, 1, res.Documented)
	assert.InDelta(t, 50.0, res.DocstringCoverage, 0.001)
	assert.Equal(t, 1, res.CommentLines)
	assert.Greater(t, res.Coverage, 50)
	assert.LessOrEqual(t, res.Coverage, 100)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "1 function without docstrings", res.Findings[0].Description)
	assert.Equal(t, schema.LowRisk, res.Findings[0].Tier)
}

func TestAnalyzeDocs_NoReadme(t *testing.T) {
	root := writeTree(t, map[string]string{"main.go": "package main\n"})

	res, err := AnalyzeDocs(context.Background(), pathTarget(root))
	require.NoError(t, err)

	assert.False(t, res.HasReadme)
	assert.Equal(t, 0, res.Coverage)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, ".", res.Findings[0].File)
	assert.Equal(t, schema.HighRisk, res.Findings[0].Tier)
}

func TestAnalyzeGeneral(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":          "# Demo\n",
		".gitignore":         "*.pyc\n",
		"requirements.txt":   "requests==2.31.0\n",
		"setup.cfg":          "[flake8]\n",
		"app.py":             helperSource,
		"tests/test_app.py":  "def test_app():\n    assert True\n",
		"web/button.test.js": "test('x', () => {});\n",
	})

	res, err := AnalyzeGeneral(context.Background(), pathTarget(root))
	require.NoError(t, err)

	assert.True(t, res.HasReadme)
	assert.True(t, res.HasGitignore)
	assert.True(t, res.HasManifest)
	assert.Equal(t, []string{"setup.cfg"}, res.ConfigFiles)
	assert.Equal(t, 1, res.CodeFiles)
	assert.ElementsMatch(t, []string{"tests/test_app.py", "web/button.test.js"}, res.TestFiles)
	assert.Equal(t, 6, res.Documentation)
	assert.Equal(t, 10, res.Testing)
	assert.Equal(t, 10, res.Quality)
	assert.Empty(t, res.Findings)
}

func TestAnalyzeGeneral_EmptyProject(t *testing.T) {
	root := writeTree(t, map[string]string{"main.py": helperSource})

	rep := GeneralAnalysis{}.Run(context.Background(), pathTarget(root))

	require.False(t, rep.Failed, rep.Error)
	assert.Len(t, rep.Findings, 5)
	for _, f := range rep.Findings {
		assert.Equal(t, ".", f.File)
		assert.Equal(t, schema.CategoryQA, f.Category)
	}
	require.NotNil(t, rep.Score)
	assert.Equal(t, 5, *rep.Score)
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"test_app.py", true},
		{"app_test.go", true},
		{"src/button.test.tsx", true},
		{"src/button.spec.js", true},
		{"tests/helpers.py", true},
		{"pkg/__tests__/x.js", true},
		{"app.py", false},
		{"contest.py", false},
		{"latest/app.py", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, isTestFile(tt.rel))
		})
	}
}

func TestPathAnalyzers_MissingRootFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	for _, a := range PathAnalyzers() {
		t.Run(string(a.Name()), func(t *testing.T) {
			rep := a.Run(context.Background(), pathTarget(missing))
			assert.True(t, rep.Failed)
			assert.Nil(t, rep.Score)
			assert.Contains(t, rep.Error, "path not found")
			assert.Equal(t, a.Name(), rep.Analyzer)
		})
	}
}

func TestSecurityAnalysis_EmptyPath(t *testing.T) {
	rep := SecurityAnalysis{}.Run(context.Background(), schema.AnalysisTarget{})
	assert.True(t, rep.Failed)
	assert.Equal(t, "path is required", rep.Error)
}

func TestProbeAnalysis_PortRequired(t *testing.T) {
	rep := ProbeAnalysis{}.Run(context.Background(), schema.AnalysisTarget{})

	assert.True(t, rep.Failed)
	assert.Equal(t, "port is required", rep.Error)
	assert.Equal(t, "localhost", rep.Target)
	assert.Nil(t, rep.Score)
}

func TestProbeAnalysis_Accessible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Dev</title></head><body><div>ok</div></body></html>"))
	}))
	defer srv.Close()

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	rep := ProbeAnalysis{}.Run(context.Background(), schema.AnalysisTarget{
		Host:    host,
		Port:    port,
		URLPath: "/",
		Timeout: 5 * time.Second,
	})

	require.False(t, rep.Failed, rep.Error)
	require.NotNil(t, rep.Score)
	assert.GreaterOrEqual(t, *rep.Score, 4)
	data, ok := rep.Data.(schema.EndpointReport)
	require.True(t, ok)
	assert.Equal(t, schema.Accessible, data.State)
	assert.Equal(t, "Dev", data.Title)
}

func TestProbeScore(t *testing.T) {
	tests := []struct {
		name string
		rep  schema.EndpointReport
		want int
	}{
		{"refused", schema.EndpointReport{State: schema.ConnectionRefused}, 0},
		{"timeout", schema.EndpointReport{State: schema.Timeout}, 0},
		{"unexpected", schema.EndpointReport{State: schema.Unexpected, StatusCode: 500}, 0},
		{"excellent", schema.EndpointReport{State: schema.Accessible, Performance: probe.PerfExcellent}, 10},
		{"good", schema.EndpointReport{State: schema.Accessible, Performance: probe.PerfGood}, 8},
		{"acceptable", schema.EndpointReport{State: schema.Accessible, Performance: probe.PerfAcceptable}, 6},
		{"slow", schema.EndpointReport{State: schema.Accessible, Performance: "slow"}, 4},
		{"excellent with error marker", schema.EndpointReport{State: schema.Accessible, Performance: probe.PerfExcellent, ErrorMarker: true}, 8},
		{"slow with error marker", schema.EndpointReport{State: schema.Accessible, Performance: "slow", ErrorMarker: true}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProbeScore(tt.rep))
		})
	}
}

func TestExecute_RecoversPanic(t *testing.T) {
	rep := Execute(context.Background(), schema.SecurityAnalyzer, "/repo", func(context.Context) (schema.Report, error) {
		panic("boom")
	})

	assert.True(t, rep.Failed)
	assert.Equal(t, "internal error: boom", rep.Error)
	assert.Equal(t, schema.SecurityAnalyzer, rep.Analyzer)
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "pkg/a.py", relativePath("/repo", "/repo/pkg/a.py"))
	assert.Equal(t, "repo", relativePath("/repo", "/repo"))
	assert.Equal(t, "other.py", relativePath("/repo", "/elsewhere/other.py"))
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("x"))
	assert.Equal(t, 2, countLines("x\ny\n"))
	assert.Equal(t, 3, countLines("x\n\ny"))
}
