package core

import (
	"testing"
	"time"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(name schema.AnalyzerName, score int) schema.Report {
	r := schema.Report{Analyzer: name}
	r.SetScore(score)
	return r
}

func TestBuildCheckResult(t *testing.T) {
	tests := []struct {
		name         string
		cfg          *contract.Config
		reports      []schema.Report
		wantPassed   bool
		wantFailures []schema.CheckFailure
		wantErrors   int
	}{
		{
			name:       "all above default",
			cfg:        &contract.Config{TargetPath: "/repo", MinScore: 5},
			reports:    []schema.Report{scored(schema.SecurityAnalyzer, 7), scored(schema.DocsAnalyzer, 5)},
			wantPassed: true,
		},
		{
			name:       "below default",
			cfg:        &contract.Config{TargetPath: "/repo", MinScore: 5},
			reports:    []schema.Report{scored(schema.SecurityAnalyzer, 4)},
			wantPassed: false,
			wantFailures: []schema.CheckFailure{
				{Analyzer: schema.SecurityAnalyzer, Score: 4, Threshold: 5},
			},
		},
		{
			name: "per-analyzer override",
			cfg: &contract.Config{
				TargetPath: "/repo",
				MinScore:   5,
				Thresholds: map[schema.AnalyzerName]int{schema.SQLAnalyzer: 8, schema.DocsAnalyzer: 2},
			},
			reports:    []schema.Report{scored(schema.SQLAnalyzer, 7), scored(schema.DocsAnalyzer, 3)},
			wantPassed: false,
			wantFailures: []schema.CheckFailure{
				{Analyzer: schema.SQLAnalyzer, Score: 7, Threshold: 8},
			},
		},
		{
			name: "failed analyzer is an error",
			cfg:  &contract.Config{TargetPath: "/repo", MinScore: 0},
			reports: []schema.Report{
				scored(schema.GeneralAnalyzer, 10),
				{Analyzer: schema.StructureAnalyzer, Failed: true, Error: "path not found: /repo"},
			},
			wantPassed: false,
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildCheckResult(tt.cfg, tt.reports)

			assert.Equal(t, tt.wantPassed, result.Passed)
			assert.Equal(t, tt.wantFailures, result.Failures)
			assert.Len(t, result.Errors, tt.wantErrors)
			assert.Len(t, result.Thresholds, len(tt.reports))
		})
	}
}

func TestBuildCheckResult_ErrorMessage(t *testing.T) {
	cfg := &contract.Config{TargetPath: "/repo", MinScore: 5}
	result := BuildCheckResult(cfg, []schema.Report{
		{Analyzer: schema.SyntaxAnalyzer, Failed: true, Error: "boom"},
	})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "syntax: boom", result.Errors[0])
	assert.NotContains(t, result.Scores, schema.SyntaxAnalyzer)
	assert.Equal(t, 5, result.Thresholds[schema.SyntaxAnalyzer])
}

func TestSortedAnalyzers(t *testing.T) {
	m := map[schema.AnalyzerName]int{
		schema.GeneralAnalyzer:   1,
		schema.StructureAnalyzer: 1,
		schema.SQLAnalyzer:       1,
	}
	assert.Equal(t, []schema.AnalyzerName{
		schema.StructureAnalyzer, schema.SQLAnalyzer, schema.GeneralAnalyzer,
	}, sortedAnalyzers(m))
}

func TestPrintCheckResult(t *testing.T) {
	tests := []struct {
		name   string
		result *schema.CheckResult
	}{
		{
			name: "passed",
			result: &schema.CheckResult{
				Passed:     true,
				Target:     "/repo",
				Thresholds: map[schema.AnalyzerName]int{schema.SecurityAnalyzer: 5},
				Scores:     map[schema.AnalyzerName]int{schema.SecurityAnalyzer: 9},
			},
		},
		{
			name: "failed",
			result: &schema.CheckResult{
				Target:     "/repo",
				Thresholds: map[schema.AnalyzerName]int{schema.SecurityAnalyzer: 5, schema.DocsAnalyzer: 5},
				Scores:     map[schema.AnalyzerName]int{schema.SecurityAnalyzer: 2},
				Failures:   []schema.CheckFailure{{Analyzer: schema.SecurityAnalyzer, Score: 2, Threshold: 5}},
				Errors:     []string{"docs: path not found: /repo"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				printCheckResult(tt.result, 120*time.Millisecond)
			})
		})
	}
}
