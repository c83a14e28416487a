package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// ExecuteCheck runs the check command for CI/CD gating.
// It runs the selected path analyzers and exits non-zero when any score falls
// below its threshold or any analyzer fails.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()
	reports := RunAnalyzers(ctx, cfg, mgr, selectedAnalyzers(cfg))
	result := BuildCheckResult(cfg, reports)

	printCheckResult(result, time.Since(start))
	if !result.Passed {
		fmt.Printf("%d violation(s) found\n", len(result.Failures)+len(result.Errors))
		os.Exit(1)
	}
	return nil
}

// BuildCheckResult compares every report score with its analyzer threshold.
func BuildCheckResult(cfg *contract.Config, reports []schema.Report) *schema.CheckResult {
	result := &schema.CheckResult{
		Target:     contract.SanitizePath(cfg.TargetPath),
		Thresholds: make(map[schema.AnalyzerName]int, len(reports)),
		Scores:     make(map[schema.AnalyzerName]int, len(reports)),
	}
	for _, r := range reports {
		threshold := cfg.ThresholdFor(r.Analyzer)
		result.Thresholds[r.Analyzer] = threshold
		if r.Failed || r.Score == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", r.Analyzer, r.Error))
			continue
		}
		result.Scores[r.Analyzer] = *r.Score
		if *r.Score < threshold {
			result.Failures = append(result.Failures, schema.CheckFailure{
				Analyzer:  r.Analyzer,
				Score:     *r.Score,
				Threshold: threshold,
			})
		}
	}
	result.Passed = len(result.Failures) == 0 && len(result.Errors) == 0
	return result
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(result, duration)

	if result.Passed {
		printCheckSuccess(result)
	} else {
		printCheckFailure(result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(result *schema.CheckResult, duration time.Duration) {
	fmt.Println("Quality Gate Results:")

	names := sortedAnalyzers(result.Thresholds)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, result.Thresholds[name]))
	}

	labels := []string{"Target:", "Thresholds:"}
	values := []any{result.Target, strings.Join(parts, ", ")}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		fmt.Printf("  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	fmt.Println()

	fmt.Printf("Ran %d analyzers in %v\n\n", len(result.Thresholds), duration)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(result *schema.CheckResult) {
	fmt.Printf("✅ All analyzers met their minimum scores\n\n")
	fmt.Println("Scores observed:")
	for _, name := range sortedAnalyzers(result.Scores) {
		fmt.Printf("  %s: %d/10 (min %d)\n", name, result.Scores[name], result.Thresholds[name])
	}
}

// printCheckFailure prints the failure case output.
func printCheckFailure(result *schema.CheckResult) {
	fmt.Printf("❌ Quality gate failed: %d analyzer(s) below threshold, %d error(s)\n\n", len(result.Failures), len(result.Errors))

	for _, f := range result.Failures {
		fmt.Printf("  - %s (score: %d < threshold: %d)\n", f.Analyzer, f.Score, f.Threshold)
	}
	for _, e := range result.Errors {
		fmt.Printf("  - %s\n", e)
	}
	fmt.Println()
}

// sortedAnalyzers returns the keys of m in report order.
func sortedAnalyzers(m map[schema.AnalyzerName]int) []schema.AnalyzerName {
	var out []schema.AnalyzerName
	for _, name := range schema.AllAnalyzers {
		if _, ok := m[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
