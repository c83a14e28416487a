package core

import (
	"context"

	"github.com/qascope/qascope/core/scan"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// SecurityAnalysis matches the security rule table line by line.
type SecurityAnalysis struct{}

// Name implements contract.Analyzer.
func (SecurityAnalysis) Name() schema.AnalyzerName { return schema.SecurityAnalyzer }

// Tool implements contract.Analyzer.
func (SecurityAnalysis) Tool() string { return "scan_security_vulnerabilities" }

// Description implements contract.Analyzer.
func (SecurityAnalysis) Description() string {
	return "Scan source files for risky calls, hardcoded credentials and leftover debug statements"
}

// Run implements contract.Analyzer.
func (a SecurityAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeSecurity(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.Security(res, Score(res.Findings, SecurityPolicy)), nil
	})
}

// AnalyzeSecurity scans every file with a security-relevant extension.
func AnalyzeSecurity(ctx context.Context, target schema.AnalysisTarget) (schema.SecurityResult, error) {
	files, err := sourceFiles(target, scan.SecurityExtensions...)
	if err != nil {
		return schema.SecurityResult{}, err
	}

	res := schema.SecurityResult{Root: targetRoot(target), RuleHits: map[string]int{}}
	for f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if selfScanned(f) {
			continue
		}
		text, ok := readSource(f)
		if !ok {
			continue
		}
		res.FilesScanned++
		for _, finding := range scan.Scan(text, f.Rel) {
			res.Findings = append(res.Findings, finding)
			res.RuleHits[finding.Description]++
		}
	}
	return res, nil
}
