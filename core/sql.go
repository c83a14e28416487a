package core

import (
	"context"

	"github.com/qascope/qascope/core/scan"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// SQLAnalysis finds SQL statements and flags injection-prone or costly ones.
type SQLAnalysis struct{}

// Name implements contract.Analyzer.
func (SQLAnalysis) Name() schema.AnalyzerName { return schema.SQLAnalyzer }

// Tool implements contract.Analyzer.
func (SQLAnalysis) Tool() string { return "validate_sql_queries" }

// Description implements contract.Analyzer.
func (SQLAnalysis) Description() string {
	return "Find SQL statements and flag string-built queries, DROP statements and SELECT *"
}

// Run implements contract.Analyzer.
func (a SQLAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeSQL(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.SQL(res, Score(res.Findings, SQLPolicy)), nil
	})
}

// AnalyzeSQL scans every file that may embed SQL.
func AnalyzeSQL(ctx context.Context, target schema.AnalysisTarget) (schema.SQLResult, error) {
	files, err := sourceFiles(target, scan.SQLExtensions...)
	if err != nil {
		return schema.SQLResult{}, err
	}

	res := schema.SQLResult{Root: targetRoot(target)}
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
		found := scan.ScanSQL(text, f.Rel)
		res.Statements = append(res.Statements, found.Statements...)
		res.Findings = append(res.Findings, found.Findings...)
	}
	return res, nil
}
