package core

import (
	"context"

	"github.com/qascope/qascope/core/deps"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// DependencyAnalysis inspects every dependency manifest under the target.
type DependencyAnalysis struct{}

// Name implements contract.Analyzer.
func (DependencyAnalysis) Name() schema.AnalyzerName { return schema.DependencyAnalyzer }

// Tool implements contract.Analyzer.
func (DependencyAnalysis) Tool() string { return "check_package_dependencies" }

// Description implements contract.Analyzer.
func (DependencyAnalysis) Description() string {
	return "Inspect dependency manifests (requirements, package.json, Pipfile, pyproject, go.mod, Cargo.toml, conda) for unpinned versions"
}

// Run implements contract.Analyzer.
func (a DependencyAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeDependencies(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.Dependencies(res, Score(res.Findings, DependencyPolicy)), nil
	})
}

// AnalyzeDependencies parses the manifests found under the target.
func AnalyzeDependencies(ctx context.Context, target schema.AnalysisTarget) (schema.DependencyResult, error) {
	insp, err := deps.Inspect(ctx, target.Path, target.Excludes)
	if err != nil {
		return schema.DependencyResult{}, err
	}
	return schema.DependencyResult{
		Root:            targetRoot(target),
		Manifests:       insp.Manifests,
		Unparsed:        insp.Unparsed,
		Dependencies:    insp.Dependencies,
		RuntimeCount:    insp.RuntimeCount,
		DevCount:        insp.DevCount,
		Findings:        insp.Findings,
		Recommendations: insp.Recommendations(),
	}, nil
}
