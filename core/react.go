package core

import (
	"context"

	"github.com/qascope/qascope/core/jsx"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// ReactAnalysis finds React components, hook usage and common mistakes.
type ReactAnalysis struct{}

// Name implements contract.Analyzer.
func (ReactAnalysis) Name() schema.AnalyzerName { return schema.ReactAnalyzer }

// Tool implements contract.Analyzer.
func (ReactAnalysis) Tool() string { return "analyze_react_components" }

// Description implements contract.Analyzer.
func (ReactAnalysis) Description() string {
	return "Find React components and hooks, console statements and effects without dependency arrays"
}

// Run implements contract.Analyzer.
func (a ReactAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeReact(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.React(res, Score(res.Findings, DefaultPolicy)), nil
	})
}

// AnalyzeReact inspects every JavaScript and TypeScript file under the target.
func AnalyzeReact(ctx context.Context, target schema.AnalysisTarget) (schema.ReactResult, error) {
	files, err := sourceFiles(target, jsx.Extensions...)
	if err != nil {
		return schema.ReactResult{}, err
	}

	res := schema.ReactResult{Root: targetRoot(target), HookUsage: map[string]int{}}
	for f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		text, ok := readSource(f)
		if !ok {
			continue
		}
		res.FilesScanned++

		file, err := jsx.Inspect(ctx, []byte(text), f.Rel, f.Extension)
		if err != nil {
			contract.Logger().Debug("react: skipping unparsable file", "path", f.Rel, "error", err)
			continue
		}
		if !file.IsReact {
			continue
		}
		res.ReactFiles++
		res.Components = append(res.Components, file.Components...)
		for hook, n := range file.Hooks {
			res.HookUsage[hook] += n
		}
		res.Findings = append(res.Findings, file.Findings...)
	}
	return res, nil
}
