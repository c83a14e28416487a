package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/qascope/qascope/core/pyast"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// Complexity thresholds.
const (
	ComplexFunction = 5 // functions above this are flagged
	MaxParameters   = 5 // functions with more parameters are flagged
)

// ComplexityAnalysis reports McCabe complexity and related function statistics.
type ComplexityAnalysis struct{}

// Name implements contract.Analyzer.
func (ComplexityAnalysis) Name() schema.AnalyzerName { return schema.ComplexityAnalyzer }

// Tool implements contract.Analyzer.
func (ComplexityAnalysis) Tool() string { return "analyze_code_complexity" }

// Description implements contract.Analyzer.
func (ComplexityAnalysis) Description() string {
	return "Analyze cyclomatic complexity, docstring coverage and class statistics of Python code"
}

// Run implements contract.Analyzer.
func (a ComplexityAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeComplexity(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		return report.Complexity(res, Score(res.Findings, ComplexityPolicy)), nil
	})
}

// AnalyzeComplexity parses every Python file under the target. A file with a
// syntax error becomes a finding and the remaining files are still analyzed.
func AnalyzeComplexity(ctx context.Context, target schema.AnalysisTarget) (schema.ComplexityResult, error) {
	files, err := sourceFiles(target, ".py")
	if err != nil {
		return schema.ComplexityResult{}, err
	}

	res := schema.ComplexityResult{Root: targetRoot(target)}
	for f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		text, ok := readSource(f)
		if !ok {
			continue
		}

		mod, err := pyast.Parse(ctx, []byte(text), f.Rel)
		if err != nil {
			var syntaxErr *contract.SyntaxError
			if !errors.As(err, &syntaxErr) {
				return res, err
			}
			res.Findings = append(res.Findings, syntaxFinding(syntaxErr))
			continue
		}
		res.FilesAnalyzed++
		res.Functions = append(res.Functions, mod.Functions...)
		res.Classes = append(res.Classes, mod.Classes...)
		res.Imports += len(mod.Imports)
	}

	summarizeComplexity(&res)
	return res, nil
}

// summarizeComplexity fills the aggregate fields and function findings.
func summarizeComplexity(res *schema.ComplexityResult) {
	total, documented := 0, 0
	for _, fn := range res.Functions {
		total += fn.Complexity
		res.MaxComplexity = max(res.MaxComplexity, fn.Complexity)
		if fn.HasDocstring {
			documented++
		}

		switch {
		case fn.Complexity <= 2:
			res.Bands.Simple++
		case fn.Complexity <= 5:
			res.Bands.Moderate++
		case fn.Complexity <= 10:
			res.Bands.Complex++
		default:
			res.Bands.VeryComplex++
		}

		if fn.Complexity > ComplexFunction {
			res.Findings = append(res.Findings, schema.Finding{
				File:        fn.File,
				Line:        fn.StartLine,
				Description: fmt.Sprintf("function %s has complexity %d", fn.Name, fn.Complexity),
				Tier:        schema.MediumRisk,
				Category:    schema.CategoryComplexity,
			})
		}
		if fn.ParameterCount > MaxParameters {
			res.Findings = append(res.Findings, schema.Finding{
				File:        fn.File,
				Line:        fn.StartLine,
				Description: fmt.Sprintf("function %s takes %d parameters", fn.Name, fn.ParameterCount),
				Tier:        schema.LowRisk,
				Category:    schema.CategoryComplexity,
			})
		}
	}

	if n := len(res.Functions); n > 0 {
		res.AvgComplexity = float64(total) / float64(n)
		res.DocstringCoverage = float64(documented) * 100 / float64(n)
	}
}
