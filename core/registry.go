package core

import (
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// Registry maps every analyzer name to its implementation.
var Registry = map[schema.AnalyzerName]contract.Analyzer{
	schema.StructureAnalyzer:  StructureAnalysis{},
	schema.SyntaxAnalyzer:     SyntaxAnalysis{},
	schema.ComplexityAnalyzer: ComplexityAnalysis{},
	schema.SecurityAnalyzer:   SecurityAnalysis{},
	schema.SQLAnalyzer:        SQLAnalysis{},
	schema.DependencyAnalyzer: DependencyAnalysis{},
	schema.ProbeAnalyzer:      ProbeAnalysis{},
	schema.ReactAnalyzer:      ReactAnalysis{},
	schema.DocsAnalyzer:       DocsAnalysis{},
	schema.GeneralAnalyzer:    GeneralAnalysis{},
}

// Lookup returns the analyzer registered under name.
func Lookup(name schema.AnalyzerName) (contract.Analyzer, bool) {
	a, ok := Registry[name]
	return a, ok
}

// LookupTool returns the analyzer exposed under the given tool name.
func LookupTool(tool string) (contract.Analyzer, bool) {
	for _, a := range Analyzers() {
		if a.Tool() == tool {
			return a, true
		}
	}
	return nil, false
}

// Analyzers returns every analyzer in report order.
func Analyzers() []contract.Analyzer {
	out := make([]contract.Analyzer, 0, len(schema.AllAnalyzers))
	for _, name := range schema.AllAnalyzers {
		out = append(out, Registry[name])
	}
	return out
}

// PathAnalyzers returns the analyzers that take a filesystem path, in report order.
func PathAnalyzers() []contract.Analyzer {
	out := make([]contract.Analyzer, 0, len(schema.AllAnalyzers)-1)
	for _, a := range Analyzers() {
		if a.Name() != schema.ProbeAnalyzer {
			out = append(out, a)
		}
	}
	return out
}
