package schema

import "slices"

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// RiskTier represents the severity of a finding.
	RiskTier string

	// AnalyzerName identifies a registered analyzer.
	AnalyzerName string

	// ProbeState represents the outcome of a live endpoint probe.
	ProbeState string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All risk tiers, highest first.
const (
	HighRisk   RiskTier = "high"
	MediumRisk RiskTier = "medium"
	LowRisk    RiskTier = "low"
)

// All analyzers known to the registry.
const (
	StructureAnalyzer  AnalyzerName = "structure"
	SyntaxAnalyzer     AnalyzerName = "syntax"
	ComplexityAnalyzer AnalyzerName = "complexity"
	SecurityAnalyzer   AnalyzerName = "security"
	SQLAnalyzer        AnalyzerName = "sql"
	DependencyAnalyzer AnalyzerName = "dependencies"
	ProbeAnalyzer      AnalyzerName = "probe"
	ReactAnalyzer      AnalyzerName = "react"
	DocsAnalyzer       AnalyzerName = "docs"
	GeneralAnalyzer    AnalyzerName = "general"
)

// All probe states.
const (
	Accessible        ProbeState = "accessible"
	ConnectionRefused ProbeState = "connection_refused"
	Timeout           ProbeState = "timeout"
	Unexpected        ProbeState = "unexpected"
)

// Finding categories.
const (
	CategorySecurity       = "security"
	CategorySQL            = "sql"
	CategorySQLPerformance = "sql-performance"
	CategorySyntax         = "syntax"
	CategoryStyle          = "style"
	CategoryComplexity     = "complexity"
	CategoryDependency     = "dependency"
	CategoryManifest       = "manifest"
	CategoryReact          = "react"
	CategoryDocs           = "docs"
	CategoryQA             = "qa"
	CategoryStructure      = "structure"
)

// Score bounds shared by every finding-derived score.
const (
	MaxScore   = 10
	FloorScore = 2
)

// AllRiskTiers lists the tiers from highest to lowest.
var AllRiskTiers = []RiskTier{HighRisk, MediumRisk, LowRisk}

// AllAnalyzers lists every analyzer in report order.
var AllAnalyzers = []AnalyzerName{
	StructureAnalyzer,
	SyntaxAnalyzer,
	ComplexityAnalyzer,
	SecurityAnalyzer,
	SQLAnalyzer,
	DependencyAnalyzer,
	ReactAnalyzer,
	DocsAnalyzer,
	GeneralAnalyzer,
	ProbeAnalyzer,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidRiskTiers lists all valid risk tiers.
var ValidRiskTiers = map[RiskTier]struct{}{
	HighRisk:   {},
	MediumRisk: {},
	LowRisk:    {},
}

// IsValidAnalyzer reports whether name is a known analyzer.
func IsValidAnalyzer(name AnalyzerName) bool {
	return slices.Contains(AllAnalyzers, name)
}
