package schema

// ExtensionCount pairs a file extension with its number of files.
type ExtensionCount struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}

// DuplicateGroup lists files that share identical content.
type DuplicateGroup struct {
	Hash  uint64   `json:"hash"`
	Files []string `json:"files"`
}

// StructureResult is the output of the structure analyzer.
type StructureResult struct {
	Root             string           `json:"root"`
	TotalFiles       int              `json:"total_files"`
	TotalDirectories int              `json:"total_directories"`
	TotalSizeBytes   int64            `json:"total_size_bytes"`
	FileTypes        []ExtensionCount `json:"file_types"`
	PythonFiles      int              `json:"python_files"`
	TotalLines       int              `json:"total_lines"`
	TotalFunctions   int              `json:"total_functions"`
	TotalClasses     int              `json:"total_classes"`
	AvgLinesPerFile  float64          `json:"avg_lines_per_file"`
	AvgFuncsPerFile  float64          `json:"avg_functions_per_file"`
	DiversityScore   int              `json:"diversity_score"`
	Duplicates       []DuplicateGroup `json:"duplicates,omitempty"`
	LargeFiles       []FileRecord     `json:"large_files,omitempty"`
	Findings         []Finding        `json:"findings"`
}

// SyntaxResult is the output of the syntax analyzer.
type SyntaxResult struct {
	Root         string    `json:"root"`
	FilesChecked int       `json:"files_checked"`
	ValidFiles   int       `json:"valid_files"`
	Errors       []Finding `json:"errors"`
	StyleIssues  []Finding `json:"style_issues"`
}

// ComplexityBands counts functions per complexity band.
type ComplexityBands struct {
	Simple      int `json:"simple"`       // 1-2
	Moderate    int `json:"moderate"`     // 3-5
	Complex     int `json:"complex"`      // 6-10
	VeryComplex int `json:"very_complex"` // 11+
}

// ComplexityResult is the output of the complexity analyzer.
type ComplexityResult struct {
	Root              string           `json:"root"`
	FilesAnalyzed     int              `json:"files_analyzed"`
	Functions         []FunctionRecord `json:"functions"`
	Classes           []ClassRecord    `json:"classes"`
	Imports           int              `json:"imports"`
	AvgComplexity     float64          `json:"avg_complexity"`
	MaxComplexity     int              `json:"max_complexity"`
	Bands             ComplexityBands  `json:"bands"`
	DocstringCoverage float64          `json:"docstring_coverage"`
	Findings          []Finding        `json:"findings"`
}

// SecurityResult is the output of the security analyzer.
type SecurityResult struct {
	Root         string         `json:"root"`
	FilesScanned int            `json:"files_scanned"`
	Findings     []Finding      `json:"findings"`
	RuleHits     map[string]int `json:"rule_hits"`
}

// SQLStatement is one detected SQL statement.
type SQLStatement struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Snippet string `json:"snippet"`
}

// SQLResult is the output of the sql analyzer.
type SQLResult struct {
	Root         string         `json:"root"`
	FilesScanned int            `json:"files_scanned"`
	Statements   []SQLStatement `json:"statements"`
	Findings     []Finding      `json:"findings"`
}

// DependencyResult is the output of the dependency analyzer.
type DependencyResult struct {
	Root            string             `json:"root"`
	Manifests       []string           `json:"manifests"`
	Unparsed        []string           `json:"unparsed_manifests,omitempty"`
	Dependencies    []DependencyRecord `json:"dependencies"`
	RuntimeCount    int                `json:"runtime_count"`
	DevCount        int                `json:"dev_count"`
	Findings        []Finding          `json:"findings"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// ReactComponent is one detected React component.
type ReactComponent struct {
	Name  string   `json:"name"`
	File  string   `json:"file"`
	Line  int      `json:"line"`
	Hooks []string `json:"hooks,omitempty"`
}

// ReactResult is the output of the react analyzer.
type ReactResult struct {
	Root         string           `json:"root"`
	FilesScanned int              `json:"files_scanned"`
	ReactFiles   int              `json:"react_files"`
	Components   []ReactComponent `json:"components"`
	HookUsage    map[string]int   `json:"hook_usage"`
	Findings     []Finding        `json:"findings"`
}

// DocsResult is the output of the documentation analyzer.
type DocsResult struct {
	Root              string    `json:"root"`
	HasReadme         bool      `json:"has_readme"`
	HasSetupSection   bool      `json:"has_setup_section"`
	DocFiles          []string  `json:"doc_files"`
	Functions         int       `json:"functions"`
	Documented        int       `json:"documented"`
	DocstringCoverage float64   `json:"docstring_coverage"`
	CommentLines      int       `json:"comment_lines"`
	Coverage          int       `json:"coverage"` // 0-100
	Findings          []Finding `json:"findings"`
}

// GeneralResult is the output of the general QA analyzer.
type GeneralResult struct {
	Root          string    `json:"root"`
	CodeFiles     int       `json:"code_files"`
	HasReadme     bool      `json:"has_readme"`
	TestFiles     []string  `json:"test_files"`
	ConfigFiles   []string  `json:"config_files"`
	HasGitignore  bool      `json:"has_gitignore"`
	HasManifest   bool      `json:"has_manifest"`
	Documentation int       `json:"documentation_score"`
	Testing       int       `json:"testing_score"`
	Quality       int       `json:"quality_score"`
	Findings      []Finding `json:"findings"`
}
