package scan

import (
	"regexp"

	"github.com/qascope/qascope/schema"
)

// Rule is a single line-oriented pattern with a fixed tier and message.
type Rule struct {
	ID          string
	Pattern     *regexp.Regexp
	Description string
	Tier        schema.RiskTier
}

// SecurityRules is evaluated in order against every line of a scanned file.
var SecurityRules = []Rule{
	{"eval", regexp.MustCompile(`(?:^|[^.\w])eval\s*\(`), "eval() usage - code injection risk", schema.HighRisk},
	{"exec", regexp.MustCompile(`(?:^|[^.\w])exec\s*\(`), "exec() usage - code injection risk", schema.HighRisk},
	{"shell-true", regexp.MustCompile(`\bshell\s*=\s*True\b`), "shell=True - command injection risk", schema.HighRisk},
	{"password", regexp.MustCompile(`(?i)\w*(?:password|passwd|pwd)["']?\s*[:=]\s*["'][^"']+["']`), "hardcoded password", schema.HighRisk},
	{"api-key", regexp.MustCompile(`(?i)\w*api[_-]?key["']?\s*[:=]\s*["'][^"']+["']`), "hardcoded API key", schema.HighRisk},
	{"secret", regexp.MustCompile(`(?i)\w*(?:secret(?:_key)?|access_token|auth_token|token)["']?\s*[:=]\s*["'][^"']{4,}["']`), "hardcoded secret or token", schema.HighRisk},

	{"pickle", regexp.MustCompile(`\bpickle\.loads?\s*\(`), "pickle deserialization", schema.MediumRisk},
	{"yaml-load", regexp.MustCompile(`\byaml\.load\s*\(`), "unsafe YAML loading", schema.MediumRisk},
	{"subprocess", regexp.MustCompile(`\bsubprocess\.(?:call|run|Popen|check_call|check_output)\s*\(`), "subprocess usage", schema.MediumRisk},
	{"os-system", regexp.MustCompile(`\bos\.system\s*\(`), "os.system usage", schema.MediumRisk},
	{"os-popen", regexp.MustCompile(`\bos\.popen\s*\(`), "os.popen usage", schema.MediumRisk},
	{"go-exec", regexp.MustCompile(`\bexec\.Command(?:Context)?\s*\(`), "exec.Command usage", schema.MediumRisk},
	{"child-process", regexp.MustCompile(`\bchild_process\b`), "child_process usage", schema.MediumRisk},

	{"todo", regexp.MustCompile(`\b(?:TODO|FIXME)\b`), "TODO/FIXME comment", schema.LowRisk},
	{"print", regexp.MustCompile(`(?:^|[^.\w])print\s*\(`), "print statement (use logging)", schema.LowRisk},
	{"console-log", regexp.MustCompile(`\bconsole\.(?:log|debug)\s*\(`), "console.log statement", schema.LowRisk},
}

// SQLStatementRules detect SQL statements embedded in source text. They are
// matched against the whole file, so a statement may span several lines.
var SQLStatementRules = []struct {
	Kind    string
	Pattern *regexp.Regexp
}{
	{"SELECT", regexp.MustCompile(`(?i)\bSELECT\s+[^;]{1,400}?\s+FROM\s+\w+`)},
	{"INSERT", regexp.MustCompile(`(?i)\bINSERT\s+INTO\s+\w+`)},
	{"UPDATE", regexp.MustCompile(`(?i)\bUPDATE\s+\w+\s+SET\b`)},
	{"DELETE", regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+\w+`)},
	{"CREATE", regexp.MustCompile(`(?i)\bCREATE\s+TABLE\s+\w+`)},
	{"ALTER", regexp.MustCompile(`(?i)\bALTER\s+TABLE\s+\w+`)},
	{"DROP", regexp.MustCompile(`(?i)\bDROP\s+TABLE\b`)},
}

var (
	selectStar    = regexp.MustCompile(`(?i)\bSELECT\s+\*`)
	dropTable     = regexp.MustCompile(`(?i)\bDROP\s+TABLE\b`)
	concatenation = regexp.MustCompile(`["'\x60]\s*\+|\+\s*["'\x60]`)
	percentFormat = regexp.MustCompile(`["']\s*%\s*[\w(]`)
	interpolation = regexp.MustCompile(`\bf["']|\$\{|\.format\s*\(`)
)

// SkipFiles lists slash-separated path suffixes that hold rule tables and
// fixtures, which would otherwise report their own patterns.
var SkipFiles = []string{
	"core/scan/rules.go",
	"core/scan/scan_test.go",
}
