// Package scan applies the security rule table and the SQL sub-scan to source text.
package scan

import (
	"sort"
	"strings"

	"github.com/qascope/qascope/schema"
)

// SecurityExtensions are the file types the security scan reads.
var SecurityExtensions = []string{".py", ".js", ".jsx", ".ts", ".tsx", ".go", ".json", ".yaml", ".yml"}

// SQLExtensions are the file types the SQL scan reads.
var SQLExtensions = []string{".py", ".js", ".ts", ".sql", ".php", ".txt", ".go"}

const maxSnippet = 120

// maxContextLines bounds how far a statement's context reaches past its match.
const maxContextLines = 12

// SQLScan holds the statements and findings of the SQL sub-scan for one file.
type SQLScan struct {
	Statements []schema.SQLStatement
	Findings   []schema.Finding
}

// IsSkipped reports whether path is on the skip list. Both separators are accepted.
func IsSkipped(path string) bool {
	slashed := strings.ReplaceAll(path, `\`, "/")
	for _, suffix := range SkipFiles {
		if slashed == suffix || strings.HasSuffix(slashed, "/"+suffix) {
			return true
		}
	}
	return false
}

// Scan returns the security findings for text. Each rule reports at most once per line.
func Scan(text, filename string) []schema.Finding {
	findings, _ := ScanFile(text, filename, true, false)
	return findings
}

// ScanSQL returns the SQL statements and SQL findings for text.
func ScanSQL(text, filename string) SQLScan {
	_, sql := ScanFile(text, filename, false, true)
	return sql
}

// ScanFile runs the requested scans over text. Security rules are applied line
// by line; SQL statements are matched against the whole text so they may span lines.
func ScanFile(text, filename string, security, sql bool) ([]schema.Finding, SQLScan) {
	var findings []schema.Finding
	var sqlScan SQLScan
	if IsSkipped(filename) {
		return findings, sqlScan
	}

	if security {
		for idx, line := range strings.Split(text, "\n") {
			findings = append(findings, securityLine(line, filename, idx+1)...)
		}
	}
	if sql {
		sqlScan = scanSQLText(text, filename)
	}
	return findings, sqlScan
}

func securityLine(line, filename string, lineNo int) []schema.Finding {
	var out []schema.Finding
	for _, rule := range SecurityRules {
		if !rule.Pattern.MatchString(line) {
			continue
		}
		out = append(out, schema.Finding{
			File:        filename,
			Line:        lineNo,
			Description: rule.Description,
			Tier:        rule.Tier,
			Category:    schema.CategorySecurity,
		})
	}
	return out
}

// statementMatch is one SQL statement located by byte offsets.
type statementMatch struct {
	kind       string
	start, end int
}

// findStatements returns non-overlapping statement matches ordered by offset.
func findStatements(text string) []statementMatch {
	var all []statementMatch
	for _, rule := range SQLStatementRules {
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			all = append(all, statementMatch{kind: rule.Kind, start: loc[0], end: loc[1]})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].start < all[j].start })

	var out []statementMatch
	lastEnd := -1
	for _, m := range all {
		if m.start < lastEnd {
			continue
		}
		out = append(out, m)
		lastEnd = m.end
	}
	return out
}

func scanSQLText(text, filename string) SQLScan {
	var out SQLScan
	for _, m := range findStatements(text) {
		lineNo := strings.Count(text[:m.start], "\n") + 1
		span := text[m.start:m.end]

		out.Statements = append(out.Statements, schema.SQLStatement{
			File:    filename,
			Line:    lineNo,
			Kind:    m.kind,
			Snippet: snippet(text, m),
		})

		add := func(desc string, tier schema.RiskTier, category string) {
			out.Findings = append(out.Findings, schema.Finding{
				File:        filename,
				Line:        lineNo,
				Description: desc,
				Tier:        tier,
				Category:    category,
			})
		}

		expr := statementContext(text, m)
		switch {
		case concatenation.MatchString(expr):
			add("possible SQL injection via string concatenation", schema.HighRisk, schema.CategorySQL)
		case percentFormat.MatchString(expr):
			add("possible SQL injection via % formatting", schema.HighRisk, schema.CategorySQL)
		case interpolation.MatchString(expr):
			add("possible SQL injection via string interpolation", schema.HighRisk, schema.CategorySQL)
		}
		if dropTable.MatchString(span) {
			add("DROP TABLE statement", schema.MediumRisk, schema.CategorySQL)
		}
		if selectStar.MatchString(span) {
			add("avoid SELECT * queries", schema.LowRisk, schema.CategorySQLPerformance)
		}
	}
	return out
}

// snippet returns the whitespace-collapsed lines holding the statement.
func snippet(text string, m statementMatch) string {
	s := strings.Join(strings.Fields(text[lineStart(text, m.start):lineEnd(text, m.end)]), " ")
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return s
}

// statementContext returns the source expression around a statement: the lines it
// occupies, preceding lines that open the string or call, and following lines
// while a parenthesis or triple-quoted string is still open or the line continues.
func statementContext(text string, m statementMatch) string {
	from := lineStart(text, m.start)
	for back := 0; back < 3 && from > 0; back++ {
		prevStart := lineStart(text, from-1)
		if !hasSuffix(strings.TrimSpace(text[prevStart:from-1]), `"""`, "'''", "(", "+", `\`, ",") {
			break
		}
		from = prevStart
	}

	to := lineEnd(text, m.end)
	for extra := 0; extra < maxContextLines && to < len(text); extra++ {
		expr := text[from:to]
		depth := strings.Count(expr, "(") - strings.Count(expr, ")")
		quoteOpen := (strings.Count(expr, `"""`)+strings.Count(expr, "'''"))%2 == 1
		last := strings.TrimSpace(text[lineStart(text, to):to])
		if depth <= 0 && !quoteOpen && !hasSuffix(last, "+", `\`, "%", ",") {
			break
		}
		to = lineEnd(text, to+1)
	}
	return text[from:to]
}

func hasSuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func lineStart(text string, off int) int {
	return strings.LastIndexByte(text[:off], '\n') + 1
}

func lineEnd(text string, off int) int {
	if off >= len(text) {
		return len(text)
	}
	if idx := strings.IndexByte(text[off:], '\n'); idx >= 0 {
		return off + idx
	}
	return len(text)
}
