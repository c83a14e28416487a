package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/qascope/qascope/core/pyast"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// MaxLineLength is the longest line the syntax check accepts without a style issue.
const MaxLineLength = 120

// styleKind identifies one kind of style issue.
type styleKind int

const (
	longLine styleKind = iota
	trailingWhitespace
	tabIndent
)

var styleDescriptions = map[styleKind]string{
	longLine:           "longer than %d characters",
	trailingWhitespace: "with trailing whitespace",
	tabIndent:          "indented with tabs",
}

// SyntaxAnalysis reports Python syntax errors and basic style issues.
type SyntaxAnalysis struct{}

// Name implements contract.Analyzer.
func (SyntaxAnalysis) Name() schema.AnalyzerName { return schema.SyntaxAnalyzer }

// Tool implements contract.Analyzer.
func (SyntaxAnalysis) Tool() string { return "check_python_syntax" }

// Description implements contract.Analyzer.
func (SyntaxAnalysis) Description() string {
	return "Check Python files for syntax errors, long lines, trailing whitespace and tab indentation"
}

// Run implements contract.Analyzer.
func (a SyntaxAnalysis) Run(ctx context.Context, target schema.AnalysisTarget) schema.Report {
	return Execute(ctx, a.Name(), target.Path, func(ctx context.Context) (schema.Report, error) {
		res, err := AnalyzeSyntax(ctx, target)
		if err != nil {
			return schema.Report{}, err
		}
		findings := append(append([]schema.Finding{}, res.Errors...), res.StyleIssues...)
		return report.Syntax(res, Score(findings, SyntaxPolicy)), nil
	})
}

// AnalyzeSyntax parses every Python file under the target.
func AnalyzeSyntax(ctx context.Context, target schema.AnalysisTarget) (schema.SyntaxResult, error) {
	files, err := sourceFiles(target, ".py")
	if err != nil {
		return schema.SyntaxResult{}, err
	}

	res := schema.SyntaxResult{Root: targetRoot(target)}
	for f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		text, ok := readSource(f)
		if !ok {
			continue
		}
		res.FilesChecked++

		err := pyast.Check(ctx, []byte(text), f.Rel)
		var syntaxErr *contract.SyntaxError
		switch {
		case err == nil:
			res.ValidFiles++
		case errors.As(err, &syntaxErr):
			res.Errors = append(res.Errors, syntaxFinding(syntaxErr))
		default:
			return res, err
		}
		res.StyleIssues = append(res.StyleIssues, styleIssues(text, f.Rel)...)
	}
	return res, nil
}

// syntaxFinding converts a parse failure into a high-risk finding.
func syntaxFinding(err *contract.SyntaxError) schema.Finding {
	return schema.Finding{
		File:        err.File,
		Line:        err.Line,
		Description: "syntax error: " + err.Message,
		Tier:        schema.HighRisk,
		Category:    schema.CategorySyntax,
	}
}

// styleIssues returns one finding per kind of issue present in the file,
// pointing at its first occurrence.
func styleIssues(text, file string) []schema.Finding {
	first := map[styleKind]int{}
	count := map[styleKind]int{}
	note := func(kind styleKind, line int) {
		if count[kind] == 0 {
			first[kind] = line
		}
		count[kind]++
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		lineNo := i + 1
		if utf8.RuneCountInString(line) > MaxLineLength {
			note(longLine, lineNo)
		}
		if line != strings.TrimRight(line, " \t") {
			note(trailingWhitespace, lineNo)
		}
		if strings.HasPrefix(line, "\t") {
			note(tabIndent, lineNo)
		}
	}

	var out []schema.Finding
	for _, kind := range []styleKind{longLine, trailingWhitespace, tabIndent} {
		n := count[kind]
		if n == 0 {
			continue
		}
		desc := styleDescriptions[kind]
		if kind == longLine {
			desc = fmt.Sprintf(desc, MaxLineLength)
		}
		out = append(out, schema.Finding{
			File:        file,
			Line:        first[kind],
			Description: fmt.Sprintf("%d %s %s", n, plural(n, "line"), desc),
			Tier:        schema.LowRisk,
			Category:    schema.CategoryStyle,
		})
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
