package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/qascope/qascope/schema"
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // ExcellentColor marks scores that need no action.
	GoodColor      = color.New(color.FgCyan)              // GoodColor marks healthy scores.
	FairColor      = color.New(color.FgYellow)            // FairColor marks scores worth a look.
	PoorColor      = color.New(color.FgRed, color.Bold)   // PoorColor marks scores that need attention.
)

// Tier colors for findings.
var (
	HighTierColor   = color.New(color.FgRed, color.Bold)
	MediumTierColor = color.New(color.FgMagenta)
	LowTierColor    = color.New(color.FgCyan)
)

// GetColorLabel returns a colored text label for console output.
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score int) string {
	text := schema.GetPlainLabel(score)

	switch text {
	case "Excellent":
		return ExcellentColor.Sprint(text)
	case "Good":
		return GoodColor.Sprint(text)
	case "Fair":
		return FairColor.Sprint(text)
	default:
		return PoorColor.Sprint(text)
	}
}

// GetTierLabel returns the upper-case tier name, colored when requested.
func GetTierLabel(tier schema.RiskTier, useColors bool) string {
	text := strings.ToUpper(string(tier))
	if !useColors {
		return text
	}
	switch tier {
	case schema.HighRisk:
		return HighTierColor.Sprint(text)
	case schema.MediumRisk:
		return MediumTierColor.Sprint(text)
	default:
		return LowTierColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// Glob patterns (*, ?, [ ]) are matched against the path and its base name.
// Patterns ending with '/' match a directory anywhere in the path, patterns
// starting with '.' match as suffixes, and anything else is a substring match.
func ShouldIgnore(path string, excludes []string) bool {
	slashed := filepath.ToSlash(path)
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, slashed); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pat, filepath.Base(slashed)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(slashed, ex) || strings.Contains(slashed, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(slashed, ex) {
				return true
			}
		case strings.Contains(slashed, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".qascope_history.db"
	}
	return filepath.Join(homeDir, ".qascope_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
