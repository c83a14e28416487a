package contract

import (
	"os"
	"regexp"
	"strings"
	"sync"
)

// MaxSanitizedPathLength is the length above which a sanitized path keeps only its tail.
const MaxSanitizedPathLength = 60

// UserPlaceholder replaces the account name in a home directory prefix.
const UserPlaceholder = "[USER]"

// userHomePatterns match well-known per-user home directory prefixes.
var userHomePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Za-z]:\\Users\\)[^\\]+`),
	regexp.MustCompile(`^([A-Za-z]:/Users/)[^/]+`),
	regexp.MustCompile(`^(/home/)[^/]+`),
	regexp.MustCompile(`^(/Users/)[^/]+`),
}

// personalFolders are path segments dropped from sanitized paths.
var personalFolders = []string{"OneDrive", "Desktop", "Documents", "Downloads"}

// PathSanitizer strips user-identifying segments from paths shown in reports.
type PathSanitizer struct {
	home string
}

// NewPathSanitizer creates a sanitizer that also redacts the given home directory,
// which covers homes outside the well-known prefixes.
func NewPathSanitizer(home string) *PathSanitizer {
	return &PathSanitizer{home: strings.TrimRight(home, `/\`)}
}

var (
	defaultSanitizer     *PathSanitizer
	defaultSanitizerOnce sync.Once
)

// SanitizePath redacts a path using the current user's home directory.
func SanitizePath(path string) string {
	defaultSanitizerOnce.Do(func() {
		home, _ := os.UserHomeDir()
		defaultSanitizer = NewPathSanitizer(home)
	})
	return defaultSanitizer.Sanitize(path)
}

// Sanitize applies the redaction rules in order:
//  1. a per-user home prefix becomes [USER] (or ~ for the configured home);
//  2. personal folder segments are removed;
//  3. paths longer than MaxSanitizedPathLength with more than three segments
//     are shortened to "..." plus the last two segments.
func (s *PathSanitizer) Sanitize(path string) string {
	if path == "" {
		return path
	}
	sep := separatorOf(path)

	redacted := false
	for _, re := range userHomePatterns {
		if re.MatchString(path) {
			path = re.ReplaceAllString(path, "${1}"+UserPlaceholder)
			redacted = true
			break
		}
	}
	if !redacted && s.home != "" && len(s.home) > 1 && hasPathPrefix(path, s.home) {
		path = "~" + path[len(s.home):]
	}

	segments := strings.Split(path, sep)
	kept := segments[:0]
	for i, seg := range segments {
		if i > 0 && isPersonalFolder(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	path = strings.Join(kept, sep)

	if len(path) > MaxSanitizedPathLength {
		parts := nonEmpty(kept)
		if len(parts) > 3 {
			path = "..." + sep + parts[len(parts)-2] + sep + parts[len(parts)-1]
		}
	}
	return path
}

// separatorOf picks the separator used by the path, preferring the first one seen.
func separatorOf(path string) string {
	back := strings.IndexByte(path, '\\')
	fwd := strings.IndexByte(path, '/')
	if back >= 0 && (fwd < 0 || back < fwd) {
		return `\`
	}
	return "/"
}

func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '\\'
}

func isPersonalFolder(seg string) bool {
	for _, name := range personalFolders {
		if strings.EqualFold(seg, name) {
			return true
		}
	}
	// Business OneDrive folders look like "OneDrive - Contoso".
	return strings.HasPrefix(strings.ToLower(seg), "onedrive - ")
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
