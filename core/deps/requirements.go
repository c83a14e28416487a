package deps

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/qascope/qascope/schema"
)

var requirementName = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(.*)$`)

// requirementOps is ordered so longer operators are tried first.
var requirementOps = []string{"===", "==", "~=", ">=", "<=", "!=", ">", "<"}

var pinningOps = map[string]struct{}{
	"===": {},
	"==":  {},
	"~=":  {},
	">=":  {},
}

// ParseRequirements parses pip requirement lines. Blank lines, comments and
// option lines (-r, -e, --index-url) are skipped. Lines ending in a backslash
// are joined with the next line first.
func ParseRequirements(data []byte, manifest string) []schema.DependencyRecord {
	var out []schema.DependencyRecord
	emit := func(line string) {
		rec, ok := ParseRequirement(line)
		if !ok {
			return
		}
		rec.Manifest = manifest
		out = append(out, rec)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var pending strings.Builder
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			pending.WriteByte(' ')
			continue
		}
		pending.WriteString(line)
		emit(pending.String())
		pending.Reset()
	}
	if pending.Len() > 0 {
		emit(pending.String())
	}
	return out
}

// ParseRequirement parses a single PEP 508 requirement string.
func ParseRequirement(line string) (schema.DependencyRecord, bool) {
	line = strings.TrimSpace(line)
	if idx := strings.Index(line, " #"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
		return schema.DependencyRecord{}, false
	}
	// per-requirement options such as --hash
	if idx := strings.Index(line, " -"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}

	m := requirementName.FindStringSubmatch(line)
	if m == nil {
		return schema.DependencyRecord{}, false
	}
	rec := schema.DependencyRecord{Name: m[1], Ecosystem: EcosystemPyPI}
	spec := strings.TrimSpace(m[3])
	if strings.HasPrefix(spec, "+") || strings.HasPrefix(spec, ":") || strings.HasPrefix(spec, "/") {
		// VCS or direct URL without a name
		return schema.DependencyRecord{}, false
	}

	if strings.HasPrefix(spec, "@") {
		rec.Constraint = spec
		return rec, true
	}

	spec = strings.ReplaceAll(spec, " ", "")
	spec = strings.Trim(spec, "()")
	rec.Constraint = spec
	if spec == "" {
		rec.Unpinned = true
		return rec, true
	}

	pinned := false
	for i, clause := range strings.Split(spec, ",") {
		op, version := splitOperator(clause)
		if op == "" {
			continue
		}
		if i == 0 {
			rec.DeclaredVersion = version
		}
		if _, ok := pinningOps[op]; ok {
			pinned = true
		}
	}
	rec.Unpinned = !pinned
	return rec, true
}

func splitOperator(clause string) (string, string) {
	for _, op := range requirementOps {
		if strings.HasPrefix(clause, op) {
			return op, strings.TrimPrefix(clause, op)
		}
	}
	return "", clause
}
