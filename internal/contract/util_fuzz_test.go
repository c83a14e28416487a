package contract

import (
	"strings"
	"testing"
)

// FuzzShouldIgnore fuzzes the ShouldIgnore function with random paths and exclude patterns.
func FuzzShouldIgnore(f *testing.F) {
	seeds := []struct {
		path     string
		excludes string // comma-separated
	}{
		{"main.py", "*.log"},
		{"node_modules/package/index.js", "node_modules/"},
		{"bundle.min.js", "*.min.js"},
		{"config.json", ".json"},
		{"", ""},
		{"very/long/path/to/file.txt", "**/temp/**"},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.excludes)
	}

	f.Fuzz(func(_ *testing.T, path string, excludesStr string) {
		excludes := []string{}
		if excludesStr != "" {
			for ex := range strings.SplitSeq(excludesStr, ",") {
				if trimmed := strings.TrimSpace(ex); trimmed != "" {
					excludes = append(excludes, trimmed)
				}
			}
		}
		_ = ShouldIgnore(path, excludes)
	})
}

// FuzzParsePorts ensures every accepted port is within range.
func FuzzParsePorts(f *testing.F) {
	for _, seed := range []string{"", "3000", "3000,8000", "0", "-1,70000", "a,b"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		ports, err := ParsePorts(s)
		if err != nil {
			return
		}
		for _, p := range ports {
			if p < 1 || p > 65535 {
				t.Errorf("accepted out-of-range port %d from %q", p, s)
			}
		}
	})
}
