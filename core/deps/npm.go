package deps

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/qascope/qascope/schema"
)

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParsePackageJSON reads dependencies and devDependencies of an npm manifest.
func ParsePackageJSON(data []byte, manifest string) ([]schema.DependencyRecord, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	out := npmRecords(pkg.Dependencies, manifest, false)
	return append(out, npmRecords(pkg.DevDependencies, manifest, true)...), nil
}

func npmRecords(deps map[string]string, manifest string, dev bool) []schema.DependencyRecord {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]schema.DependencyRecord, 0, len(names))
	for _, name := range names {
		constraint := strings.TrimSpace(deps[name])
		out = append(out, schema.DependencyRecord{
			Name:            name,
			DeclaredVersion: strings.TrimLeft(constraint, "^~=v<> "),
			Constraint:      constraint,
			Manifest:        manifest,
			Ecosystem:       EcosystemNPM,
			Dev:             dev,
			Unpinned:        isWildcard(constraint),
		})
	}
	return out
}

func isWildcard(constraint string) bool {
	switch strings.ToLower(strings.TrimSpace(constraint)) {
	case "", "*", "latest", "x", "next":
		return true
	}
	return false
}
