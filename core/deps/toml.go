package deps

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/qascope/qascope/schema"
)

type pipfile struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]any `toml:"dependency-groups"`
	Tool             struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

type cargoManifest struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

// ParsePipfile reads [packages] and [dev-packages] of a Pipfile.
func ParsePipfile(data []byte, manifest string) ([]schema.DependencyRecord, error) {
	var pf pipfile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	out := tableRecords(pf.Packages, manifest, EcosystemPyPI, false)
	return append(out, tableRecords(pf.DevPackages, manifest, EcosystemPyPI, true)...), nil
}

// ParsePyproject reads PEP 621 dependencies, PEP 735 dependency groups and
// Poetry dependency tables. Optional and group dependencies count as dev.
func ParsePyproject(data []byte, manifest string) ([]schema.DependencyRecord, error) {
	var pp pyproject
	if err := toml.Unmarshal(data, &pp); err != nil {
		return nil, err
	}

	var out []schema.DependencyRecord
	addRequirement := func(line string, dev bool) {
		if rec, ok := ParseRequirement(line); ok {
			rec.Manifest = manifest
			rec.Dev = dev
			out = append(out, rec)
		}
	}
	for _, line := range pp.Project.Dependencies {
		addRequirement(line, false)
	}
	for _, group := range sortedKeys(pp.Project.OptionalDependencies) {
		for _, line := range pp.Project.OptionalDependencies[group] {
			addRequirement(line, true)
		}
	}
	for _, group := range sortedKeys(pp.DependencyGroups) {
		for _, entry := range pp.DependencyGroups[group] {
			if line, ok := entry.(string); ok {
				addRequirement(line, true)
			}
		}
	}

	poetry := pp.Tool.Poetry
	delete(poetry.Dependencies, "python")
	out = append(out, tableRecords(poetry.Dependencies, manifest, EcosystemPyPI, false)...)
	out = append(out, tableRecords(poetry.DevDependencies, manifest, EcosystemPyPI, true)...)
	for _, group := range sortedKeys(poetry.Group) {
		out = append(out, tableRecords(poetry.Group[group].Dependencies, manifest, EcosystemPyPI, true)...)
	}
	return out, nil
}

// ParseCargo reads the dependency tables of a Cargo.toml.
func ParseCargo(data []byte, manifest string) ([]schema.DependencyRecord, error) {
	var cm cargoManifest
	if err := toml.Unmarshal(data, &cm); err != nil {
		return nil, err
	}
	out := tableRecords(cm.Dependencies, manifest, EcosystemCargo, false)
	out = append(out, tableRecords(cm.DevDependencies, manifest, EcosystemCargo, true)...)
	return append(out, tableRecords(cm.BuildDependencies, manifest, EcosystemCargo, true)...), nil
}

// tableRecords converts a name → spec table where the spec is either a
// version string or an inline table with a version or a source location.
func tableRecords(table map[string]any, manifest, ecosystem string, dev bool) []schema.DependencyRecord {
	out := make([]schema.DependencyRecord, 0, len(table))
	for _, name := range sortedKeys(table) {
		rec := schema.DependencyRecord{Name: name, Manifest: manifest, Ecosystem: ecosystem, Dev: dev}
		switch spec := table[name].(type) {
		case string:
			rec.Constraint = spec
			rec.DeclaredVersion = strings.TrimLeft(spec, "^~=<>! ")
			rec.Unpinned = isWildcard(spec)
		case map[string]any:
			if v, ok := spec["version"].(string); ok {
				rec.Constraint = v
				rec.DeclaredVersion = strings.TrimLeft(v, "^~=<>! ")
				rec.Unpinned = isWildcard(v)
				break
			}
			source := ""
			for _, key := range []string{"git", "path", "url"} {
				if v, ok := spec[key].(string); ok {
					source = fmt.Sprintf("%s %s", key, v)
					break
				}
			}
			rec.Constraint = source
			rec.Unpinned = source == ""
		default:
			rec.Unpinned = true
		}
		out = append(out, rec)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
