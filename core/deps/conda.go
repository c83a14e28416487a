package deps

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qascope/qascope/schema"
)

type condaEnvironment struct {
	Name         string `yaml:"name"`
	Dependencies []any  `yaml:"dependencies"`
}

// ParseCondaEnvironment reads conda package specs and the nested pip list of an
// environment.yml.
func ParseCondaEnvironment(data []byte, manifest string) ([]schema.DependencyRecord, error) {
	var env condaEnvironment
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var out []schema.DependencyRecord
	for _, entry := range env.Dependencies {
		switch v := entry.(type) {
		case string:
			if rec, ok := parseCondaSpec(v); ok {
				rec.Manifest = manifest
				out = append(out, rec)
			}
		case map[string]any:
			pip, ok := v["pip"].([]any)
			if !ok {
				continue
			}
			for _, line := range pip {
				s, ok := line.(string)
				if !ok {
					continue
				}
				if rec, ok := ParseRequirement(s); ok {
					rec.Manifest = manifest
					out = append(out, rec)
				}
			}
		}
	}
	return out, nil
}

// parseCondaSpec handles "channel::name=version=build" and "name>=version".
func parseCondaSpec(spec string) (schema.DependencyRecord, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "pip" {
		return schema.DependencyRecord{}, false
	}
	if idx := strings.Index(spec, "::"); idx >= 0 {
		spec = spec[idx+2:]
	}

	rec := schema.DependencyRecord{Ecosystem: EcosystemConda}
	idx := strings.IndexAny(spec, "=<>!~ ")
	if idx < 0 {
		rec.Name = spec
		rec.Unpinned = true
		return rec, true
	}
	rec.Name = spec[:idx]
	rec.Constraint = strings.ReplaceAll(spec[idx:], " ", "")
	version := strings.TrimLeft(rec.Constraint, "=<>!~")
	if build := strings.Index(version, "="); build >= 0 {
		version = version[:build]
	}
	rec.DeclaredVersion = version
	rec.Unpinned = strings.HasPrefix(rec.Constraint, "<") || strings.HasPrefix(rec.Constraint, "!") || version == "" || version == "*"
	return rec, true
}
