// Package deps locates dependency manifests under a root and parses the
// dependencies they declare.
package deps

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/viant/afs"

	"github.com/qascope/qascope/core/walk"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// Ecosystems reported in DependencyRecord.Ecosystem.
const (
	EcosystemPyPI  = "pypi"
	EcosystemNPM   = "npm"
	EcosystemGo    = "go"
	EcosystemCargo = "cargo"
	EcosystemConda = "conda"
)

// AuditThreshold is the dependency count above which an audit is recommended.
const AuditThreshold = 50

type parseFunc func(data []byte, manifest string) ([]schema.DependencyRecord, error)

// parsers maps a manifest base name to its parser. requirements*.txt is matched separately.
var parsers = map[string]parseFunc{
	"package.json":     ParsePackageJSON,
	"Pipfile":          ParsePipfile,
	"pyproject.toml":   ParsePyproject,
	"Cargo.toml":       ParseCargo,
	"go.mod":           ParseGoMod,
	"environment.yml":  ParseCondaEnvironment,
	"environment.yaml": ParseCondaEnvironment,
}

// recognizedOnly are manifests that are reported but not parsed.
var recognizedOnly = []string{
	"setup.py", "setup.cfg", "Gemfile", "composer.json", "pom.xml",
	"build.gradle", "build.gradle.kts", "yarn.lock", "package-lock.json", "pnpm-lock.yaml",
	"Pipfile.lock", "poetry.lock", "Cargo.lock", "go.sum",
}

// Inspection is the combined result of every manifest under a root.
type Inspection struct {
	Manifests    []string
	Unparsed     []string
	Dependencies []schema.DependencyRecord
	Findings     []schema.Finding
	RuntimeCount int
	DevCount     int
}

// Total returns the number of declared dependencies.
func (i Inspection) Total() int {
	return i.RuntimeCount + i.DevCount
}

// IsManifest reports whether a base name is a dependency manifest of any kind.
func IsManifest(base string) bool {
	return isRequirements(base) || parsers[base] != nil || slices.Contains(recognizedOnly, base)
}

func isRequirements(base string) bool {
	return strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt")
}

// Inspect walks root and parses every recognized manifest. Manifest paths in
// the result are relative to root. A manifest that cannot be read or parsed
// becomes a Finding and does not stop the inspection.
func Inspect(ctx context.Context, root string, excludes []string) (Inspection, error) {
	seq, err := walk.Files(root, walk.DefaultOptions(excludes))
	if err != nil {
		return Inspection{}, err
	}

	base := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		base = resolved
	}

	fs := afs.New()
	var res Inspection
	for file := range seq {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := filepath.Base(file.Path)
		if !IsManifest(name) {
			continue
		}
		rel := relativeTo(base, file.Path)

		parse := parsers[name]
		if parse == nil && isRequirements(name) {
			parse = func(data []byte, manifest string) ([]schema.DependencyRecord, error) {
				return ParseRequirements(data, manifest), nil
			}
		}
		if parse == nil {
			res.Unparsed = append(res.Unparsed, rel)
			continue
		}
		res.Manifests = append(res.Manifests, rel)

		data, err := fs.DownloadWithURL(ctx, file.Path)
		if err != nil {
			contract.Logger().Debug("cannot read manifest", "path", file.Path, "error", err)
			res.Findings = append(res.Findings, manifestFinding(rel, file.Path, &contract.ManifestParseError{Manifest: rel, Err: err}, base, root))
			continue
		}
		records, err := parse(data, rel)
		if err != nil {
			res.Findings = append(res.Findings, manifestFinding(rel, file.Path, &contract.ManifestParseError{Manifest: rel, Err: err}, base, root))
			continue
		}
		res.add(records)
	}
	return res, nil
}

func (i *Inspection) add(records []schema.DependencyRecord) {
	for _, rec := range records {
		i.Dependencies = append(i.Dependencies, rec)
		if rec.Dev {
			i.DevCount++
		} else {
			i.RuntimeCount++
		}
		if rec.Unpinned {
			i.Findings = append(i.Findings, schema.Finding{
				File:        rec.Manifest,
				Description: fmt.Sprintf("%s has no version specified", rec.Name),
				Tier:        schema.MediumRisk,
				Category:    schema.CategoryDependency,
			})
		}
	}
}

// Recommendations returns follow-up advice derived from the inspection.
func (i Inspection) Recommendations() []string {
	var out []string
	if len(i.Manifests) == 0 && len(i.Unparsed) == 0 {
		out = append(out, "no dependency manifest found")
	}
	if i.Total() > AuditThreshold {
		out = append(out, "consider a dependency audit")
	}
	for _, f := range i.Findings {
		if f.Category == schema.CategoryDependency {
			out = append(out, "pin dependency versions for reproducible installs")
			break
		}
	}
	return out
}

// manifestFinding reports err against manifest. Absolute paths in the error
// text are rewritten relative to the inspected roots.
func manifestFinding(manifest, path string, err error, roots ...string) schema.Finding {
	desc := err.Error()
	for _, p := range []string{path, filepath.ToSlash(path)} {
		desc = strings.ReplaceAll(desc, p, manifest)
	}
	for _, root := range roots {
		if root == "" || root == "." {
			continue
		}
		for _, p := range []string{root, filepath.ToSlash(root)} {
			desc = strings.ReplaceAll(desc, p, ".")
		}
	}
	return schema.Finding{
		File:        manifest,
		Description: desc,
		Tier:        schema.HighRisk,
		Category:    schema.CategoryManifest,
	}
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
