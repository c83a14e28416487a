package deps

import (
	"golang.org/x/mod/modfile"

	"github.com/qascope/qascope/schema"
)

// ParseGoMod reads the require block of a go.mod. Module versions are always exact.
func ParseGoMod(data []byte, manifest string) ([]schema.DependencyRecord, error) {
	mod, err := modfile.Parse(manifest, data, nil)
	if err != nil {
		return nil, err
	}
	out := make([]schema.DependencyRecord, 0, len(mod.Require))
	for _, req := range mod.Require {
		out = append(out, schema.DependencyRecord{
			Name:            req.Mod.Path,
			DeclaredVersion: req.Mod.Version,
			Constraint:      req.Mod.Version,
			Manifest:        manifest,
			Ecosystem:       EcosystemGo,
		})
	}
	return out, nil
}
