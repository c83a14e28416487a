package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		line       string
		ok         bool
		name       string
		version    string
		constraint string
		unpinned   bool
	}{
		{"package==1.2.3", true, "package", "1.2.3", "==1.2.3", false},
		{"requests", true, "requests", "", "", true},
		{"Django >= 3.2, < 4", true, "Django", "3.2", ">=3.2,<4", false},
		{"flask~=2.0", true, "flask", "2.0", "~=2.0", false},
		{"numpy<2", true, "numpy", "2", "<2", true},
		{"uvicorn[standard]===0.30.1", true, "uvicorn", "0.30.1", "===0.30.1", false},
		{"pywin32==306; sys_platform == 'win32'", true, "pywin32", "306", "==306", false},
		{"pandas  # data frames", true, "pandas", "", "", true},
		{"requests==2.31.0 --hash=sha256:abc", true, "requests", "2.31.0", "==2.31.0", false},
		{"mylib @ https://example.com/mylib.whl", true, "mylib", "", "@ https://example.com/mylib.whl", false},
		{"", false, "", "", "", false},
		{"# comment", false, "", "", "", false},
		{"-r base.txt", false, "", "", "", false},
		{"--index-url https://pypi.org/simple", false, "", "", "", false},
		{"git+https://github.com/org/repo.git", false, "", "", "", false},
		{"./local/pkg", false, "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rec, ok := ParseRequirement(tt.line)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.name, rec.Name)
			assert.Equal(t, tt.version, rec.DeclaredVersion)
			assert.Equal(t, tt.constraint, rec.Constraint)
			assert.Equal(t, tt.unpinned, rec.Unpinned)
			assert.Equal(t, EcosystemPyPI, rec.Ecosystem)
		})
	}
}

func TestParseRequirements_Continuation(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected map[string]string
	}{
		{
			name:     "hash on next line",
			data:     "requests==2.31.0 \\\n    --hash=sha256:abc\nflask\n",
			expected: map[string]string{"requests": "2.31.0", "flask": ""},
		},
		{
			name:     "several continuations",
			data:     "django>=4.2 \\\n    --hash=sha256:aaa \\\n    --hash=sha256:bbb\n",
			expected: map[string]string{"django": "4.2"},
		},
		{
			name:     "version on next line",
			data:     "numpy \\\n  ==1.26.4\n",
			expected: map[string]string{"numpy": "1.26.4"},
		},
		{
			name:     "trailing backslash at end of file",
			data:     "pandas==2.2.0 \\",
			expected: map[string]string{"pandas": "2.2.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := ParseRequirements([]byte(tt.data), "requirements.txt")
			got := make(map[string]string, len(recs))
			for _, rec := range recs {
				assert.Equal(t, "requirements.txt", rec.Manifest)
				got[rec.Name] = rec.DeclaredVersion
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestManifestFinding_RelativePaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	path := filepath.Join(root, "web", "package.json")
	cause := fmt.Errorf("open %s: permission denied", path)

	f := manifestFinding("web/package.json", path, &contract.ManifestParseError{Manifest: "web/package.json", Err: cause}, root)
	assert.Equal(t, "web/package.json", f.File)
	assert.Equal(t, "cannot parse web/package.json: open web/package.json: permission denied", f.Description)
	assert.NotContains(t, f.Description, root)

	other := fmt.Errorf("read %s: is a directory", filepath.Join(root, "vendor"))
	f = manifestFinding("web/package.json", path, other, root)
	assert.NotContains(t, f.Description, root)
	assert.Equal(t, schema.CategoryManifest, f.Category)
}

func TestParsePackageJSON(t *testing.T) {
	data := []byte(`{
  "name": "web",
  "dependencies": {"react": "^18.2.0", "lodash": "*"},
  "devDependencies": {"vite": "latest", "typescript": "~5.4.0"}
}`)
	recs, err := ParsePackageJSON(data, "package.json")
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, "lodash", recs[0].Name)
	assert.True(t, recs[0].Unpinned)
	assert.Equal(t, "react", recs[1].Name)
	assert.Equal(t, "18.2.0", recs[1].DeclaredVersion)
	assert.False(t, recs[1].Dev)
	assert.Equal(t, "typescript", recs[2].Name)
	assert.True(t, recs[2].Dev)
	assert.True(t, recs[3].Unpinned)

	_, err = ParsePackageJSON([]byte(`{"dependencies": `), "package.json")
	assert.Error(t, err)
}

func TestParsePipfile(t *testing.T) {
	data := []byte(`[packages]
requests = "*"
django = {version = "==4.2"}
mylib = {git = "https://github.com/org/mylib.git"}

[dev-packages]
pytest = ">=7"
`)
	recs, err := ParsePipfile(data, "Pipfile")
	require.NoError(t, err)
	require.Len(t, recs, 4)

	byName := map[string]schema.DependencyRecord{}
	for _, r := range recs {
		byName[r.Name] = r
	}
	assert.True(t, byName["requests"].Unpinned)
	assert.Equal(t, "4.2", byName["django"].DeclaredVersion)
	assert.False(t, byName["mylib"].Unpinned)
	assert.True(t, byName["pytest"].Dev)
}

func TestParsePyproject(t *testing.T) {
	data := []byte(`[project]
name = "svc"
dependencies = ["httpx>=0.27", "rich"]

[project.optional-dependencies]
test = ["pytest==8.0.0"]

[tool.poetry.dependencies]
python = "^3.11"
pydantic = "^2.5"

[tool.poetry.group.lint.dependencies]
ruff = "*"
`)
	recs, err := ParsePyproject(data, "pyproject.toml")
	require.NoError(t, err)

	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"httpx", "rich", "pytest", "pydantic", "ruff"}, names)
	assert.True(t, recs[1].Unpinned)
	assert.True(t, recs[2].Dev)
	assert.False(t, recs[3].Dev)
	assert.True(t, recs[4].Dev)
	assert.True(t, recs[4].Unpinned)
}

func TestParseCargo(t *testing.T) {
	data := []byte(`[package]
name = "tool"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
anyhow = "1"

[dev-dependencies]
proptest = "*"
`)
	recs, err := ParseCargo(data, "Cargo.toml")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "anyhow", recs[0].Name)
	assert.Equal(t, "1.0", recs[1].DeclaredVersion)
	assert.True(t, recs[2].Dev)
	assert.True(t, recs[2].Unpinned)
	assert.Equal(t, EcosystemCargo, recs[2].Ecosystem)
}

func TestParseGoMod(t *testing.T) {
	data := []byte(`module example.com/app

go 1.23

require (
	github.com/spf13/cobra v1.9.1
	golang.org/x/term v0.32.0 // indirect
)
`)
	recs, err := ParseGoMod(data, "go.mod")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "github.com/spf13/cobra", recs[0].Name)
	assert.Equal(t, "v1.9.1", recs[0].DeclaredVersion)
	assert.False(t, recs[1].Unpinned)

	_, err = ParseGoMod([]byte("require github.com/only/path\n"), "go.mod")
	assert.Error(t, err)
}

func TestParseCondaEnvironment(t *testing.T) {
	data := []byte(`name: ml
channels:
  - conda-forge
dependencies:
  - python=3.11
  - conda-forge::numpy>=1.26
  - scipy
  - pip
  - pip:
      - torch==2.3.0
`)
	recs, err := ParseCondaEnvironment(data, "environment.yml")
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, "python", recs[0].Name)
	assert.Equal(t, "3.11", recs[0].DeclaredVersion)
	assert.Equal(t, "numpy", recs[1].Name)
	assert.False(t, recs[1].Unpinned)
	assert.True(t, recs[2].Unpinned)
	assert.Equal(t, "torch", recs[3].Name)
	assert.Equal(t, EcosystemPyPI, recs[3].Ecosystem)
}

func writeManifest(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInspect(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "requirements.txt", "flask==3.0.0\nrequests\n")
	writeManifest(t, root, "requirements-dev.txt", "pytest>=8\n")
	writeManifest(t, root, "web/package.json", `{"dependencies": {"react": "18.2.0"}, "devDependencies": {"vite": "5.0.0"}}`)
	writeManifest(t, root, "broken/package.json", `{"dependencies": [`)
	writeManifest(t, root, "setup.py", "from setuptools import setup\n")
	writeManifest(t, root, "node_modules/dep/package.json", `{"dependencies": {"x": "*"}}`)

	res, err := Inspect(context.Background(), root, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"requirements.txt", "requirements-dev.txt", "web/package.json", "broken/package.json"}, res.Manifests)
	assert.Equal(t, []string{"setup.py"}, res.Unparsed)
	assert.Equal(t, 4, res.RuntimeCount)
	assert.Equal(t, 1, res.DevCount)

	counts := schema.CountTiers(res.Findings)
	assert.Equal(t, 1, counts.High)
	assert.Equal(t, 1, counts.Medium)

	for _, f := range res.Findings {
		if f.Category == schema.CategoryManifest {
			assert.Equal(t, "broken/package.json", f.File)
			assert.Contains(t, f.Description, "cannot parse broken/package.json")
		}
	}
	assert.Contains(t, res.Recommendations(), "pin dependency versions for reproducible installs")
}

func TestInspect_AuditRecommendation(t *testing.T) {
	root := t.TempDir()
	var lines []string
	for i := 0; i <= AuditThreshold; i++ {
		lines = append(lines, fmt.Sprintf("pkg%d==1.0.%d", i, i))
	}
	writeManifest(t, root, "requirements.txt", strings.Join(lines, "\n"))

	res, err := Inspect(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, AuditThreshold+1, res.Total())
	assert.Equal(t, []string{"consider a dependency audit"}, res.Recommendations())
}

func TestInspect_MissingRoot(t *testing.T) {
	_, err := Inspect(context.Background(), filepath.Join(t.TempDir(), "gone"), nil)
	var notFound *contract.PathNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestInspect_NoManifests(t *testing.T) {
	res, err := Inspect(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"no dependency manifest found"}, res.Recommendations())
}

// FuzzParseRequirement checks that formatting a parsed pin and parsing it again
// yields the same name and version.
func FuzzParseRequirement(f *testing.F) {
	for _, seed := range []string{"requests==2.31.0", "a>=1", "b", "c[x]~=1.0; python_version<'3.9'", "-e .", "==1"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, line string) {
		rec, ok := ParseRequirement(line)
		if !ok {
			return
		}
		if rec.Name == "" {
			t.Fatalf("empty name from %q", line)
		}
		if rec.DeclaredVersion == "" || strings.ContainsAny(rec.DeclaredVersion, ",;#=<>!~()[] \t") {
			return
		}
		again, ok := ParseRequirement(rec.Name + "==" + rec.DeclaredVersion)
		if !ok {
			return
		}
		if again.Name != rec.Name || again.DeclaredVersion != rec.DeclaredVersion {
			t.Errorf("round trip of %q changed: %+v vs %+v", line, rec, again)
		}
	})
}
