package core

import (
	"testing"

	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CoversAllAnalyzers(t *testing.T) {
	require.Len(t, Registry, len(schema.AllAnalyzers))
	for _, name := range schema.AllAnalyzers {
		a, ok := Lookup(name)
		require.True(t, ok, "analyzer %s should be registered", name)
		assert.Equal(t, name, a.Name())
		assert.NotEmpty(t, a.Description())
	}
}

func TestRegistry_UniqueTools(t *testing.T) {
	seen := map[string]schema.AnalyzerName{}
	for _, a := range Analyzers() {
		prev, dup := seen[a.Tool()]
		assert.False(t, dup, "tool %s used by %s and %s", a.Tool(), prev, a.Name())
		seen[a.Tool()] = a.Name()
	}
}

func TestAnalyzers_ReportOrder(t *testing.T) {
	names := make([]schema.AnalyzerName, 0, len(schema.AllAnalyzers))
	for _, a := range Analyzers() {
		names = append(names, a.Name())
	}
	assert.Equal(t, schema.AllAnalyzers, names)
}

func TestPathAnalyzers(t *testing.T) {
	all := PathAnalyzers()
	assert.Len(t, all, len(schema.AllAnalyzers)-1)
	for _, a := range all {
		assert.NotEqual(t, schema.ProbeAnalyzer, a.Name())
	}
}

func TestLookup(t *testing.T) {
	_, ok := Lookup("lint")
	assert.False(t, ok)

	a, ok := LookupTool("scan_security_vulnerabilities")
	require.True(t, ok)
	assert.Equal(t, schema.SecurityAnalyzer, a.Name())

	a, ok = LookupTool("check_localhost_site")
	require.True(t, ok)
	assert.Equal(t, schema.ProbeAnalyzer, a.Name())

	_, ok = LookupTool("nope")
	assert.False(t, ok)
}
