package core

import (
	"testing"

	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
)

func findings(high, medium, low int) []schema.Finding {
	var out []schema.Finding
	add := func(n int, tier schema.RiskTier) {
		for range n {
			out = append(out, schema.Finding{Tier: tier})
		}
	}
	add(high, schema.HighRisk)
	add(medium, schema.MediumRisk)
	add(low, schema.LowRisk)
	return out
}

// TestScore tests the step scoring bands of each policy.
func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		policy   ScorePolicy
		findings []schema.Finding
		expected int
	}{
		{"no findings", SecurityPolicy, nil, 10},
		{"security one high", SecurityPolicy, findings(1, 0, 0), 7},
		{"security high and medium", SecurityPolicy, findings(1, 1, 0), 5},
		{"security five lows are free", SecurityPolicy, findings(0, 0, 5), 10},
		{"security sixth low costs one", SecurityPolicy, findings(0, 0, 6), 9},
		{"security eleven lows cost one", SecurityPolicy, findings(0, 0, 11), 9},
		{"security twelve lows cost two", SecurityPolicy, findings(0, 0, 12), 8},
		{"security floor", SecurityPolicy, findings(10, 0, 0), 2},
		{"sql one each", SQLPolicy, findings(1, 1, 1), 4},
		{"complexity four complex functions", ComplexityPolicy, findings(0, 4, 0), 9},
		{"complexity six complex functions", ComplexityPolicy, findings(0, 6, 0), 8},
		{"complexity lows ignored", ComplexityPolicy, findings(0, 0, 50), 10},
		{"syntax error and style", SyntaxPolicy, findings(1, 0, 2), 7},
		{"dependency lows ignored", DependencyPolicy, findings(0, 2, 9), 8},
		{"default lows per three", DefaultPolicy, findings(0, 0, 4), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.findings, tt.policy))
		})
	}
}

func TestTierPenalty(t *testing.T) {
	p := TierPenalty{Points: 2, Band: 0}
	assert.Equal(t, 0, p.penalty(0))
	assert.Equal(t, 4, p.penalty(2))

	assert.Equal(t, 0, TierPenalty{}.penalty(100))
}
