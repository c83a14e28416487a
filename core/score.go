package core

import (
	"github.com/qascope/qascope/schema"
)

// TierPenalty describes how findings of one tier reduce the score.
// The first Grace findings are free; after that every started group of
// Band findings costs Points.
type TierPenalty struct {
	Points int
	Band   int
	Grace  int
}

// penalty returns the points deducted for n findings.
func (p TierPenalty) penalty(n int) int {
	if p.Points <= 0 || n <= p.Grace {
		return 0
	}
	band := max(p.Band, 1)
	excess := n - p.Grace
	return p.Points * ((excess + band - 1) / band)
}

// ScorePolicy is the per-tier penalty table of one analyzer.
type ScorePolicy struct {
	High   TierPenalty
	Medium TierPenalty
	Low    TierPenalty
}

// Scoring policies per analyzer.
var (
	SecurityPolicy = ScorePolicy{
		High:   TierPenalty{Points: 3, Band: 1},
		Medium: TierPenalty{Points: 2, Band: 1},
		Low:    TierPenalty{Points: 1, Band: 6, Grace: 5},
	}
	SQLPolicy = ScorePolicy{
		High:   TierPenalty{Points: 3, Band: 1},
		Medium: TierPenalty{Points: 2, Band: 1},
		Low:    TierPenalty{Points: 1, Band: 1},
	}
	ComplexityPolicy = ScorePolicy{
		High:   TierPenalty{Points: 1, Band: 1},
		Medium: TierPenalty{Points: 1, Band: 5},
	}
	SyntaxPolicy = ScorePolicy{
		High: TierPenalty{Points: 1, Band: 1},
		Low:  TierPenalty{Points: 1, Band: 1},
	}
	DependencyPolicy = ScorePolicy{
		High:   TierPenalty{Points: 1, Band: 1},
		Medium: TierPenalty{Points: 1, Band: 1},
	}
	DefaultPolicy = ScorePolicy{
		High:   TierPenalty{Points: 1, Band: 1},
		Medium: TierPenalty{Points: 1, Band: 1},
		Low:    TierPenalty{Points: 1, Band: 3},
	}
)

// Score maps findings to a quality score. No findings score schema.MaxScore,
// any findings score within [schema.FloorScore, schema.MaxScore], and adding a
// finding never raises the score.
func Score(findings []schema.Finding, policy ScorePolicy) int {
	return ScoreCounts(schema.CountTiers(findings), policy)
}

// ScoreCounts is Score over precomputed tier counts.
func ScoreCounts(counts schema.TierCounts, policy ScorePolicy) int {
	if counts.Total() == 0 {
		return schema.MaxScore
	}
	total := policy.High.penalty(counts.High) +
		policy.Medium.penalty(counts.Medium) +
		policy.Low.penalty(counts.Low)
	return min(max(schema.MaxScore-total, schema.FloorScore), schema.MaxScore)
}
