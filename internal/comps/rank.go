package comps

import (
	"math"
	"slices"
)

// Scorer computes how far a comparable is from the subject. Lower is closer.
type Scorer interface {
	Score(r Record, s Subject) float64
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(r Record, s Subject) float64

// Score implements Scorer.
func (f ScorerFunc) Score(r Record, s Subject) float64 { return f(r, s) }

// AdditiveScorer sums the absolute living-area and lot-size differences.
// The two terms are unweighted even though lot sizes are usually much larger
// than living areas, so lot differences dominate the score.
var AdditiveScorer Scorer = ScorerFunc(func(r Record, s Subject) float64 {
	return math.Abs(*r.Sqft-s.LivingAreaSqft) + math.Abs(*r.LotSize-s.LotSizeSqft)
})

// Rank orders records by AdditiveScorer and returns at most limit of them.
func Rank(records []Record, s Subject, limit int) []Record {
	return RankWith(AdditiveScorer, records, s, limit)
}

// RankWith orders records closest-first by scorer and returns at most limit
// of them. A limit of zero or less means DefaultLimit.
//
// Scoring is all or nothing: if any record lacks sqft or lot size, the first
// limit records are returned in received order with no score attached.
// Equal scores keep their received order. The input slice is not modified.
func RankWith(scorer Scorer, records []Record, s Subject, limit int) []Record {
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := slices.Clone(records)
	for i := range out {
		out[i].Score = nil
	}

	if !scorable(out) {
		return out[:min(limit, len(out))]
	}

	for i := range out {
		out[i].Score = float64Ptr(scorer.Score(out[i], s))
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		switch {
		case *a.Score < *b.Score:
			return -1
		case *a.Score > *b.Score:
			return 1
		}
		return 0
	})

	return out[:min(limit, len(out))]
}

func scorable(records []Record) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if !r.hasDimensions() {
			return false
		}
	}
	return true
}
