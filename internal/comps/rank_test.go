package comps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comp(address string, sqft, lot, price float64) Record {
	return Record{Address: address, Sqft: &sqft, LotSize: &lot, Price: &price}
}

func addresses(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Address
	}
	return out
}

func TestRankAscending(t *testing.T) {
	subject := Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}
	records := []Record{
		comp("fifty", 1050, 5000, 1),
		comp("ten", 1000, 4990, 1),
		comp("two hundred", 800, 5000, 1),
	}

	ranked := Rank(records, subject, 5)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"ten", "fifty", "two hundred"}, addresses(ranked))
	assert.Equal(t, 10.0, *ranked[0].Score)
	assert.Equal(t, 50.0, *ranked[1].Score)
	assert.Equal(t, 200.0, *ranked[2].Score)
}

func TestRankStableTies(t *testing.T) {
	subject := Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}
	records := []Record{
		comp("far", 2000, 5000, 1),
		comp("first tie", 1100, 5000, 1),
		comp("second tie", 900, 5000, 1),
		comp("third tie", 1000, 5100, 1),
	}

	ranked := Rank(records, subject, 5)
	assert.Equal(t, []string{"first tie", "second tie", "third tie", "far"}, addresses(ranked))
}

func TestRankLimit(t *testing.T) {
	subject := Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}
	var records []Record
	for i := 7; i >= 1; i-- {
		records = append(records, comp(string(rune('a'+i)), 1000+float64(i), 5000, 1))
	}

	assert.Len(t, Rank(records, subject, 3), 3)
	assert.Len(t, Rank(records, subject, 0), DefaultLimit, "non-positive limit uses the default")
	assert.Len(t, Rank(records, subject, 100), 7)
	assert.Equal(t, []string{"b", "c"}, addresses(Rank(records, subject, 2)))
}

func TestRankFallbackWhenLotMissing(t *testing.T) {
	subject := Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}
	sqft := func(v float64) *float64 { return &v }
	records := []Record{
		{Address: "a", Sqft: sqft(3000)},
		{Address: "b", Sqft: sqft(1000)},
		{Address: "c", Sqft: sqft(2000)},
	}

	ranked := Rank(records, subject, 2)
	assert.Equal(t, []string{"a", "b"}, addresses(ranked))
	for _, r := range ranked {
		assert.Nil(t, r.Score)
	}
}

func TestRankFallbackIsBatchWide(t *testing.T) {
	subject := Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}
	records := []Record{
		comp("far", 3000, 9000, 1),
		comp("near", 1000, 5000, 1),
		{Address: "missing lot", Sqft: float64Ptr(1000)},
	}

	ranked := Rank(records, subject, 5)
	assert.Equal(t, []string{"far", "near", "missing lot"}, addresses(ranked))
	assert.Nil(t, ranked[0].Score, "one incomplete record disables scoring for all")
}

func TestRankDoesNotMutateInput(t *testing.T) {
	subject := Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}
	records := []Record{
		comp("far", 2000, 5000, 1),
		comp("near", 1000, 5000, 1),
	}

	_ = Rank(records, subject, 5)
	assert.Equal(t, []string{"far", "near"}, addresses(records))
	assert.Nil(t, records[0].Score)
	assert.Nil(t, records[1].Score)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil, Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}, 5))
	assert.Empty(t, Rank([]Record{}, Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}, 5))
}

func TestRankWithCustomScorer(t *testing.T) {
	subject := Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}
	sqftOnly := ScorerFunc(func(r Record, s Subject) float64 {
		d := *r.Sqft - s.LivingAreaSqft
		if d < 0 {
			return -d
		}
		return d
	})
	records := []Record{
		comp("big lot", 1010, 50000, 1),
		comp("close lot", 1200, 5000, 1),
	}

	assert.Equal(t, []string{"close lot", "big lot"}, addresses(Rank(records, subject, 5)))
	assert.Equal(t, []string{"big lot", "close lot"}, addresses(RankWith(sqftOnly, records, subject, 5)))
}
