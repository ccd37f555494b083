package comps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppraiseEndToEnd(t *testing.T) {
	subject := Subject{Address: "100 Main St", LivingAreaSqft: 1000, LotSizeSqft: 5000}
	bounds, err := BuildBounds(subject, DefaultSqftTolerance, DefaultLotTolerance)
	require.NoError(t, err)

	payload := []byte(`{"results": [
		{"address": "comp1", "sqft": 1050, "lot_size": 5100, "price": 200000},
		{"address": "comp2", "sqft": 1400, "lot_size": 6000, "price": 250000},
		{"address": "comp3", "sqft": 950, "lot_size": 4900, "price": 190000}
	]}`)
	records := Normalize(payload, ProviderPropwire)

	v := Appraise(subject, bounds, ProviderPropwire, records, DefaultLimit)

	assert.Equal(t, StatusRanked, v.Status())
	assert.Len(t, v.Comps, 3)
	require.Len(t, v.Top, 3)
	// comp1 and comp3 both score 150; comp1 arrived first.
	assert.Equal(t, []string{"comp1", "comp3", "comp2"}, addresses(v.Top))
	assert.Equal(t, 150.0, *v.Top[0].Score)
	assert.Equal(t, 150.0, *v.Top[1].Score)
	assert.Equal(t, 1400.0, *v.Top[2].Score)

	require.True(t, v.HasARV())
	assert.Equal(t, int64(213333), *v.ARV)
}

func TestAppraiseLimitAffectsARV(t *testing.T) {
	subject := Subject{Address: "100 Main St", LivingAreaSqft: 1000, LotSizeSqft: 5000}
	records := []Record{
		comp("comp1", 1050, 5100, 200000),
		comp("comp2", 1400, 6000, 250000),
		comp("comp3", 950, 4900, 190000),
	}

	v := Appraise(subject, SearchBounds{}, ProviderPropwire, records, 2)
	assert.Equal(t, []string{"comp1", "comp3"}, addresses(v.Top))
	assert.Equal(t, int64(195000), *v.ARV)
}

func TestAppraiseNoComps(t *testing.T) {
	v := Appraise(Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}, SearchBounds{}, ProviderATTOM, []Record{}, 5)
	assert.Equal(t, StatusNoComps, v.Status())
	assert.Empty(t, v.Top)
	assert.False(t, v.Ranked)
	assert.False(t, v.HasARV())
}

func TestAppraiseUnrankedWithoutPrices(t *testing.T) {
	records := Normalize([]byte(`{"property": [{"address": {"oneLine": "1 A St"}}, {"address": {"oneLine": "2 B St"}}]}`), ProviderATTOM)

	v := Appraise(Subject{LivingAreaSqft: 1000, LotSizeSqft: 5000}, SearchBounds{}, ProviderATTOM, records, 5)
	assert.Equal(t, StatusUnranked, v.Status())
	assert.Equal(t, []string{"1 A St", "2 B St"}, addresses(v.Top))
	assert.Nil(t, v.ARV, "missing prices must not become zero")
}
