package comps

import "math"

// Search defaults used when no configuration overrides them.
const (
	DefaultSqftTolerance = 0.20
	DefaultLotTolerance  = 0.20
	DefaultRadiusMiles   = 1
	DefaultLookbackDays  = 185
	DefaultLimit         = 5
)

// SearchBounds are the query parameters sent to a comps provider.
type SearchBounds struct {
	MinSqft      int64   `json:"min_sqft"`
	MaxSqft      int64   `json:"max_sqft"`
	MinLot       int64   `json:"min_lot"`
	MaxLot       int64   `json:"max_lot"`
	RadiusMiles  float64 `json:"radius_miles"`
	LookbackDays int     `json:"lookback_days"`
}

// BuildBounds derives the sqft and lot search window for a subject.
// Bounds are truncated toward zero, not rounded.
func BuildBounds(s Subject, sqftTolerance, lotTolerance float64) (SearchBounds, error) {
	if err := checkSize("sqft", s.LivingAreaSqft); err != nil {
		return SearchBounds{}, err
	}
	if err := checkSize("lot_size", s.LotSizeSqft); err != nil {
		return SearchBounds{}, err
	}
	if err := checkTolerance("sqft_tolerance", sqftTolerance); err != nil {
		return SearchBounds{}, err
	}
	if err := checkTolerance("lot_tolerance", lotTolerance); err != nil {
		return SearchBounds{}, err
	}

	return SearchBounds{
		MinSqft:      truncate(s.LivingAreaSqft * (1 - sqftTolerance)),
		MaxSqft:      truncate(s.LivingAreaSqft * (1 + sqftTolerance)),
		MinLot:       truncate(s.LotSizeSqft * (1 - lotTolerance)),
		MaxLot:       truncate(s.LotSizeSqft * (1 + lotTolerance)),
		RadiusMiles:  DefaultRadiusMiles,
		LookbackDays: DefaultLookbackDays,
	}, nil
}

// maxSizeSqft keeps v*(1+tolerance) inside int64 for any tolerance below 1.
const maxSizeSqft = 1 << 62

// checkSize rejects sizes that are not positive finite numbers small enough
// to produce integer bounds. NaN fails every comparison, so test for the
// accepted range rather than the rejected one.
func checkSize(field string, v float64) error {
	if !(v > 0) {
		return &InvalidInputError{Field: field, Value: v, Reason: "must be positive"}
	}
	if math.IsInf(v, 0) || v >= maxSizeSqft {
		return &InvalidInputError{Field: field, Value: v, Reason: "is too large"}
	}
	return nil
}

func checkTolerance(field string, v float64) error {
	if !(v >= 0 && v < 1) {
		return &InvalidInputError{Field: field, Value: v, Reason: "must be in [0, 1)"}
	}
	return nil
}

func truncate(v float64) int64 {
	return int64(math.Trunc(v))
}
