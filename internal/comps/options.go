package comps

// Options is the per-request configuration of the engine.
type Options struct {
	SqftTolerance float64 `json:"sqft_tolerance"`
	LotTolerance  float64 `json:"lot_tolerance"`
	RadiusMiles   float64 `json:"radius_miles"`
	LookbackDays  int     `json:"lookback_days"`
	Limit         int     `json:"limit"`
}

// DefaultOptions returns the stock search window and top-N size.
func DefaultOptions() Options {
	return Options{
		SqftTolerance: DefaultSqftTolerance,
		LotTolerance:  DefaultLotTolerance,
		RadiusMiles:   DefaultRadiusMiles,
		LookbackDays:  DefaultLookbackDays,
		Limit:         DefaultLimit,
	}
}

// Bounds builds search bounds using these options' tolerances, radius and lookback.
// Zero radius or lookback fall back to the defaults.
func (o Options) Bounds(s Subject) (SearchBounds, error) {
	b, err := BuildBounds(s, o.SqftTolerance, o.LotTolerance)
	if err != nil {
		return SearchBounds{}, err
	}
	if o.RadiusMiles > 0 {
		b.RadiusMiles = o.RadiusMiles
	}
	if o.LookbackDays > 0 {
		b.LookbackDays = o.LookbackDays
	}
	return b, nil
}
