package comps

import "time"

// Status summarizes how much a valuation could say.
type Status string

const (
	StatusNoComps  Status = "no_comps"
	StatusUnranked Status = "unranked"
	StatusRanked   Status = "ranked"
)

// Valuation is the outcome of one ARV request.
type Valuation struct {
	Subject   Subject      `json:"subject"`
	Bounds    SearchBounds `json:"bounds"`
	Provider  Provider     `json:"provider"`
	Comps     []Record     `json:"comps"`
	Top       []Record     `json:"top_matches"`
	Ranked    bool         `json:"ranked"`
	ARV       *int64       `json:"arv,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Appraise runs the engine over already-fetched records.
func Appraise(s Subject, b SearchBounds, p Provider, records []Record, limit int) *Valuation {
	top := Rank(records, s, limit)
	v := &Valuation{
		Subject:   s,
		Bounds:    b,
		Provider:  p,
		Comps:     records,
		Top:       top,
		Ranked:    len(top) > 0 && top[0].Score != nil,
		CreatedAt: time.Now().UTC(),
	}
	if arv, ok := Estimate(top); ok {
		v.ARV = &arv
	}
	return v
}

// Status reports whether comps were found and ranked.
func (v *Valuation) Status() Status {
	switch {
	case len(v.Comps) == 0:
		return StatusNoComps
	case !v.Ranked:
		return StatusUnranked
	}
	return StatusRanked
}

// HasARV reports whether a price estimate could be computed.
func (v *Valuation) HasARV() bool {
	return v.ARV != nil
}
