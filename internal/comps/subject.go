// Package comps selects comparable sales for a subject property and turns
// them into an After-Repair-Value estimate.
//
// Everything in this package is a pure transformation over its inputs. It
// never performs I/O, so a single Options value can be shared freely across
// concurrent valuations.
package comps

import (
	"fmt"
	"strings"
)

// Minimum attribute sizes accepted from a user.
const (
	MinLivingAreaSqft = 300
	MinLotSizeSqft    = 500
)

// Subject is the property being valued.
type Subject struct {
	Address        string  `json:"address"`
	LivingAreaSqft float64 `json:"sqft"`
	LotSizeSqft    float64 `json:"lot_size"`
}

// Validate checks the subject against the minimums a user may enter.
func (s Subject) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return &InvalidInputError{Field: "address", Reason: "is required"}
	}
	if !(s.LivingAreaSqft >= MinLivingAreaSqft) {
		return &InvalidInputError{
			Field:  "sqft",
			Value:  s.LivingAreaSqft,
			Reason: fmt.Sprintf("must be at least %d", MinLivingAreaSqft),
		}
	}
	if !(s.LotSizeSqft >= MinLotSizeSqft) {
		return &InvalidInputError{
			Field:  "lot_size",
			Value:  s.LotSizeSqft,
			Reason: fmt.Sprintf("must be at least %d", MinLotSizeSqft),
		}
	}
	if err := checkSize("sqft", s.LivingAreaSqft); err != nil {
		return err
	}
	return checkSize("lot_size", s.LotSizeSqft)
}

// InvalidInputError reports a subject or option value that violates its contract.
type InvalidInputError struct {
	Field  string
	Value  any // nil when there is no meaningful value to report
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}
