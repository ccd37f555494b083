package comps

import "sort"

// Record is one comparable sale in the shape shared by every provider.
// A nil Sqft, LotSize or Price means the provider did not supply a usable value.
type Record struct {
	Sqft     *float64 `json:"sqft,omitempty"`
	LotSize  *float64 `json:"lot_size,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Address  string   `json:"address,omitempty"`
	SaleDate string   `json:"sale_date,omitempty"`

	// Fields holds every top-level key of the raw provider object.
	Fields map[string]any `json:"fields,omitempty"`

	// Score is set by Rank; nil when the batch could not be scored.
	Score *float64 `json:"score,omitempty"`
}

// hasDimensions reports whether the record can be scored.
func (r Record) hasDimensions() bool {
	return r.Sqft != nil && r.LotSize != nil
}

// Columns returns the sorted union of passthrough field names across records.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range records {
		for k := range r.Fields {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}

func float64Ptr(v float64) *float64 {
	return &v
}
