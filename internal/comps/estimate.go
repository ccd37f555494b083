package comps

import "math"

// Estimate averages the prices present in top and rounds to whole dollars.
// Records without a price are left out of the average entirely.
// It returns false when no record has a price.
//
// Halves round to even (213333.5 -> 213334, 100000.5 -> 100000).
func Estimate(top []Record) (int64, bool) {
	var sum float64
	var n int
	for _, r := range top {
		if r.Price == nil {
			continue
		}
		sum += *r.Price
		n++
	}
	if n == 0 {
		return 0, false
	}
	return int64(math.RoundToEven(sum / float64(n))), true
}
