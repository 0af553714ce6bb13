// Package money holds the rupee arithmetic helpers. Amounts are float64
// rupees rounded to two decimals at every accumulation point, matching the
// persisted data.
package money

import "math"

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
