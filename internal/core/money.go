// Package core holds the billing domain: the service catalog model,
// period arithmetic, and the one rule engine both calculation paths
// (catalog form input and the relational ledger) share.
package core

import "math"

// Round2 rounds a money amount to 2 decimal places, half away from
// zero. Applied per line item and again on the total so stored
// amounts reproduce the legacy output exactly.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundReading snaps a meter reading to the nearest whole unit.
// Fractional entries are not supported for ordinary meters.
func RoundReading(v float64) float64 {
	return math.Round(v)
}

func ptr(v float64) *float64 { return &v }
