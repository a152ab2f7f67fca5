package network

import "math"

// StrengthWeights are the tunable constants of the relationship strength
// heuristic. Each factor is capped on its own so no single one dominates.
type StrengthWeights struct {
	ValueUnit   float64 // dollars per value point
	ValueCap    float64
	CountWeight float64 // points per distinct award
	CountCap    float64
	SizeUnit    float64 // dollars of average award size per point
	SizeCap     float64
	Max         float64
}

// DefaultStrengthWeights: $1M of total value is one point (cap 100), each
// award is ten points (cap 50), $100k of average award size is one point
// (cap 25), and the sum is capped at 100.
func DefaultStrengthWeights() StrengthWeights {
	return StrengthWeights{
		ValueUnit:   1_000_000,
		ValueCap:    100,
		CountWeight: 10,
		CountCap:    50,
		SizeUnit:    100_000,
		SizeCap:     25,
		Max:         100,
	}
}

// Strength scores one relationship in [0, w.Max]
func (w StrengthWeights) Strength(totalValue float64, activeAwards int, avgAwardSize float64) float64 {
	valueScore := math.Min(safeDiv(totalValue, w.ValueUnit), w.ValueCap)
	countScore := math.Min(float64(activeAwards)*w.CountWeight, w.CountCap)
	sizeScore := math.Min(safeDiv(avgAwardSize, w.SizeUnit), w.SizeCap)

	strength := math.Min(valueScore+countScore+sizeScore, w.Max)
	// negative award totals in the source data must not push below zero
	return math.Max(strength, 0)
}

// safeDiv returns 0 instead of NaN/Inf for a zero denominator
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// NormalizedWeight scales value against max into [0, 1] for display
// weighting. A zero or negative max yields 0.
func NormalizedWeight(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Max(0, math.Min(value/max, 1))
}
