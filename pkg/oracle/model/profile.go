// Package model implements the composite game prediction engine: a weighted
// blend of pythagorean expectation, efficiency matchups, season record, and
// recent form squashed into a win probability, plus a pace-adjusted totals
// estimate compared against a market or model-derived line.
package model

// Profile is the full constant set for one model variant. Engines take a
// Profile at construction so tests and callers can swap variants without
// touching package state.
type Profile struct {
	Name string

	// Win probability blend. Weights apply to the five edge signals and
	// should sum to 1.
	PythExponent float64 // pythagorean exponent
	EffScale     float64 // rating-difference normalizer
	WeightPyth   float64
	WeightNet    float64
	WeightEff    float64
	WeightWinPct float64
	WeightForm   float64

	HomeAdvantage float64 // probability-equivalent home court shift
	B2BShift      float64 // fatigue shift per back-to-back side

	SigmoidScale float64 // multiplier applied to the blended score
	ProbFloor    float64
	ProbCeil     float64

	// Totals estimate. The three weights blend season scoring rate, recent
	// scoring average, and the opponent-adjusted matchup term.
	LeaguePace         float64
	TotalSeasonWeight  float64
	TotalRecentWeight  float64
	TotalMatchupWeight float64
	B2BTotalFactor     float64 // per-side multiplier on a back-to-back
	DefensiveDampener  float64 // per-side multiplier when both nets are negative

	// Model-derived line and edge policy.
	ModelLinePaceCoeff float64
	FirstHalfShare     float64
	StrongEdgeMarket   float64 // edge needed for a strong call vs a market line
	StrongEdgeModel    float64 // looser threshold vs our own line

	// Signal tag thresholds.
	PythGapTag     float64
	DominanceGap   float64
	HotWins        int
	ColdWins       int
	StreakTag      int
	ShootoutTotal  float64
	GrindTotal     float64
	ValueThreshold float64 // model-vs-market probability divergence

	// Confidence tiers.
	GodThreshold    float64
	MediumThreshold float64
}

// DefaultProfile returns the composite variant used in production.
func DefaultProfile() Profile {
	return Profile{
		Name: "composite",

		PythExponent: 13.91,
		EffScale:     20,
		WeightPyth:   0.28,
		WeightNet:    0.22,
		WeightEff:    0.20,
		WeightWinPct: 0.18,
		WeightForm:   0.12,

		HomeAdvantage: 0.045,
		B2BShift:      0.04,

		SigmoidScale: 10,
		ProbFloor:    0.05,
		ProbCeil:     0.95,

		LeaguePace:         98.5,
		TotalSeasonWeight:  0.35,
		TotalRecentWeight:  0.25,
		TotalMatchupWeight: 0.40,
		B2BTotalFactor:     0.98,
		DefensiveDampener:  0.97,

		ModelLinePaceCoeff: 0.8,
		FirstHalfShare:     0.475,
		StrongEdgeMarket:   10.0,
		StrongEdgeModel:    8.0,

		PythGapTag:     0.08,
		DominanceGap:   5,
		HotWins:        8,
		ColdWins:       2,
		StreakTag:      4,
		ShootoutTotal:  240,
		GrindTotal:     215,
		ValueThreshold: 0.05,

		GodThreshold:    0.70,
		MediumThreshold: 0.60,
	}
}

// LegacyProfile returns the earlier variant: heavier efficiency weighting, no
// season-record term, and a totals blend that ignores season scoring rate.
func LegacyProfile() Profile {
	p := DefaultProfile()
	p.Name = "legacy"
	p.WeightPyth = 0.30
	p.WeightNet = 0.25
	p.WeightEff = 0.30
	p.WeightWinPct = 0
	p.WeightForm = 0.15
	p.TotalSeasonWeight = 0
	p.TotalRecentWeight = 0.40
	p.TotalMatchupWeight = 0.60
	return p
}

// ProfileByName resolves a profile name from config or flags. Unknown names
// fall back to the default profile.
func ProfileByName(name string) Profile {
	if name == "legacy" {
		return LegacyProfile()
	}
	return DefaultProfile()
}
