package model

import "github.com/phenomenon0/nba-oracle/pkg/oracle/odds"

// Tier is the categorical confidence label for a win-side pick.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// TierFor maps a picked-side win probability onto a confidence tier.
func (p Profile) TierFor(winProb float64) Tier {
	switch {
	case winProb >= p.GodThreshold:
		return TierHigh
	case winProb >= p.MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// DetectValue compares the model's raw home probability to the market's
// devigged implied probability. Returns nil when no market line exists or the
// divergence is below the value threshold.
func (p Profile) DetectValue(rawHomeProb float64, line *odds.MarketLine) *ValueBet {
	if line == nil {
		return nil
	}
	marketProb := line.HomeWinProb()
	if marketProb <= 0 {
		return nil
	}

	edge := rawHomeProb - marketProb
	if edge < p.ValueThreshold && edge > -p.ValueThreshold {
		return nil
	}

	side := SideHome
	if edge < 0 {
		side = SideAway
	}
	return &ValueBet{
		Side:       side,
		Edge:       edge,
		ModelProb:  rawHomeProb,
		MarketProb: marketProb,
	}
}
