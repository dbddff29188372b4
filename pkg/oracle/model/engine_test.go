package model

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/odds"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func strongHome() stats.TeamStats {
	return stats.TeamStats{PPG: 118.2, OppPPG: 108.1, Pace: 99.2, OffRating: 121.4, DefRating: 110.8, Wins: 43, Losses: 14}
}

func weakAway() stats.TeamStats {
	return stats.TeamStats{PPG: 110.4, OppPPG: 112.8, Pace: 98.8, OffRating: 112.8, DefRating: 115.4, Wins: 21, Losses: 34}
}

func TestPredictProbabilityClamp(t *testing.T) {
	engine := NewEngine(DefaultProfile())

	cases := []struct {
		name       string
		home, away stats.TeamStats
	}{
		{"even matchup", stats.LeagueAverages(), stats.LeagueAverages()},
		{"large favorite", strongHome(), weakAway()},
		{"large underdog", weakAway(), strongHome()},
		{"blowout mismatch",
			stats.TeamStats{PPG: 130, OppPPG: 100, Pace: 102, OffRating: 125, DefRating: 105, Wins: 55, Losses: 5},
			stats.TeamStats{PPG: 100, OppPPG: 125, Pace: 95, OffRating: 102, DefRating: 122, Wins: 5, Losses: 55}},
		{"missing fields", stats.TeamStats{}, stats.TeamStats{PPG: 115}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := engine.Predict(tc.home, tc.away, stats.NeutralForm(), stats.NeutralForm(), false, false, nil)
			if out.WinProb < 0.5 || out.WinProb > 0.95 {
				t.Errorf("picked-side probability %v outside [0.5, 0.95]", out.WinProb)
			}
			if out.RawHomeProb < 0.05 || out.RawHomeProb > 0.95 {
				t.Errorf("raw home probability %v outside [0.05, 0.95]", out.RawHomeProb)
			}
		})
	}
}

func TestPredictSymmetryWithoutHomeAdvantage(t *testing.T) {
	profile := DefaultProfile()
	profile.HomeAdvantage = 0
	engine := NewEngine(profile)

	home := stats.TeamStats{PPG: 114, OppPPG: 111, Pace: 99, OffRating: 115, DefRating: 112, Wins: 30, Losses: 25}
	away := stats.TeamStats{PPG: 112, OppPPG: 113, Pace: 98, OffRating: 113, DefRating: 114, Wins: 26, Losses: 29}
	form := stats.NeutralForm()

	fwd := engine.Predict(home, away, form, form, false, false, nil)
	rev := engine.Predict(away, home, form, form, false, false, nil)

	if !approxEqual(fwd.RawHomeProb, 1-rev.RawHomeProb, 1e-9) {
		t.Errorf("swapped matchup not complementary: %v vs 1-%v", fwd.RawHomeProb, rev.RawHomeProb)
	}
}

func TestPredictDefensiveDampener(t *testing.T) {
	home := stats.TeamStats{PPG: 108, OppPPG: 110, Pace: 96, OffRating: 108, DefRating: 112, Wins: 20, Losses: 35}
	away := stats.TeamStats{PPG: 107, OppPPG: 109, Pace: 97, OffRating: 107, DefRating: 110, Wins: 22, Losses: 33}
	form := stats.NeutralForm()

	damped := NewEngine(DefaultProfile()).Predict(home, away, form, form, false, false, nil)

	off := DefaultProfile()
	off.DefensiveDampener = 1.0
	undamped := NewEngine(off).Predict(home, away, form, form, false, false, nil)

	if !damped.BothDefensive {
		t.Fatal("expected both-defensive trigger for two net-negative teams")
	}
	ratio := damped.Total / undamped.Total
	if !approxEqual(ratio, 0.97, 1e-9) {
		t.Errorf("dampened total ratio = %v, want 0.97", ratio)
	}
}

func TestPredictLargeFavoriteScenario(t *testing.T) {
	engine := NewEngine(DefaultProfile())
	form := stats.NeutralForm()

	out := engine.Predict(strongHome(), weakAway(), form, form, false, false, nil)

	if out.Pick != SideHome {
		t.Fatalf("pick = %v, want HOME", out.Pick)
	}
	if out.WinProb < 0.85 {
		t.Errorf("win probability = %v, want >= 0.85", out.WinProb)
	}
	// Pinned to this profile's blend constants.
	if !approxEqual(out.WinProb, 0.95, 1e-9) {
		t.Errorf("win probability = %v, want clamp ceiling 0.95", out.WinProb)
	}
	if !approxEqual(out.Total, 229.2, 0.5) {
		t.Errorf("predicted total = %v, want ~229.2", out.Total)
	}
	if out.Total < 215 || out.Total > 235 {
		t.Errorf("predicted total = %v outside plausible 215-235 range", out.Total)
	}
	if out.LineSource != LineSourceModel {
		t.Errorf("line source = %v, want model-derived with no market line", out.LineSource)
	}
	if !approxEqual(out.Line, 225.2, 0.1) {
		t.Errorf("model line = %v, want ~225.2", out.Line)
	}
	if out.TotalPick != Over {
		t.Errorf("total pick = %v, want OVER of the model line", out.TotalPick)
	}
}

func TestPredictBackToBackShiftsProbability(t *testing.T) {
	engine := NewEngine(DefaultProfile())
	home := stats.LeagueAverages()
	away := stats.LeagueAverages()
	form := stats.NeutralForm()

	rested := engine.Predict(home, away, form, form, false, false, nil)
	homeTired := engine.Predict(home, away, form, form, true, false, nil)
	awayTired := engine.Predict(home, away, form, form, false, true, nil)

	if homeTired.RawHomeProb >= rested.RawHomeProb {
		t.Errorf("home B2B did not lower home probability: %v vs %v", homeTired.RawHomeProb, rested.RawHomeProb)
	}
	if awayTired.RawHomeProb <= rested.RawHomeProb {
		t.Errorf("away B2B did not raise home probability: %v vs %v", awayTired.RawHomeProb, rested.RawHomeProb)
	}
	if homeTired.Total >= rested.Total {
		t.Errorf("home B2B did not lower total: %v vs %v", homeTired.Total, rested.Total)
	}
}

func TestPredictMarketLinePreferred(t *testing.T) {
	engine := NewEngine(DefaultProfile())
	form := stats.NeutralForm()

	line := &odds.MarketLine{
		HomeTeam: "Boston Celtics",
		AwayTeam: "Miami Heat",
		Total:    decimal.NewFromFloat(224.5),
		HasTotal: true,
	}
	out := engine.Predict(strongHome(), weakAway(), form, form, false, false, line)

	if out.LineSource != LineSourceMarket {
		t.Fatalf("line source = %v, want market", out.LineSource)
	}
	if out.Line != 224.5 {
		t.Errorf("line = %v, want 224.5", out.Line)
	}
	if out.TotalPick != Over {
		t.Errorf("total pick = %v, want OVER at 224.5 with total ~229", out.TotalPick)
	}
}

func TestPredictStrongEdgeThresholds(t *testing.T) {
	engine := NewEngine(DefaultProfile())
	form := stats.NeutralForm()

	// A ~229 total against a 218 market line is an 11-point edge.
	market := &odds.MarketLine{Total: decimal.NewFromFloat(218), HasTotal: true}
	out := engine.Predict(strongHome(), weakAway(), form, form, false, false, market)
	if !out.StrongEdge {
		t.Errorf("edge %v vs market line should be strong at >= 10", out.Edge)
	}

	// The same total against a 224.5 line is only ~4.7 points.
	market = &odds.MarketLine{Total: decimal.NewFromFloat(224.5), HasTotal: true}
	out = engine.Predict(strongHome(), weakAway(), form, form, false, false, market)
	if out.StrongEdge {
		t.Errorf("edge %v vs market line should not be strong below 10", out.Edge)
	}
}

func TestLegacyProfileConstants(t *testing.T) {
	p := LegacyProfile()
	sum := p.WeightPyth + p.WeightNet + p.WeightEff + p.WeightWinPct + p.WeightForm
	if !approxEqual(sum, 1.0, 1e-9) {
		t.Errorf("legacy weights sum to %v, want 1.0", sum)
	}
	if p.TotalSeasonWeight != 0 {
		t.Errorf("legacy season weight = %v, want 0", p.TotalSeasonWeight)
	}
	if ProfileByName("legacy").Name != "legacy" {
		t.Error("ProfileByName did not resolve legacy profile")
	}
	if ProfileByName("unknown").Name != "composite" {
		t.Error("ProfileByName did not fall back to composite")
	}
}
