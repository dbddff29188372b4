package model

import (
	"fmt"
	"math"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/odds"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
)

// Side identifies one side of a matchup.
type Side int

const (
	SideHome Side = iota
	SideAway
)

func (s Side) String() string {
	if s == SideAway {
		return "AWAY"
	}
	return "HOME"
}

// TotalSide is an over/under call.
type TotalSide int

const (
	Over TotalSide = iota
	Under
)

func (t TotalSide) String() string {
	if t == Under {
		return "UNDER"
	}
	return "OVER"
}

// LineSource records where the totals line came from.
type LineSource int

const (
	LineSourceModel LineSource = iota
	LineSourceMarket
)

func (l LineSource) String() string {
	if l == LineSourceMarket {
		return "market"
	}
	return "model"
}

// ValueBet flags a material divergence between the model and the market.
type ValueBet struct {
	Side       Side    `json:"side"`
	Edge       float64 `json:"edge"` // model minus market, signed toward home
	ModelProb  float64 `json:"model_prob"`
	MarketProb float64 `json:"market_prob"`
}

// Outcome is the full prediction for one game, including every intermediate
// signal needed to explain the pick.
type Outcome struct {
	Pick        Side    `json:"pick"`
	WinProb     float64 `json:"win_prob"`      // picked side, [0.5, 0.95]
	RawHomeProb float64 `json:"raw_home_prob"` // [0.05, 0.95]

	HomePyth float64 `json:"home_pyth"`
	AwayPyth float64 `json:"away_pyth"`

	HomeEst float64 `json:"home_est"`
	AwayEst float64 `json:"away_est"`
	Total   float64 `json:"total"`

	Line       float64    `json:"line"`
	LineSource LineSource `json:"line_source"`
	TotalPick  TotalSide  `json:"total_pick"`
	Edge       float64    `json:"edge"`
	StrongEdge bool       `json:"strong_edge"`

	FirstHalfEst  float64   `json:"fh_est"`
	FirstHalfLine float64   `json:"fh_line"`
	FirstHalfPick TotalSide `json:"fh_pick"`

	HomeB2B       bool `json:"home_b2b"`
	AwayB2B       bool `json:"away_b2b"`
	BothDefensive bool `json:"both_defensive"`

	Tier    Tier      `json:"tier"`
	GodPick bool      `json:"god_pick"`
	Value   *ValueBet `json:"value,omitempty"`

	Signals []string `json:"signals"`
}

// Engine evaluates matchups under one constant profile.
type Engine struct {
	profile Profile
}

// NewEngine creates an engine for the given profile.
func NewEngine(profile Profile) *Engine {
	return &Engine{profile: profile}
}

// Profile returns the engine's constant set.
func (e *Engine) Profile() Profile {
	return e.profile
}

// Predict evaluates one matchup. Missing stat fields degrade to league
// averages; the function never fails.
func (e *Engine) Predict(home, away stats.TeamStats, homeForm, awayForm stats.RecentForm, homeB2B, awayB2B bool, line *odds.MarketLine) Outcome {
	p := e.profile
	home = fillDefaults(home)
	away = fillDefaults(away)

	hPyth := pythagorean(home.PPG, home.OppPPG, p.PythExponent)
	aPyth := pythagorean(away.PPG, away.OppPPG, p.PythExponent)
	pythEdge := hPyth - aPyth

	netEdge := (home.NetRating() - away.NetRating()) / p.EffScale
	effEdge := ((home.OffRating - away.DefRating) - (away.OffRating - home.DefRating)) / p.EffScale
	wpEdge := home.WinPct() - away.WinPct()
	formEdge := homeForm.FormScore - awayForm.FormScore

	shift := p.HomeAdvantage
	if homeB2B {
		shift -= p.B2BShift
	}
	if awayB2B {
		shift += p.B2BShift
	}

	score := pythEdge*p.WeightPyth +
		netEdge*p.WeightNet +
		effEdge*p.WeightEff +
		wpEdge*p.WeightWinPct +
		formEdge*p.WeightForm +
		shift
	rawHome := clamp(sigmoid(score*p.SigmoidScale), p.ProbFloor, p.ProbCeil)

	pick := SideHome
	winProb := rawHome
	if rawHome < 0.5 {
		pick = SideAway
		winProb = 1 - rawHome
	}

	// Pace-adjusted totals estimate.
	avgPace := (home.Pace + away.Pace) / 2
	paceFactor := avgPace / p.LeaguePace

	hEst := (home.PPG*p.TotalSeasonWeight +
		homeForm.AvgPoints*p.TotalRecentWeight +
		((home.OffRating-away.DefRating)+away.OppPPG)*p.TotalMatchupWeight) * paceFactor
	aEst := (away.PPG*p.TotalSeasonWeight +
		awayForm.AvgPoints*p.TotalRecentWeight +
		((away.OffRating-home.DefRating)+home.OppPPG)*p.TotalMatchupWeight) * paceFactor
	if homeB2B {
		hEst *= p.B2BTotalFactor
	}
	if awayB2B {
		aEst *= p.B2BTotalFactor
	}

	bothDefensive := home.NetRating() < 0 && away.NetRating() < 0
	if bothDefensive {
		hEst *= p.DefensiveDampener
		aEst *= p.DefensiveDampener
	}
	total := hEst + aEst

	ouLine, source := e.totalLine(home, away, avgPace, line)

	totalPick := Under
	if total > ouLine {
		totalPick = Over
	}
	edge := round1(math.Abs(total - ouLine))

	strongThreshold := p.StrongEdgeModel
	if source == LineSourceMarket {
		strongThreshold = p.StrongEdgeMarket
	}

	fhEst := total * p.FirstHalfShare
	fhLine := round1(ouLine * p.FirstHalfShare)
	fhPick := Under
	if fhEst > fhLine {
		fhPick = Over
	}

	out := Outcome{
		Pick:          pick,
		WinProb:       winProb,
		RawHomeProb:   rawHome,
		HomePyth:      hPyth,
		AwayPyth:      aPyth,
		HomeEst:       hEst,
		AwayEst:       aEst,
		Total:         total,
		Line:          ouLine,
		LineSource:    source,
		TotalPick:     totalPick,
		Edge:          edge,
		StrongEdge:    edge >= strongThreshold,
		FirstHalfEst:  fhEst,
		FirstHalfLine: fhLine,
		FirstHalfPick: fhPick,
		HomeB2B:       homeB2B,
		AwayB2B:       awayB2B,
		BothDefensive: bothDefensive,
		Tier:          p.TierFor(winProb),
		GodPick:       winProb >= p.GodThreshold,
		Value:         p.DetectValue(rawHome, line),
	}
	out.Signals = e.signals(out, home, away, homeForm, awayForm)
	return out
}

// totalLine picks the market line when posted, otherwise derives one from the
// four scoring averages plus a pace adjustment.
func (e *Engine) totalLine(home, away stats.TeamStats, avgPace float64, line *odds.MarketLine) (float64, LineSource) {
	if line != nil {
		if t, ok := line.TotalLine(); ok {
			return t, LineSourceMarket
		}
	}
	p := e.profile
	derived := (home.PPG+away.PPG+home.OppPPG+away.OppPPG)/2 +
		(avgPace-p.LeaguePace)*p.ModelLinePaceCoeff
	return round1(derived), LineSourceModel
}

// signals builds the human-readable explanation tags for an outcome.
func (e *Engine) signals(out Outcome, home, away stats.TeamStats, homeForm, awayForm stats.RecentForm) []string {
	p := e.profile
	var sig []string

	if out.HomePyth > out.AwayPyth+p.PythGapTag {
		sig = append(sig, fmt.Sprintf("home pythagorean advantage +%.2f", out.HomePyth-out.AwayPyth))
	} else if out.AwayPyth > out.HomePyth+p.PythGapTag {
		sig = append(sig, fmt.Sprintf("away pythagorean advantage +%.2f", out.AwayPyth-out.HomePyth))
	}

	if home.OffRating > away.DefRating+p.DominanceGap {
		sig = append(sig, fmt.Sprintf("home offense dominates (%.1f vs %.1f)", home.OffRating, away.DefRating))
	}
	if away.OffRating > home.DefRating+p.DominanceGap {
		sig = append(sig, fmt.Sprintf("away offense dominates (%.1f vs %.1f)", away.OffRating, home.DefRating))
	}

	if homeForm.Wins >= p.HotWins {
		sig = append(sig, fmt.Sprintf("home hot: %d-%d L10", homeForm.Wins, homeForm.Losses))
	}
	if awayForm.Wins >= p.HotWins {
		sig = append(sig, fmt.Sprintf("away hot: %d-%d L10", awayForm.Wins, awayForm.Losses))
	}
	if homeForm.Wins+homeForm.Losses > 0 && homeForm.Wins <= p.ColdWins {
		sig = append(sig, fmt.Sprintf("home cold: %d-%d L10", homeForm.Wins, homeForm.Losses))
	}
	if awayForm.Wins+awayForm.Losses > 0 && awayForm.Wins <= p.ColdWins {
		sig = append(sig, fmt.Sprintf("away cold: %d-%d L10", awayForm.Wins, awayForm.Losses))
	}

	if homeForm.Streak >= p.StreakTag {
		sig = append(sig, fmt.Sprintf("home on %d-game %s streak", homeForm.Streak, homeForm.StreakType))
	}
	if awayForm.Streak >= p.StreakTag {
		sig = append(sig, fmt.Sprintf("away on %d-game %s streak", awayForm.Streak, awayForm.StreakType))
	}

	if out.HomeB2B {
		sig = append(sig, "home on back-to-back, fatigue penalty")
	}
	if out.AwayB2B {
		sig = append(sig, "away on back-to-back, opponent fatigued")
	}
	if out.BothDefensive {
		sig = append(sig, "defensive matchup, total dampened")
	}

	if out.Total > p.ShootoutTotal {
		sig = append(sig, "high-pace shootout expected")
	} else if out.Total < p.GrindTotal {
		sig = append(sig, "defensive grind expected")
	}

	if out.Value != nil {
		sig = append(sig, fmt.Sprintf("value bet: %s edge %.1f%% vs market",
			out.Value.Side, math.Abs(out.Value.Edge)*100))
	}
	return sig
}

// fillDefaults replaces missing stat fields with league averages.
func fillDefaults(t stats.TeamStats) stats.TeamStats {
	avg := stats.LeagueAverages()
	if t.PPG <= 0 {
		t.PPG = avg.PPG
	}
	if t.OppPPG <= 0 {
		t.OppPPG = avg.OppPPG
	}
	if t.Pace <= 0 {
		t.Pace = avg.Pace
	}
	if t.OffRating <= 0 {
		t.OffRating = avg.OffRating
	}
	if t.DefRating <= 0 {
		t.DefRating = avg.DefRating
	}
	if t.Wins == 0 && t.Losses == 0 {
		t.Wins = avg.Wins
		t.Losses = avg.Losses
	}
	return t
}

// pythagorean is the points-ratio win expectation with a league-fit exponent.
func pythagorean(ppg, oppPPG, exp float64) float64 {
	if ppg <= 0 || oppPPG <= 0 {
		return 0.5
	}
	pf := math.Pow(ppg, exp)
	pa := math.Pow(oppPPG, exp)
	return pf / (pf + pa)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
