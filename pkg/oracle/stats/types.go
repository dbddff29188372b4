// Package stats provides the scoreboard stat provider client: season team
// statistics, schedules, recent form, back-to-back detection, and final
// scores for settlement.
package stats

// TeamStats is a season-aggregate snapshot for one team at prediction time.
// Zero fields are treated as missing and replaced with league averages.
type TeamStats struct {
	PPG       float64 `json:"ppg"`      // points per game
	OppPPG    float64 `json:"opp_ppg"`  // points allowed per game
	Pace      float64 `json:"pace"`     // possessions per 48
	OffRating float64 `json:"ortg"`     // offensive rating
	DefRating float64 `json:"drtg"`     // defensive rating
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
}

// NetRating returns offensive minus defensive rating.
func (t TeamStats) NetRating() float64 {
	return t.OffRating - t.DefRating
}

// WinPct returns the season win percentage.
func (t TeamStats) WinPct() float64 {
	games := t.Wins + t.Losses
	if games == 0 {
		return 0.5
	}
	return float64(t.Wins) / float64(games)
}

// LeagueAverages returns the fallback snapshot used when the provider has no
// data for a team. Values are current-era NBA league averages.
func LeagueAverages() TeamStats {
	return TeamStats{
		PPG:       113.0,
		OppPPG:    113.0,
		Pace:      98.5,
		OffRating: 113.0,
		DefRating: 113.0,
		Wins:      25,
		Losses:    30,
	}
}

// RecentForm summarizes a team's trailing window of completed games.
type RecentForm struct {
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	AvgPoints  float64 `json:"avg_pts"`
	AvgAllowed float64 `json:"avg_opp"`
	FormScore  float64 `json:"form_score"` // win-rate deviation from .500, doubled: [-1, +1]
	Streak     int     `json:"streak"`
	StreakType string  `json:"streak_type"` // "W" or "L"
}

// NeutralForm returns the fallback form used when no schedule data is
// available: an even split at league-average scoring.
func NeutralForm() RecentForm {
	return RecentForm{
		Wins:       5,
		Losses:     5,
		AvgPoints:  113.0,
		AvgAllowed: 113.0,
		FormScore:  0.0,
		Streak:     0,
		StreakType: "W",
	}
}

// Event is one scheduled or completed game from the scoreboard/schedule feed.
type Event struct {
	Date      string `json:"date"` // ISO calendar date (YYYY-MM-DD)
	HomeID    string `json:"home_id"`
	AwayID    string `json:"away_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	State     string `json:"state"` // "pre", "in", "post"
	Completed bool   `json:"completed"`
	TipOff    string `json:"tipoff,omitempty"`
}

// Scheduled reports whether the game has not started.
func (e Event) Scheduled() bool {
	return e.State == "pre"
}

// FinalScore is a completed game used by the reconciliation engine.
type FinalScore struct {
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Final     bool   `json:"final"`
}

// Total returns the combined score.
func (f FinalScore) Total() int {
	return f.HomeScore + f.AwayScore
}

// HomeWon reports whether the home side won.
func (f FinalScore) HomeWon() bool {
	return f.HomeScore > f.AwayScore
}

// Winner returns the winning team's name.
func (f FinalScore) Winner() string {
	if f.HomeWon() {
		return f.HomeTeam
	}
	return f.AwayTeam
}
