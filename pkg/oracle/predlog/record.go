// Package predlog persists the prediction log: an ordered list of day
// entries, each holding that day's prediction records and, once every record
// is settled, a day-level accuracy aggregate.
package predlog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/model"
)

// Status is a record's settlement state.
type Status string

const (
	StatusPending Status = "pending"
	StatusHit     Status = "hit"
	StatusMiss    Status = "miss"
)

// Record is one persisted prediction. Field names mirror the on-disk log so
// older hand-maintained files load unchanged.
type Record struct {
	ID       string `json:"id,omitempty"`
	Matchup  string `json:"matchup"` // "Away Team @ Home Team"
	HomeTeam string `json:"home_team,omitempty"`
	AwayTeam string `json:"away_team,omitempty"`

	Pick       string  `json:"pick"`
	Conf       float64 `json:"conf"`
	OU         string  `json:"ou"`
	OULine     float64 `json:"ou_line"`
	Total      float64 `json:"total"`
	God        bool    `json:"god"`
	Edge       float64 `json:"edge"`
	StrongOU   bool    `json:"strong_ou"`
	LineSource string  `json:"line_source"`
	Tipoff     string  `json:"tipoff,omitempty"`

	Result      Status `json:"result"`
	ActualHome  int    `json:"actual_home,omitempty"`
	ActualAway  int    `json:"actual_away,omitempty"`
	ActualTotal int    `json:"actual_total,omitempty"`
}

// FromOutcome builds a pending record from a model outcome.
func FromOutcome(out model.Outcome, homeTeam, awayTeam, tipoff string) Record {
	pick := homeTeam
	if out.Pick == model.SideAway {
		pick = awayTeam
	}
	return Record{
		ID:         uuid.NewString(),
		Matchup:    fmt.Sprintf("%s @ %s", awayTeam, homeTeam),
		HomeTeam:   homeTeam,
		AwayTeam:   awayTeam,
		Pick:       pick,
		Conf:       out.WinProb,
		OU:         out.TotalPick.String(),
		OULine:     out.Line,
		Total:      out.Total,
		God:        out.GodPick,
		Edge:       out.Edge,
		StrongOU:   out.StrongEdge,
		LineSource: out.LineSource.String(),
		Tipoff:     tipoff,
		Result:     StatusPending,
	}
}

// Settled reports whether the record has a final hit/miss result.
func (r *Record) Settled() bool {
	return r.Result == StatusHit || r.Result == StatusMiss
}

// Pending reports whether the record still awaits settlement. An empty
// result field counts as pending for older log files.
func (r *Record) Pending() bool {
	return !r.Settled()
}

// Teams returns the away and home team names, falling back to splitting the
// matchup string when the structured fields are absent.
func (r *Record) Teams() (away, home string) {
	if r.AwayTeam != "" && r.HomeTeam != "" {
		return r.AwayTeam, r.HomeTeam
	}
	parts := strings.SplitN(r.Matchup, " @ ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", strings.TrimSpace(r.Matchup)
}

// Settle writes the final result into a pending record. Settled records are
// immutable; a second call is a no-op returning false.
func (r *Record) Settle(result Status, actualHome, actualAway int) bool {
	if r.Settled() {
		return false
	}
	if result != StatusHit && result != StatusMiss {
		return false
	}
	r.Result = result
	r.ActualHome = actualHome
	r.ActualAway = actualAway
	r.ActualTotal = actualHome + actualAway
	return true
}
