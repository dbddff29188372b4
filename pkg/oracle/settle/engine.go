// Package settle reconciles pending prediction records against final scores:
// fuzzy-matches each record to a completed game, grades the pick, writes the
// result back exactly once, and aggregates per-day and all-time accuracy.
package settle

import (
	"context"
	"log"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/predlog"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/teams"
)

// ScoreProvider supplies completed games for a calendar date.
type ScoreProvider interface {
	FinalScores(ctx context.Context, date string) ([]stats.FinalScore, error)
}

// DayStats reports what one reconciliation pass did to one day.
type DayStats struct {
	Date    string
	Settled int
	Hits    int
	Misses  int
	Pending int
	Skipped bool // provider failure, day untouched
}

// Engine grades pending records against provider finals.
type Engine struct {
	registry     *teams.Registry
	onSettlement func(date string, rec predlog.Record)
}

// NewEngine creates a reconciliation engine. A nil registry gets the default
// team registry.
func NewEngine(registry *teams.Registry) *Engine {
	if registry == nil {
		registry = teams.NewRegistry()
	}
	return &Engine{registry: registry}
}

// OnSettlement registers a callback invoked for every record settled by
// Reconcile.
func (e *Engine) OnSettlement(fn func(date string, rec predlog.Record)) {
	e.onSettlement = fn
}

// Reconcile grades every pending record in the log. A provider failure for
// one date skips that date only; its records stay pending for the next pass.
// Day aggregates are attached once a day has nothing pending. Settled records
// are never touched.
func (e *Engine) Reconcile(ctx context.Context, l *predlog.Log, provider ScoreProvider) []DayStats {
	var report []DayStats
	for _, date := range l.PendingDates() {
		report = append(report, e.reconcileDay(ctx, l.Day(date), provider))
	}
	return report
}

// ReconcileDate grades a single day's pending records.
func (e *Engine) ReconcileDate(ctx context.Context, l *predlog.Log, provider ScoreProvider, date string) (DayStats, bool) {
	entry := l.Day(date)
	if entry == nil {
		return DayStats{Date: date}, false
	}
	return e.reconcileDay(ctx, entry, provider), true
}

func (e *Engine) reconcileDay(ctx context.Context, entry *predlog.DayEntry, provider ScoreProvider) DayStats {
	day := DayStats{Date: entry.Date, Pending: len(entry.Pending())}
	if day.Pending == 0 {
		return day
	}

	finals, err := provider.FinalScores(ctx, entry.Date)
	if err != nil {
		log.Printf("[settle] %s: provider unavailable, leaving %d records pending: %v",
			entry.Date, day.Pending, err)
		day.Skipped = true
		return day
	}
	if len(finals) == 0 {
		return day
	}

	for i := range entry.Predictions {
		rec := &entry.Predictions[i]
		if rec.Settled() {
			continue
		}

		final, candidates := e.matchFinal(rec, finals)
		if final == nil {
			continue
		}
		if candidates > 1 {
			log.Printf("[settle] %s: %d finals matched %q, using first in provider order",
				entry.Date, candidates, rec.Matchup)
		}
		if !final.Final {
			continue
		}

		result := e.grade(rec, final)
		if !rec.Settle(result, final.HomeScore, final.AwayScore) {
			continue
		}
		day.Settled++
		if result == predlog.StatusHit {
			day.Hits++
		} else {
			day.Misses++
		}
		day.Pending--
		if e.onSettlement != nil {
			e.onSettlement(entry.Date, *rec)
		}
	}

	attachAggregate(entry)
	return day
}

// matchFinal locates the final score for a record. Matching is deliberately
// permissive because matchup strings are free text; ties resolve to the first
// candidate in provider order.
func (e *Engine) matchFinal(rec *predlog.Record, finals []stats.FinalScore) (*stats.FinalScore, int) {
	away, home := rec.Teams()

	var first *stats.FinalScore
	candidates := 0
	for i := range finals {
		f := &finals[i]
		if !e.registry.SameTeam(home, f.HomeTeam) {
			continue
		}
		if away != "" && !e.registry.SameTeam(away, f.AwayTeam) {
			continue
		}
		candidates++
		if first == nil {
			first = f
		}
	}
	return first, candidates
}

// grade computes hit or miss for a matched record. Totals picks grade on the
// actual total against the stored line (a push is a miss); win picks grade on
// the picked team matching the winner.
func (e *Engine) grade(rec *predlog.Record, final *stats.FinalScore) predlog.Status {
	switch rec.OU {
	case "OVER":
		if float64(final.Total()) > rec.OULine {
			return predlog.StatusHit
		}
		return predlog.StatusMiss
	case "UNDER":
		if float64(final.Total()) < rec.OULine {
			return predlog.StatusHit
		}
		return predlog.StatusMiss
	}

	if e.registry.SameTeam(rec.Pick, final.Winner()) {
		return predlog.StatusHit
	}
	return predlog.StatusMiss
}

// attachAggregate writes the day result once nothing is pending. Partially
// settled days carry no aggregate.
func attachAggregate(entry *predlog.DayEntry) {
	if len(entry.Predictions) == 0 || len(entry.Pending()) > 0 {
		return
	}
	hits := 0
	for i := range entry.Predictions {
		if entry.Predictions[i].Result == predlog.StatusHit {
			hits++
		}
	}
	entry.Result = predlog.NewDayResult(hits, len(entry.Predictions))
}

// Backfill recomputes missing day aggregates for fully settled days.
func Backfill(l *predlog.Log) int {
	fixed := 0
	for i := range l.Days {
		entry := &l.Days[i]
		if entry.Result != nil {
			continue
		}
		before := entry.Result
		attachAggregate(entry)
		if entry.Result != before {
			fixed++
		}
	}
	return fixed
}
