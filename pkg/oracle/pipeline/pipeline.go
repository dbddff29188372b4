// Package pipeline coordinates the daily forecast workflow: fetch the slate,
// gather team stats and market lines, run the model, persist the day's
// records, and reconcile pending days against final scores.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/metrics"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/model"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/odds"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/predlog"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/settle"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
)

// Stage identifies a step in the forecast workflow.
type Stage string

const (
	StageSlate     Stage = "slate"
	StagePredict   Stage = "predict"
	StagePersist   Stage = "persist"
	StageReconcile Stage = "reconcile"
)

// StageResult reports one stage execution.
type StageResult struct {
	Stage     Stage         `json:"stage"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Count     int           `json:"count"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// StatProvider supplies schedules, season stats, and completed games.
type StatProvider interface {
	Scoreboard(ctx context.Context, date string) ([]stats.Event, error)
	FinalScores(ctx context.Context, date string) ([]stats.FinalScore, error)
	TeamStats(ctx context.Context, teamID string) stats.TeamStats
	Schedule(ctx context.Context, teamID string) ([]stats.Event, error)
}

// OddsProvider supplies the day's market lines.
type OddsProvider interface {
	Slate(ctx context.Context) (*odds.Book, error)
}

// Config tunes the runner.
type Config struct {
	FormWindow int  // trailing games for recent form
	Tomorrow   bool // also predict tomorrow's slate
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() *Config {
	return &Config{FormWindow: stats.DefaultFormWindow}
}

// Runner drives the forecast workflow over injected providers.
type Runner struct {
	config  *Config
	stats   StatProvider
	odds    OddsProvider
	engine  *model.Engine
	settler *settle.Engine
	store   *predlog.Store
	metrics *metrics.PipelineMetrics

	onStage      func(*StageResult)
	onPrediction func(date string, rec predlog.Record)
}

// NewRunner creates a workflow runner. The odds provider and metrics may be
// nil; predictions then fall back to model-derived lines and metrics are
// skipped.
func NewRunner(
	config *Config,
	statProvider StatProvider,
	oddsProvider OddsProvider,
	engine *model.Engine,
	settler *settle.Engine,
	store *predlog.Store,
	m *metrics.PipelineMetrics,
) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.FormWindow <= 0 {
		config.FormWindow = stats.DefaultFormWindow
	}
	if engine == nil {
		engine = model.NewEngine(model.DefaultProfile())
	}
	if settler == nil {
		settler = settle.NewEngine(nil)
	}
	return &Runner{
		config:  config,
		stats:   statProvider,
		odds:    oddsProvider,
		engine:  engine,
		settler: settler,
		store:   store,
		metrics: m,
	}
}

// OnStage sets a callback for stage completions.
func (r *Runner) OnStage(fn func(*StageResult)) {
	r.onStage = fn
}

// OnPrediction sets a callback for each new prediction record.
func (r *Runner) OnPrediction(fn func(date string, rec predlog.Record)) {
	r.onPrediction = fn
}

// OnSettlement sets a callback for each settled record.
func (r *Runner) OnSettlement(fn func(date string, rec predlog.Record)) {
	r.settler.OnSettlement(fn)
}

// Settler returns the reconciliation engine used by the runner.
func (r *Runner) Settler() *settle.Engine {
	return r.settler
}

// PredictDate runs the full prediction flow for one calendar date and upserts
// the day into the log. Data gaps degrade to defaults; only a log write
// failure is an error.
func (r *Runner) PredictDate(ctx context.Context, date string) (int, error) {
	var events []stats.Event
	err := r.runStage(StageSlate, func() (int, error) {
		var err error
		events, err = r.stats.Scoreboard(ctx, date)
		return len(events), err
	})
	if err != nil {
		r.providerError("stats")
		log.Printf("[pipeline] %s: no slate available: %v", date, err)
		return 0, nil
	}

	var book *odds.Book
	if r.odds != nil {
		book, err = r.odds.Slate(ctx)
		if err != nil {
			r.providerError("odds")
			log.Printf("[pipeline] %s: market lines unavailable, using model lines: %v", date, err)
			book = nil
		}
	}

	var records []predlog.Record
	r.runStage(StagePredict, func() (int, error) {
		records = r.predictSlate(ctx, date, events, book)
		return len(records), nil
	})
	if len(records) == 0 {
		return 0, nil
	}

	err = r.runStage(StagePersist, func() (int, error) {
		l, err := r.store.LoadOrInit()
		if err != nil {
			return 0, err
		}
		l.UpsertDay(date, records)
		return len(records), r.store.Save(l)
	})
	if err != nil {
		return 0, fmt.Errorf("persisting %s: %w", date, err)
	}

	for _, rec := range records {
		if r.onPrediction != nil {
			r.onPrediction(date, rec)
		}
	}
	return len(records), nil
}

// predictSlate evaluates every scheduled game on the slate.
func (r *Runner) predictSlate(ctx context.Context, date string, events []stats.Event, book *odds.Book) []predlog.Record {
	var records []predlog.Record
	for _, ev := range events {
		if !ev.Scheduled() {
			continue
		}

		homeStats := r.stats.TeamStats(ctx, ev.HomeID)
		awayStats := r.stats.TeamStats(ctx, ev.AwayID)

		homeForm, homeB2B := r.formAndRest(ctx, ev.HomeID, date)
		awayForm, awayB2B := r.formAndRest(ctx, ev.AwayID, date)

		var line *odds.MarketLine
		if book != nil {
			line = book.Find(ev.HomeTeam, ev.AwayTeam)
		}

		out := r.engine.Predict(homeStats, awayStats, homeForm, awayForm, homeB2B, awayB2B, line)
		records = append(records, predlog.FromOutcome(out, ev.HomeTeam, ev.AwayTeam, ev.TipOff))

		if r.metrics != nil {
			r.metrics.RecordPrediction(out.Tier.String(), out.LineSource.String(), out.WinProb, out.Edge)
		}
		log.Printf("[pipeline] %s: %s @ %s -> %s %.0f%% | %s %.1f (edge %.1f, %s)",
			date, ev.AwayTeam, ev.HomeTeam,
			out.Pick, out.WinProb*100,
			out.TotalPick, out.Line, out.Edge, out.LineSource)
	}
	return records
}

// formAndRest derives recent form and the back-to-back flag from one schedule
// fetch. Missing schedule data degrades to neutral form and no fatigue.
func (r *Runner) formAndRest(ctx context.Context, teamID, date string) (stats.RecentForm, bool) {
	schedule, err := r.stats.Schedule(ctx, teamID)
	if err != nil {
		r.providerError("stats")
		return stats.NeutralForm(), false
	}
	return stats.FormFromEvents(schedule, teamID, r.config.FormWindow),
		stats.BackToBack(schedule, teamID, date)
}

// Reconcile grades pending records and saves the log. An empty date sweeps
// every day with pending records.
func (r *Runner) Reconcile(ctx context.Context, date string) ([]settle.DayStats, error) {
	l, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	var report []settle.DayStats
	r.runStage(StageReconcile, func() (int, error) {
		if date == "" {
			report = r.settler.Reconcile(ctx, l, r.stats)
		} else if day, ok := r.settler.ReconcileDate(ctx, l, r.stats, date); ok {
			report = append(report, day)
		}
		settled := 0
		for _, d := range report {
			settled += d.Settled
			if d.Skipped {
				r.providerError("stats")
			}
			if r.metrics != nil {
				r.metrics.RecordSettlements("hit", d.Hits)
				r.metrics.RecordSettlements("miss", d.Misses)
			}
		}
		return settled, nil
	})

	if err := r.store.Save(l); err != nil {
		return report, fmt.Errorf("saving log after reconcile: %w", err)
	}
	r.updateAccuracy(l)
	return report, nil
}

// Run executes one full cycle: predict today (and optionally tomorrow), then
// reconcile everything pending.
func (r *Runner) Run(ctx context.Context) error {
	today := time.Now().Format("2006-01-02")
	if _, err := r.PredictDate(ctx, today); err != nil {
		r.recordRun("error")
		return err
	}
	if r.config.Tomorrow {
		tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
		if _, err := r.PredictDate(ctx, tomorrow); err != nil {
			r.recordRun("error")
			return err
		}
	}
	if _, err := r.Reconcile(ctx, ""); err != nil {
		r.recordRun("error")
		return err
	}
	r.recordRun("ok")
	return nil
}

// runStage times a stage, reports it, and returns its error.
func (r *Runner) runStage(stage Stage, fn func() (int, error)) error {
	start := time.Now()
	count, err := fn()
	result := &StageResult{
		Stage:     stage,
		Success:   err == nil,
		Count:     count,
		Duration:  time.Since(start),
		Timestamp: start,
	}
	if err != nil {
		result.Error = err.Error()
	}
	if r.metrics != nil {
		r.metrics.ObserveStage(string(stage), result.Duration.Seconds())
	}
	if r.onStage != nil {
		r.onStage(result)
	}
	return err
}

func (r *Runner) providerError(provider string) {
	if r.metrics != nil {
		r.metrics.RecordProviderError(provider)
	}
}

func (r *Runner) recordRun(status string) {
	if r.metrics != nil {
		r.metrics.RecordRun(status)
	}
}

func (r *Runner) updateAccuracy(l *predlog.Log) {
	if r.metrics == nil {
		return
	}
	s := settle.Summarize(l)
	r.metrics.UpdateAccuracy(s.Hits, s.Misses, s.Pending)
}
