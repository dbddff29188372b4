package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/odds"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/predlog"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
)

type fakeStats struct {
	events    []stats.Event
	finals    []stats.FinalScore
	stats     map[string]stats.TeamStats
	schedules map[string][]stats.Event
	boardErr  error
}

func (f *fakeStats) Scoreboard(context.Context, string) ([]stats.Event, error) {
	return f.events, f.boardErr
}

func (f *fakeStats) FinalScores(context.Context, string) ([]stats.FinalScore, error) {
	return f.finals, nil
}

func (f *fakeStats) TeamStats(_ context.Context, teamID string) stats.TeamStats {
	if s, ok := f.stats[teamID]; ok {
		return s
	}
	return stats.LeagueAverages()
}

func (f *fakeStats) Schedule(_ context.Context, teamID string) ([]stats.Event, error) {
	return f.schedules[teamID], nil
}

type fakeOdds struct {
	book *odds.Book
	err  error
}

func (f *fakeOdds) Slate(context.Context) (*odds.Book, error) {
	return f.book, f.err
}

func slateProvider() *fakeStats {
	return &fakeStats{
		events: []stats.Event{{
			Date:     "2026-02-24",
			HomeID:   "2",
			AwayID:   "16",
			HomeTeam: "Boston Celtics",
			AwayTeam: "Miami Heat",
			State:    "pre",
		}},
		stats: map[string]stats.TeamStats{
			"2":  {PPG: 118.2, OppPPG: 108.1, Pace: 99.2, OffRating: 121.4, DefRating: 110.8, Wins: 43, Losses: 14},
			"16": {PPG: 110.4, OppPPG: 112.8, Pace: 98.8, OffRating: 112.8, DefRating: 115.4, Wins: 21, Losses: 34},
		},
	}
}

func newTestRunner(t *testing.T, provider *fakeStats, oddsProvider OddsProvider) (*Runner, *predlog.Store) {
	t.Helper()
	store := predlog.NewStore(filepath.Join(t.TempDir(), "log.json"))
	return NewRunner(nil, provider, oddsProvider, nil, nil, store, nil), store
}

func TestPredictDatePersistsRecords(t *testing.T) {
	runner, store := newTestRunner(t, slateProvider(), nil)

	var stages []Stage
	runner.OnStage(func(res *StageResult) { stages = append(stages, res.Stage) })
	var predicted []predlog.Record
	runner.OnPrediction(func(date string, rec predlog.Record) {
		if date != "2026-02-24" {
			t.Errorf("prediction callback date = %q", date)
		}
		predicted = append(predicted, rec)
	})

	n, err := runner.PredictDate(context.Background(), "2026-02-24")
	if err != nil {
		t.Fatalf("PredictDate: %v", err)
	}
	if n != 1 || len(predicted) != 1 {
		t.Fatalf("predicted %d records, callback saw %d, want 1", n, len(predicted))
	}

	l, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entry := l.Day("2026-02-24")
	if entry == nil || len(entry.Predictions) != 1 {
		t.Fatal("day entry missing from persisted log")
	}
	rec := entry.Predictions[0]
	if rec.Pick != "Boston Celtics" {
		t.Errorf("pick = %q, want the large favorite", rec.Pick)
	}
	if rec.Result != predlog.StatusPending {
		t.Errorf("fresh record result = %v, want pending", rec.Result)
	}
	if rec.LineSource != "model" {
		t.Errorf("line source = %q, want model with no odds provider", rec.LineSource)
	}
	if rec.ID == "" {
		t.Error("record has no ID")
	}

	want := []Stage{StageSlate, StagePredict, StagePersist}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage[%d] = %v, want %v", i, stages[i], want[i])
		}
	}
}

func TestPredictDateUsesMarketLine(t *testing.T) {
	book := odds.NewBook([]*odds.MarketLine{
		withTotal(odds.LineFromPrices("Boston Celtics", "Miami Heat", -300, 240), 224.5),
	})
	runner, store := newTestRunner(t, slateProvider(), &fakeOdds{book: book})

	if _, err := runner.PredictDate(context.Background(), "2026-02-24"); err != nil {
		t.Fatalf("PredictDate: %v", err)
	}

	l, _ := store.Load()
	rec := l.Day("2026-02-24").Predictions[0]
	if rec.LineSource != "market" {
		t.Errorf("line source = %q, want market", rec.LineSource)
	}
	if rec.OULine != 224.5 {
		t.Errorf("line = %v, want 224.5", rec.OULine)
	}
}

func TestPredictDateSlateFailureIsSoft(t *testing.T) {
	provider := slateProvider()
	provider.boardErr = errors.New("provider down")
	runner, store := newTestRunner(t, provider, nil)

	n, err := runner.PredictDate(context.Background(), "2026-02-24")
	if err != nil {
		t.Fatalf("slate failure should not be fatal: %v", err)
	}
	if n != 0 {
		t.Errorf("predicted %d records from a failed slate", n)
	}
	if _, err := store.Load(); err == nil {
		t.Error("no log should have been written")
	}
}

func TestPredictDateOddsFailureFallsBack(t *testing.T) {
	runner, store := newTestRunner(t, slateProvider(), &fakeOdds{err: errors.New("quota")})

	n, err := runner.PredictDate(context.Background(), "2026-02-24")
	if err != nil || n != 1 {
		t.Fatalf("PredictDate = %d, %v", n, err)
	}
	l, _ := store.Load()
	if got := l.Day("2026-02-24").Predictions[0].LineSource; got != "model" {
		t.Errorf("line source = %q, want model fallback", got)
	}
}

func TestReconcileSettlesAndSaves(t *testing.T) {
	provider := slateProvider()
	runner, store := newTestRunner(t, provider, nil)

	if _, err := runner.PredictDate(context.Background(), "2026-02-24"); err != nil {
		t.Fatalf("PredictDate: %v", err)
	}

	provider.finals = []stats.FinalScore{{
		HomeTeam:  "Boston Celtics",
		AwayTeam:  "Miami Heat",
		HomeScore: 125,
		AwayScore: 119,
		Final:     true,
	}}

	var settled []predlog.Record
	runner.OnSettlement(func(_ string, rec predlog.Record) { settled = append(settled, rec) })

	report, err := runner.Reconcile(context.Background(), "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report) != 1 || report[0].Settled != 1 {
		t.Fatalf("report = %+v, want one settled record", report)
	}
	if len(settled) != 1 {
		t.Fatalf("settlement callback saw %d records", len(settled))
	}

	l, _ := store.Load()
	rec := l.Day("2026-02-24").Predictions[0]
	if !rec.Settled() {
		t.Error("settlement was not persisted")
	}
	if rec.ActualTotal != 244 {
		t.Errorf("actual total = %d, want 244", rec.ActualTotal)
	}
}

func TestReconcileMissingLogIsError(t *testing.T) {
	runner, _ := newTestRunner(t, slateProvider(), nil)
	if _, err := runner.Reconcile(context.Background(), ""); err == nil {
		t.Error("reconcile without a log should fail")
	}
}

func withTotal(l *odds.MarketLine, total float64) *odds.MarketLine {
	l.Total = decimal.NewFromFloat(total)
	l.HasTotal = true
	return l
}
