package predlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testRecord(matchup, pick string) Record {
	return Record{
		Matchup:    matchup,
		Pick:       pick,
		Conf:       0.72,
		OU:         "OVER",
		OULine:     224.5,
		Total:      230.1,
		God:        true,
		Edge:       5.6,
		LineSource: "market",
		Result:     StatusPending,
	}
}

func TestUpsertDayIdempotent(t *testing.T) {
	l := &Log{}

	first := []Record{testRecord("Miami Heat @ Boston Celtics", "Boston Celtics")}
	second := []Record{
		testRecord("Miami Heat @ Boston Celtics", "Boston Celtics"),
		testRecord("Dallas Mavericks @ Denver Nuggets", "Denver Nuggets"),
	}

	l.UpsertDay("2026-02-24", first)
	l.UpsertDay("2026-02-24", second)

	if len(l.Days) != 1 {
		t.Fatalf("log has %d entries for one date, want 1", len(l.Days))
	}
	if got := len(l.Days[0].Predictions); got != 2 {
		t.Errorf("second upsert kept %d records, want the 2 from the last call", got)
	}
}

func TestUpsertDayLeavesOtherDatesAlone(t *testing.T) {
	l := &Log{}
	l.UpsertDay("2026-02-23", []Record{testRecord("A @ B", "B")})
	l.UpsertDay("2026-02-24", []Record{testRecord("C @ D", "D")})
	l.UpsertDay("2026-02-24", []Record{testRecord("E @ F", "F")})

	if len(l.Days) != 2 {
		t.Fatalf("log has %d entries, want 2", len(l.Days))
	}
	if l.Days[0].Predictions[0].Matchup != "A @ B" {
		t.Error("earlier date was disturbed by a later upsert")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	store := NewStore(path)

	l := &Log{}
	l.UpsertDay("2026-02-24", []Record{testRecord("Miami Heat @ Boston Celtics", "Boston Celtics")})
	l.Days[0].Result = NewDayResult(1, 1)

	if err := store.Save(l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(l.Days, loaded.Days) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", l.Days, loaded.Days)
	}
}

func TestLoadCollapsesDuplicateDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")

	days := []DayEntry{
		{Date: "2026-02-23", Predictions: []Record{testRecord("A @ B", "B")}},
		{Date: "2026-02-24", Predictions: []Record{testRecord("old @ stale", "stale")}},
		{Date: "2026-02-24", Predictions: []Record{testRecord("C @ D", "D")}},
	}
	data, err := json.Marshal(days)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(l.Days) != 2 {
		t.Fatalf("log has %d entries after collapse, want 2", len(l.Days))
	}
	dup := l.Day("2026-02-24")
	if dup == nil || dup.Predictions[0].Matchup != "C @ D" {
		t.Error("duplicate collapse did not keep the later entry")
	}
	if l.Days[1].Date != "2026-02-24" {
		t.Error("duplicate collapse did not keep the earlier position")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))

	if _, err := store.Load(); err == nil {
		t.Error("Load of a missing file should fail")
	}
	l, err := store.LoadOrInit()
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if len(l.Days) != 0 {
		t.Errorf("fresh log has %d entries, want 0", len(l.Days))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path).Load(); err == nil {
		t.Error("Load of a corrupt file should fail")
	}
	if _, err := NewStore(path).LoadOrInit(); err == nil {
		t.Error("LoadOrInit must not mask a corrupt existing file")
	}
}

func TestSettleImmutable(t *testing.T) {
	r := testRecord("Miami Heat @ Boston Celtics", "Boston Celtics")

	if !r.Settle(StatusHit, 120, 114) {
		t.Fatal("first settle rejected")
	}
	if r.Result != StatusHit || r.ActualTotal != 234 {
		t.Fatalf("settle wrote %v / total %d", r.Result, r.ActualTotal)
	}
	if r.Settle(StatusMiss, 90, 90) {
		t.Error("second settle succeeded on a settled record")
	}
	if r.Result != StatusHit || r.ActualHome != 120 || r.ActualAway != 114 {
		t.Error("second settle mutated a settled record")
	}
}

func TestSettleRejectsNonFinalStatus(t *testing.T) {
	r := testRecord("A @ B", "B")
	if r.Settle(StatusPending, 100, 100) {
		t.Error("settling to pending should be rejected")
	}
	if r.Settled() {
		t.Error("record should remain pending")
	}
}

func TestRecordTeamsFallback(t *testing.T) {
	r := Record{Matchup: "Oklahoma City Thunder @ Toronto Raptors"}
	away, home := r.Teams()
	if away != "Oklahoma City Thunder" || home != "Toronto Raptors" {
		t.Errorf("Teams() = %q, %q", away, home)
	}

	r = Record{Matchup: "X @ Y", AwayTeam: "Explicit Away", HomeTeam: "Explicit Home"}
	away, home = r.Teams()
	if away != "Explicit Away" || home != "Explicit Home" {
		t.Error("structured team fields should win over the matchup string")
	}
}

func TestPendingDates(t *testing.T) {
	l := &Log{}
	l.UpsertDay("2026-02-23", []Record{testRecord("A @ B", "B")})
	l.UpsertDay("2026-02-24", []Record{testRecord("C @ D", "D")})
	l.Days[0].Predictions[0].Settle(StatusHit, 110, 100)

	got := l.PendingDates()
	if len(got) != 1 || got[0] != "2026-02-24" {
		t.Errorf("PendingDates() = %v, want [2026-02-24]", got)
	}
}

func TestNewDayResult(t *testing.T) {
	r := NewDayResult(2, 3)
	if r.Hits != 2 || r.Total != 3 {
		t.Errorf("aggregate counts wrong: %+v", r)
	}
	if r.Pct != 66.7 {
		t.Errorf("pct = %v, want 66.7", r.Pct)
	}
	if z := NewDayResult(0, 0); z.Pct != 0 {
		t.Errorf("empty-day pct = %v, want 0", z.Pct)
	}
}
