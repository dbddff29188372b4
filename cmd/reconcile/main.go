// reconcile grades pending prediction records against final scores and writes
// the results back into the log. Provider gaps leave records pending; only an
// unreadable or unwritable log exits non-zero.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/config"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/pipeline"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/predlog"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/settle"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file")
	logPath    = flag.String("log", "", "Prediction log file (overrides config)")
	date       = flag.String("date", "", "Date to reconcile YYYY-MM-DD (default yesterday)")
	all        = flag.Bool("all", false, "Sweep every day with pending records")
	backfill   = flag.Bool("backfill", false, "Recompute missing day aggregates for settled days")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *logPath != "" {
		cfg.LogPath = *logPath
	}

	store := predlog.NewStore(cfg.LogPath)
	statClient := stats.NewClient(&stats.ClientConfig{
		BaseURL: cfg.Stats.BaseURL,
		Timeout: cfg.Stats.Timeout.Std(),
		Retries: cfg.Stats.Retries,
	})
	runner := pipeline.NewRunner(nil, statClient, nil, nil, settle.NewEngine(nil), store, nil)

	if *backfill {
		runBackfill(store)
		return
	}

	target := *date
	if target == "" && !*all {
		target = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	}

	report, err := runner.Reconcile(context.Background(), target)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	for _, day := range report {
		switch {
		case day.Skipped:
			log.Printf("%s: provider unavailable, %d records still pending", day.Date, day.Pending)
		case day.Settled == 0:
			log.Printf("%s: no finals yet, %d records pending", day.Date, day.Pending)
		default:
			log.Printf("%s: settled %d (%d hit / %d miss), %d pending",
				day.Date, day.Settled, day.Hits, day.Misses, day.Pending)
		}
	}

	printSummary(store)
}

func runBackfill(store *predlog.Store) {
	l, err := store.Load()
	if err != nil {
		log.Fatalf("Failed to load log: %v", err)
	}
	fixed := settle.Backfill(l)
	if err := store.Save(l); err != nil {
		log.Fatalf("Failed to save log: %v", err)
	}
	log.Printf("Backfill: recomputed aggregates for %d days", fixed)
}

func printSummary(store *predlog.Store) {
	l, err := store.Load()
	if err != nil {
		return
	}
	s := settle.Summarize(l)
	if s.Hits+s.Misses == 0 {
		log.Printf("All-time: nothing settled yet (%d pending)", s.Pending)
		return
	}
	log.Printf("All-time: %d/%d = %s%% (%d pending)", s.Hits, s.Hits+s.Misses, s.Pct, s.Pending)
	if s.GodTotal > 0 {
		log.Printf("High-confidence picks: %d/%d = %s%%", s.GodHits, s.GodTotal, s.GodPct)
	}
}
