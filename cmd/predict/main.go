// predict runs the prediction pipeline for a date and upserts the results
// into the prediction log. Partial data gaps degrade to defaults; only a log
// write failure exits non-zero.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/config"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/model"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/odds"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/pipeline"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/predlog"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/settle"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file")
	logPath    = flag.String("log", "", "Prediction log file (overrides config)")
	date       = flag.String("date", "", "Slate date YYYY-MM-DD (default today)")
	tomorrow   = flag.Bool("tomorrow", false, "Also predict tomorrow's slate")
	profile    = flag.String("profile", "", "Model profile: composite or legacy (overrides config)")
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
	if *profile != "" {
		cfg.Profile = *profile
	}

	runner := newRunner(cfg)
	ctx := context.Background()

	target := *date
	if target == "" {
		target = time.Now().Format("2006-01-02")
	}

	dates := []string{target}
	if *tomorrow {
		day, err := time.Parse("2006-01-02", target)
		if err != nil {
			log.Fatalf("Invalid -date %q: %v", target, err)
		}
		dates = append(dates, day.AddDate(0, 0, 1).Format("2006-01-02"))
	}

	for _, d := range dates {
		n, err := runner.PredictDate(ctx, d)
		if err != nil {
			log.Fatalf("Failed to save predictions for %s: %v", d, err)
		}
		log.Printf("%s: %d predictions saved to %s", d, n, cfg.LogPath)
	}
}

func newRunner(cfg *config.Config) *pipeline.Runner {
	statClient := stats.NewClient(&stats.ClientConfig{
		BaseURL: cfg.Stats.BaseURL,
		Timeout: cfg.Stats.Timeout.Std(),
		Retries: cfg.Stats.Retries,
	})

	var oddsProvider pipeline.OddsProvider
	if cfg.Odds.APIKey != "" {
		oddsProvider = odds.NewClient(&odds.ClientConfig{
			APIKey:   cfg.Odds.APIKey,
			BaseURL:  cfg.Odds.BaseURL,
			SportKey: cfg.Odds.SportKey,
		})
	} else {
		log.Println("No odds API key configured - using model-derived lines")
	}

	engine := model.NewEngine(model.ProfileByName(cfg.Profile))
	return pipeline.NewRunner(
		nil,
		statClient,
		oddsProvider,
		engine,
		settle.NewEngine(nil),
		predlog.NewStore(cfg.LogPath),
		nil,
	)
}
