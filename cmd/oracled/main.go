// oracled is the forecast daemon. It runs the predict+reconcile pipeline on a
// timer and serves a status API, Prometheus metrics, and a WebSocket event
// stream.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/config"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/metrics"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/model"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/odds"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/pipeline"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/predlog"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/settle"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/stats"
	"github.com/phenomenon0/nba-oracle/pkg/oracle/streaming"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file")
	httpAddr   = flag.String("http", "", "HTTP server address (overrides config)")
	logPath    = flag.String("log", "", "Prediction log file (overrides config)")
	profile    = flag.String("profile", "", "Model profile: composite or legacy (overrides config)")
	interval   = flag.Duration("interval", 0, "Pipeline run cadence (overrides config)")
	tomorrow   = flag.Bool("tomorrow", true, "Also predict tomorrow's slate each run")
	verbose    = flag.Bool("verbose", false, "Log every stage completion")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime)
	log.Println("Starting forecast daemon")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *logPath != "" {
		cfg.LogPath = *logPath
	}
	if *profile != "" {
		cfg.Profile = *profile
	}
	if *interval > 0 {
		cfg.Interval = config.Duration(*interval)
	}

	d := newDaemon(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go d.hub.Run()
	go d.serveHTTP(cfg.HTTPAddr)
	go d.runLoop(ctx, cfg.Interval.Std())

	log.Printf("Daemon running (profile=%s, interval=%s, http=%s)", cfg.Profile, cfg.Interval.Std(), cfg.HTTPAddr)
	log.Printf("WebSocket stream available at ws://%s/ws", cfg.HTTPAddr)

	<-sigCh
	log.Println("Shutting down...")
	cancel()
	log.Println("Goodbye!")
}

type daemon struct {
	runner  *pipeline.Runner
	store   *predlog.Store
	metrics *metrics.PipelineMetrics
	hub     *streaming.Hub
}

func newDaemon(cfg *config.Config) *daemon {
	d := &daemon{
		store:   predlog.NewStore(cfg.LogPath),
		metrics: metrics.NewPipelineMetrics(),
		hub:     streaming.NewHub(),
	}

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

	runnerCfg := pipeline.DefaultConfig()
	runnerCfg.Tomorrow = *tomorrow

	d.runner = pipeline.NewRunner(
		runnerCfg,
		statClient,
		oddsProvider,
		model.NewEngine(model.ProfileByName(cfg.Profile)),
		settle.NewEngine(nil),
		d.store,
		d.metrics,
	)

	d.runner.OnStage(func(res *pipeline.StageResult) {
		if *verbose || !res.Success {
			log.Printf("[%s] success=%v count=%d (%.1fms)",
				res.Stage, res.Success, res.Count, float64(res.Duration.Microseconds())/1000)
		}
		d.hub.BroadcastStatus(res)
	})
	d.runner.OnPrediction(func(date string, rec predlog.Record) {
		d.hub.BroadcastPrediction(date, rec)
	})
	d.runner.OnSettlement(func(date string, rec predlog.Record) {
		d.metrics.RecordSettlement(string(rec.Result))
		d.hub.BroadcastSettlement(date, rec)
	})

	return d
}

// runLoop executes the pipeline immediately, then on every tick.
func (d *daemon) runLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *daemon) runOnce(ctx context.Context) {
	if err := d.runner.Run(ctx); err != nil {
		log.Printf("[daemon] pipeline run failed: %v", err)
		d.hub.BroadcastError(err, "pipeline")
		return
	}
	if l, err := d.store.LoadOrInit(); err == nil {
		d.hub.BroadcastAccuracy(settle.Summarize(l))
	}
}

func (d *daemon) serveHTTP(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/log", func(w http.ResponseWriter, r *http.Request) {
		l, err := d.store.LoadOrInit()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(l.Days)
	})

	mux.HandleFunc("/accuracy", func(w http.ResponseWriter, r *http.Request) {
		l, err := d.store.LoadOrInit()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(settle.Summarize(l))
	})

	mux.Handle("/metrics", d.metrics.Handler())
	mux.HandleFunc("/ws", d.hub.ServeWS)

	log.Printf("HTTP server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("HTTP server error: %v", err)
	}
}
