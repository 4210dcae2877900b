package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"StockPredictor/internal/api"
	"StockPredictor/internal/collector"
	"StockPredictor/internal/config"
	"StockPredictor/internal/console"
	"StockPredictor/internal/pipeline"
	"StockPredictor/internal/report"
	"StockPredictor/internal/scheduler"
	"StockPredictor/internal/store"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API with scheduled refresh instead of the interactive prompt")
	once := flag.Bool("once", false, "ingest and fit every symbol, write reports, then exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockPredictor starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("[FATAL] timezone: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init store
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	// Init fetcher and collector
	fetcher := collector.NewYahooFetcher(cfg.Fetch.Proxy, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher)
	col.Extractor = collector.Extractor{
		StartMarker: cfg.Fetch.StartMarker,
		EndMarker:   cfg.Fetch.EndMarker,
		SkipPrefix:  cfg.Fetch.SkipPrefix,
		TrimSuffix:  cfg.Fetch.TrimSuffix,
	}

	p := pipeline.New(col, st, pipeline.Options{TestRatio: cfg.Model.TestRatio, Seed: cfg.Model.Seed})
	reg := pipeline.NewRegistry()
	for _, s := range cfg.Symbols {
		reg.Add(s.Name, s.URL)
		if d, ok := st.(interface{ Describe(string) string }); ok {
			log.Printf("[INFO] %s", d.Describe(s.Name))
		}
	}

	sched := scheduler.NewScheduler(ctx, p, reg)
	sched.OnRefreshed = func(s pipeline.Stock) {
		log.Printf("[INFO] %s", report.FormatFitSummary(s.Symbol, s.Result))
		if s.Stats != nil {
			log.Printf("[INFO] %s", report.FormatStats(s.Symbol, *s.Stats, loc))
		}
		if cfg.Report.Dir == "" {
			return
		}
		path, err := report.WriteEvaluation(cfg.Report.Dir, s.Symbol, s.Result, loc)
		if err != nil {
			log.Printf("[ERROR] write evaluation for %s: %v", s.Symbol, err)
			return
		}
		log.Printf("[INFO] evaluation written: %s", path)
	}

	// Initial ingest + fit for every symbol
	if failed := sched.RunNow(); len(failed) > 0 {
		log.Printf("[WARN] no model for %v", failed)
	}

	switch {
	case *once:
		log.Println("[INFO] -once done")
	case *serve:
		runServer(ctx, cfg, sched, reg, loc)
	default:
		// restore default signal handling so Ctrl+C ends the prompt
		cancel()
		if err := console.New(reg, loc, os.Stdin, os.Stdout).Run(); err != nil {
			log.Printf("[ERROR] console: %v", err)
		}
	}

	log.Println("[INFO] StockPredictor stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (store.PriceStore, error) {
	switch cfg.Database.Driver {
	case "mysql":
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := store.OpenMySQL(cctx, store.MySQLOptions{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		s, err := store.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func runServer(ctx context.Context, cfg *config.Config, sched *scheduler.Scheduler, reg *pipeline.Registry, loc *time.Location) {
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(reg, sched, loc),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()
	log.Printf("[INFO] StockPredictor is serving on %s. Press Ctrl+C to stop.", cfg.Server.Addr)

	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
}
