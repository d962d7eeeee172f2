package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HengWoo/TA-flagger/internal/analysis"
	"github.com/HengWoo/TA-flagger/internal/api"
	"github.com/HengWoo/TA-flagger/internal/config"
	"github.com/HengWoo/TA-flagger/internal/db"
	"github.com/HengWoo/TA-flagger/internal/logging"
	"github.com/HengWoo/TA-flagger/internal/metrics"
	"github.com/HengWoo/TA-flagger/internal/notifications"
	"github.com/HengWoo/TA-flagger/internal/repository"
	"github.com/HengWoo/TA-flagger/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║        TA-flagger payload API        ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	importPath := flag.String("import", "", "load bars from this CSV into Postgres for SYMBOL and exit")
	flag.Parse()

	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logging.Setup(os.Stderr, "server", cfg.Log)
	slog.Info("configuration loaded", cfg.Summary()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() || *importPath != "" {
		pool, err = connect(ctx, cfg)
		if err != nil {
			slog.Error("database unavailable", "component", "db", "err", err)
			os.Exit(1)
		}
		defer func() {
			pool.Close()
			slog.Info("connection pool closed", "component", "db")
		}()
	}

	if *importPath != "" {
		if err := importCSV(ctx, pool, cfg.Symbol, *importPath); err != nil {
			slog.Error("import failed", "component", "import", "err", err)
			os.Exit(1)
		}
		return
	}

	// Bar source
	var source analysis.BarSource = analysis.CSVSource{Path: cfg.CSVPath}
	if cfg.BarsSource == config.SourcePostgres {
		source = repository.NewBarRepo(pool, cfg.Symbol)
	}

	var refresher *scheduler.Refresher
	m := metrics.New(func() float64 { return refresher.Age().Seconds() })

	rcfg := scheduler.RefresherConfig{
		Symbol:   cfg.Symbol,
		Schedule: cfg.RefreshCron,
		Metrics:  m,
	}
	var trades api.TradeStore
	if cfg.PersistTrades {
		repo := repository.NewTradeRepo(pool, cfg.Symbol)
		rcfg.Recorder = repo
		trades = repo
		if last, err := repo.Latest(ctx); err != nil {
			slog.Warn("could not read last trade", "component", "main", "err", err)
		} else if last != nil {
			slog.Info("resuming trade history", "component", "main", "last_sell", last.SellDate, "profit", last.Profit)
		}
	}
	if notify := notifications.NewSender(cfg.WebhookURL, cfg.NotifyName); notify.Enabled() {
		rcfg.Notifier = notify
	}
	refresher = scheduler.NewRefresher(source, rcfg)

	opts := api.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		CORSOrigin:     cfg.CORSAllowOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Snapshots:      refresher,
		Trades:         trades,
		Metrics:        m,
	}
	if cfg.BarsSource == config.SourceCSV {
		opts.CSVPath = cfg.CSVPath
	}
	if pool != nil {
		opts.DB = pool
	}

	// 1. API server
	srv := api.NewServer(opts)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "component", "api", "err", err)
			os.Exit(1)
		}
	}()

	// 2. Snapshot refresher
	if err := refresher.Start(); err != nil {
		slog.Error("refresher start failed", "component", "scheduler", "err", err)
		os.Exit(1)
	}

	slog.Info("all services started")

	<-ctx.Done()
	slog.Info("shutting down gracefully")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "component", "api", "err", err)
	}
	slog.Info("shutdown complete")
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	slog.Info("connecting", "component", "db", "host", cfg.DBHost, "port", cfg.DBPort, "name", cfg.DBName)
	pool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	now, err := db.Check(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connection successful", "component", "db", "db_time", now.Format(time.RFC3339))

	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func importCSV(ctx context.Context, pool *pgxpool.Pool, symbol, path string) error {
	bars, err := analysis.CSVSource{Path: path}.LoadBars(ctx)
	if err != nil {
		return err
	}
	repo := repository.NewBarRepo(pool, symbol)
	n, err := repo.Import(ctx, bars)
	if err != nil {
		return err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	slog.Info("bars imported", "component", "import", "symbol", symbol, "rows", n, "stored", total, "path", path)
	return nil
}
