package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"cryptoalert/internal/alerts"
	"cryptoalert/internal/api"
	"cryptoalert/internal/config"
	"cryptoalert/internal/db"
	"cryptoalert/internal/external"
	"cryptoalert/internal/metrics"
	"cryptoalert/internal/notifications"
	"cryptoalert/internal/repository"
	"cryptoalert/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║    CryptoAlert Price Monitor v1.0    ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
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

	setupLogging(cfg.LogLevel)
	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.Migrate(context.Background(), pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}

	// Repos
	alertRepo := repository.NewAlertRepo(pool)
	priceRepo := repository.NewPriceRepo(pool)

	// Price provider
	coingecko := external.NewCoinGeckoClient(external.Options{
		BaseURL: cfg.CoinGeckoBaseURL,
		Timeout: time.Duration(cfg.APITimeoutSecs) * time.Second,
		Retries: cfg.APIRetries,
	})

	// Notifications
	emailSender := notifications.NewEmailSender(notifications.SMTPConfig{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPass,
		Secure: cfg.SMTPSecure,
		From:   cfg.EmailFrom,
	})

	// Evaluator + scheduler
	m := metrics.New(prometheus.DefaultRegisterer)
	evaluator := alerts.NewEvaluator(alertRepo, priceRepo, coingecko, emailSender, m)
	sched := scheduler.New(evaluator, cfg.AlertCheckSchedule)
	if err := sched.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "[SCHEDULER] Start failed: %v\n", err)
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial pass on startup so new deployments don't wait for the
	// first cron tick.
	go func() {
		if err := sched.RunNow(ctx); err != nil {
			log.Errorf("initial evaluation pass failed: %v", err)
		}
	}()

	// API server
	srv := api.NewServer(pool, coingecko, emailSender, api.Options{
		Port:            cfg.Port,
		APIKey:          cfg.APIKey,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		MaxHistoryLimit: cfg.MaxHistoryLimit,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}

func setupLogging(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
