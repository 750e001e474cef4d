package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"komunalka/internal/amqp"
	"komunalka/internal/catalog"
	"komunalka/internal/config"
	"komunalka/internal/history"
	historymem "komunalka/internal/history/memory"
	apphttp "komunalka/internal/http"
	"komunalka/internal/ledger"
	ledgermem "komunalka/internal/ledger/memory"
	"komunalka/internal/notify"
	"komunalka/internal/services"
	"komunalka/internal/sheets"
	gsheet "komunalka/internal/sheets/google"
	"komunalka/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		kv          history.KV
		ledgerStore ledger.Store
	)

	switch cfg.DataBackend {
	case "sqlite":
		db, err := storage.Open(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer db.Close()
		kv = storage.NewKVStore(db)
		ledgerStore = storage.NewLedgerStore(db)
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		kv = historymem.New()
		apartments := make([]ledger.Apartment, 0, 4)
		for _, apt := range catalog.Apartments() {
			apartments = append(apartments, ledger.Apartment{ID: apt.ID, Name: apt.Name})
		}
		ledgerStore = ledgermem.New(apartments, nil)
		logger.Info("Initialized memory backend")
	}

	store := history.NewStore(kv)

	// Notifications go through the queue when AMQP is configured; the
	// in-process notifier keeps local runs working without a broker.
	var notifier notify.Notifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, using in-process notifier", "error", err)
			notifier = notify.NewMemory()
		} else {
			defer amqpClient.Close()
			notifier = amqp.NewNotifier(amqpClient)
			logger.Info("AMQP notifier initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		notifier = notify.NewMemory()
		logger.Info("AMQP disabled - notifications stay in process")
	}

	var appender sheets.RowAppender
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = cli
		logger.Info("Google Sheets export initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	billing := services.NewBillingService(store, notifier, appender)
	srv := apphttp.NewServer(":"+cfg.Port, billing, store, ledgerStore)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting komunalka server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
