package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mizaniya/internal/config"
	"mizaniya/internal/core"
	apphttp "mizaniya/internal/http"
	applog "mizaniya/internal/log"
	"mizaniya/internal/services"
	"mizaniya/internal/store"
	"mizaniya/internal/store/jsonfile"
	"mizaniya/internal/store/sqlite"
)

func main() {
	// Load .env file if present (ignore errors, env vars take precedence)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "mizaniya",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		st  store.StateStore
		err error
	)
	switch cfg.DataBackend {
	case "jsonfile":
		st = jsonfile.New(cfg.StateFilePath)
		logger.Info("Initialized jsonfile backend", "path", cfg.StateFilePath)
	default:
		st, err = sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open sqlite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Validated above, so the lookup cannot miss.
	defaultCurrency, _ := core.CurrencyByCode(cfg.DefaultCurrency)

	ledger, err := services.NewLedgerService(ctx, st, logger, defaultCurrency)
	if err != nil {
		logger.Error("Failed to initialize ledger", "error", err)
		st.Close()
		os.Exit(1)
	}
	defer ledger.Close()

	srv := apphttp.NewServer(":"+cfg.Port, ledger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting mizaniya server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
