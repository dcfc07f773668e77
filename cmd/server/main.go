package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/sheetforms/internal/codec"
	"github.com/JonMunkholm/sheetforms/internal/config"
	"github.com/JonMunkholm/sheetforms/internal/core"
	"github.com/JonMunkholm/sheetforms/internal/logging"
	"github.com/JonMunkholm/sheetforms/internal/store"
	"github.com/JonMunkholm/sheetforms/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"entry_list_limit", cfg.Sheets.EntryListLimit,
		"max_transcodes", cfg.Sheets.MaxConcurrentTranscodes,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// The store connects on first use so the server can start before the
	// database is reachable.
	st, err := store.FromConfig(cfg)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	service := core.NewService(st, codec.New(), core.ServiceConfig{
		EntryListLimit:          cfg.Sheets.EntryListLimit,
		MaxConcurrentTranscodes: cfg.Sheets.MaxConcurrentTranscodes,
		TranscodeWait:           cfg.Sheets.TranscodeWait,
	})

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		status := service.TranscodeStatus()
		if status.Active > 0 {
			slog.Info("waiting for spreadsheet conversions", "active", status.Active)
			if err := service.WaitForTranscodes(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
