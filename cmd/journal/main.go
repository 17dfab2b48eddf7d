package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journal/internal/config"
	"journal/internal/logging"
	"journal/internal/store"
	"journal/internal/web"
)

// Set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	config.LoadEnvFile()
	closeLog := logging.Setup(os.Stdout)
	defer closeLog()

	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		closeLog()
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	slog.Info("startup", "build_version", buildVersion, "per_page", cfg.PerPage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := store.Open(openCtx, store.Options{
		DSN:         cfg.DatabaseURL,
		BusyTimeout: cfg.DBBusyTimeout,
		LockTimeout: cfg.DBLockTimeout,
	})
	cancel()
	if err != nil {
		return err
	}
	defer st.Close()
	slog.Info("database ready", "dialect", st.Dialect())

	srv, err := web.NewServer(cfg, st)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
