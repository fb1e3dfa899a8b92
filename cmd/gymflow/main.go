// cmd/gymflow/main.go
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

	"gymflow/internal/admin"
	"gymflow/internal/config"
	"gymflow/internal/journal"
	"gymflow/internal/logger"
	"gymflow/internal/membership"
	"gymflow/internal/storage"
	"gymflow/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("gymflow stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, "gymflow", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warnw("tracer shutdown failed", "error", err)
		}
	}()

	handler, closeStore, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting gymflow", "addr", cfg.Addr, "storage", cfg.StorageDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// build opens storage and assembles the HTTP handler. The returned func
// closes the store.
func build(ctx context.Context, cfg config.Config, log *logger.Logger) (http.Handler, func(), error) {
	store, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warnw("closing store failed", "error", err)
		}
	}

	// The journal lives next to the blobs when the backend is a database.
	var j membership.Journal
	if db, ok := store.(*storage.SQL); ok {
		jr, err := journal.New(ctx, db.DB(), db.Driver())
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		j = jr
	}

	var snapshots storage.Store = store
	if cfg.StorageQuotaBytes > 0 {
		quota, err := storage.NewQuota(ctx, store, cfg.StorageQuotaBytes, storage.Keys...)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		snapshots = quota
	}

	svc, err := membership.NewService(ctx, membership.Options{
		Store:             snapshots,
		Journal:           j,
		Log:               log.With("component", "membership"),
		Location:          cfg.Location(),
		IDPrefix:          cfg.IDPrefix,
		RegistrationLimit: cfg.RegistrationLimit(),
		RegistrationBurst: cfg.RegistrationBurst,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	gate, err := admin.NewGate(cfg.AdminPassword)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	adminHandler := admin.NewHandler(gate, admin.NewSessions(), log.With("component", "admin"))

	return membership.NewHandler(svc, adminHandler, log.With("component", "http")).Routes(), closeStore, nil
}
