package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/festpos/api/internal/config"
	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/logging"
	"github.com/festpos/api/internal/printing"
	"github.com/festpos/api/internal/router"
	"github.com/festpos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger.Sugar()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run(ctx)

	printers := printing.NewPool(
		printing.NewSelector(queries),
		queries,
		printing.NewTextRenderer(queries),
		printing.NewTCPTransmitter(cfg.PrinterTimeout),
		hub,
		logger.Named("printing"),
		printing.PoolConfig{Backoff: cfg.PrintBackoff},
	)
	if err := printers.Start(ctx); err != nil {
		return fmt.Errorf("start print workers: %w", err)
	}
	defer printers.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(cfg, queries, pool, hub, printers),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("starting server", "addr", srv.Addr, "env", cfg.Env)
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
