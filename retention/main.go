package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newsphere/newsletter-bff/internal/config"
	"github.com/newsphere/newsletter-bff/internal/elasticsearch"
	"github.com/newsphere/newsletter-bff/internal/logger"
)

const (
	connectAttempts   = 10
	connectBaseDelay  = 2 * time.Second
	connectMaxDelay   = 30 * time.Second
	sweepBudget       = 2 * time.Minute
	startupPingBudget = 5 * time.Second
)

func main() {
	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, err := connect(ctx, log, cfg)
	if err != nil {
		log.Error("event store unreachable", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("engagement retention running",
		slog.String("index", cfg.ElasticsearchIndex),
		slog.Duration("interval", cfg.Interval),
		slog.Duration("max_age", cfg.MaxAge),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	// First sweep happens immediately so a restart never extends the
	// effective retention window.
	sweep(ctx, log, store, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			sweep(ctx, log, store, cfg)
		}
	}
}

// connect dials the event store, retrying with capped exponential backoff
// until the cluster answers a ping or the attempts run out.
func connect(ctx context.Context, log *slog.Logger, cfg *config.Retention) (*elasticsearch.Client, error) {
	delay := connectBaseDelay
	var lastErr error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		store, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, startupPingBudget)
			err = store.Ping(pingCtx)
			cancel()
			if err == nil {
				return store, nil
			}
		}
		lastErr = err

		log.Warn("event store not ready",
			slog.Any("err", err),
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", delay),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		delay *= 2
		if delay > connectMaxDelay {
			delay = connectMaxDelay
		}
	}

	return nil, fmt.Errorf("gave up after %d attempts: %w", connectAttempts, lastErr)
}

// sweep deletes one batch-loop of expired events. Failures are logged and
// left for the next tick.
func sweep(ctx context.Context, log *slog.Logger, store *elasticsearch.Client, cfg *config.Retention) {
	sweepCtx, cancel := context.WithTimeout(ctx, sweepBudget)
	defer cancel()

	deleted, err := store.DeleteOlderThan(sweepCtx, cfg.MaxAge, cfg.BatchSize)
	if err != nil {
		log.Warn("sweep failed, retrying next tick", slog.Any("err", err))
		return
	}

	if deleted > 0 {
		log.Info("sweep completed", slog.Int64("deleted_events", deleted))
		return
	}
	log.Debug("sweep completed, nothing expired")
}
