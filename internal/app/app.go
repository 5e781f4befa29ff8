package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"optjournal/internal/config"
	"optjournal/internal/journal"
	"optjournal/internal/logger"
	"optjournal/internal/store/gormstore"
	journalhttp "optjournal/internal/transport/http"
)

const snapshotInterval = 15 * time.Minute

// App wires the store, journal service and HTTP server together.
type App struct {
	cfg     *config.Config
	cfgPath string
	store   *gormstore.Store
	service *journal.Service
	server  *journalhttp.Server
}

// New builds the application from config. cfgPath enables log-level
// hot-reload; empty disables watching.
func New(cfg *config.Config, cfgPath string) (*App, error) {
	store, err := gormstore.New(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	matcher := journal.Matcher{Multiplier: cfg.Journal.ContractMultiplier}
	service := journal.NewService(store, matcher, cfg.Journal.ExpiryWarningDays)
	server, err := journalhttp.NewServer(journalhttp.ServerConfig{
		Addr:    cfg.App.Listen,
		Journal: service,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &App{cfg: cfg, cfgPath: cfgPath, store: store, service: service, server: server}, nil
}

// Run serves until ctx is cancelled or a component fails, then closes the
// store.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Watch(a.cfgPath, func(cfg *config.Config) {
		logger.SetLevel(cfg.App.LogLevel)
		logger.Infof("[app] config reloaded, log level=%s", cfg.App.LogLevel)
	}, func(err error) {
		logger.Warnf("[app] config reload skipped: %v", err)
	}); err != nil {
		logger.Warnf("[app] config watch unavailable: %v", err)
	}

	logger.Infof("[app] journal service listening on %s (env=%s store=%s)", a.server.Addr(), a.cfg.App.Env, a.cfg.Store.Path)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Start(ctx)
	})
	g.Go(func() error {
		a.snapshotLoop(ctx)
		return nil
	})
	err := g.Wait()
	if cerr := a.store.Close(); cerr != nil {
		logger.Warnf("[app] closing store failed: %v", cerr)
	}
	return err
}

// snapshotLoop periodically logs the headline journal numbers so long-term
// drift shows up in the logs without hitting the API.
func (a *App) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := a.service.Summary(ctx, nil)
			if err != nil {
				logger.Warnf("[app] journal snapshot failed: %v", err)
				continue
			}
			logger.Infof("[app] journal snapshot realized=%.2f open=%d expiring=%d",
				summary.TotalRealizedProfit, summary.OpenPositions, summary.ExpiringSoon)
		}
	}
}
