package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/jorgekof/hostreamly-admin/internal/config"
	"github.com/jorgekof/hostreamly-admin/internal/db"
	"github.com/jorgekof/hostreamly-admin/internal/db/memory"
	dbRedis "github.com/jorgekof/hostreamly-admin/internal/db/redis"
	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
	logpkg "github.com/jorgekof/hostreamly-admin/internal/logger"
	chargerepo "github.com/jorgekof/hostreamly-admin/internal/repository/charge"
	credentialrepo "github.com/jorgekof/hostreamly-admin/internal/repository/credential"
	logrepo "github.com/jorgekof/hostreamly-admin/internal/repository/logentry"
	prefsrepo "github.com/jorgekof/hostreamly-admin/internal/repository/preferences"
	usagerepo "github.com/jorgekof/hostreamly-admin/internal/repository/usage"
	"github.com/jorgekof/hostreamly-admin/internal/transport/stripe"
	billinguc "github.com/jorgekof/hostreamly-admin/internal/usecase/billing"
	credentialuc "github.com/jorgekof/hostreamly-admin/internal/usecase/credential"
	healthuc "github.com/jorgekof/hostreamly-admin/internal/usecase/health"
	logsuc "github.com/jorgekof/hostreamly-admin/internal/usecase/logs"
)

// deps is the composition root shared by every command.
type deps struct {
	env         string
	cfg         config.Config
	logger      *zap.Logger
	store       db.Store
	provider    *stripe.Client
	credentials *credentialuc.Service
	billing     *billinguc.Service
	logs        *logsuc.Service
	health      *healthuc.Service
	formatter   *money.Formatter
}

// Close releases the store and flushes the logger.
func (d *deps) Close() {
	d.store.Close()
	_ = d.logger.Sync()
}

func bootstrap(c *cli.Context) (*deps, error) {
	env := c.String("env")

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := openStore(c.Context, cfg.Database, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	formatter, err := money.NewFormatter(cfg.Billing.Currency, cfg.Billing.Locale)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("billing currency: %w", err)
	}

	defaults, err := dombilling.NewPreferences(
		false,
		cfg.Billing.StoragePricePerGB,
		cfg.Billing.BandwidthPricePerGB,
		cfg.Billing.NotificationThreshold,
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("billing defaults: %w", err)
	}

	provider := stripe.NewClient(stripe.ClientConfig{
		BaseURL:        cfg.Provider.BaseURL,
		RequestTimeout: time.Duration(cfg.Provider.TimeoutSec) * time.Second,
	}, logger)

	prefix := cfg.Storage.KeyPrefix
	credSvc := credentialuc.New(
		credentialrepo.New(store, prefix), provider, cfg.Provider.KeyPrefix, cfg.Provider.SecretKey,
	).WithLogger(logger.Named("credential"))

	gateway := stripe.NewGateway(provider, credSvc, cfg.Provider.SuccessURL, cfg.Provider.CancelURL)

	billSvc := billinguc.New(
		usagerepo.New(store, prefix), prefsrepo.New(store, prefix), chargerepo.New(store, prefix),
		gateway, defaults, formatter.Code(),
	).WithLogger(logger.Named("billing"))

	logSvc := logsuc.New(logrepo.New(store, prefix)).WithLogger(logger.Named("logs"))

	return &deps{
		env:         env,
		cfg:         cfg,
		logger:      logger,
		store:       store,
		provider:    provider,
		credentials: credSvc,
		billing:     billSvc,
		logs:        logSvc,
		health:      healthuc.New(store, provider),
		formatter:   formatter,
	}, nil
}

// openStore creates the store for the configured driver and waits until it answers.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case "valkey", "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case "memory":
		logger.Warn("Using in-memory store, data is lost on restart")
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return store, nil
}
