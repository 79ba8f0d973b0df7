package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/config"
	"github.com/psalmlegal/psalm/kv"
	"github.com/psalmlegal/psalm/offline"
	"github.com/psalmlegal/psalm/openai"
	"github.com/psalmlegal/psalm/settings"
	"github.com/psalmlegal/psalm/store"
)

// app bundles the wired-up dependencies every subcommand needs.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	kv       kv.Store
	store    *store.Store
	settings *settings.Manager

	cleanups []func() error
}

// newApp loads config, sets up logging and storage, and rehydrates the
// session store.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.Level())

	kvs, err := kv.Open(cfg.KVConfig())
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	st := store.New(kvs, logger)
	st.Rehydrate(ctx)

	return &app{
		cfg:      cfg,
		logger:   logger,
		kv:       kvs,
		store:    st,
		settings: settings.New(kvs, logger),
		cleanups: []func() error{kvs.Close, closeLog},
	}, nil
}

func (a *app) close() {
	for _, fn := range a.cleanups {
		if err := fn(); err != nil {
			a.logger.Warn("cleanup", "error", err)
		}
	}
}

// transport resolves the chat backend from stored settings: the live
// client when an endpoint is configured, the offline demo otherwise.
func (a *app) transport(ctx context.Context) psalm.Transport {
	s := a.settings.Load(ctx)
	if s.Configured() {
		return openai.New(s)
	}
	a.logger.Info("no endpoint configured, using offline transport")
	return offline.New()
}
