package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/akinalp/rollcall/config"
	"github.com/akinalp/rollcall/database"
	"github.com/akinalp/rollcall/pkg/logging"
	"github.com/akinalp/rollcall/repository"
)

// app is what every command starts from: config, a logger and the
// store over an opened database.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
	store  *repository.Store
}

// bootstrap loads config, builds the logger and opens the database with
// migrations applied. Callers must call close.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.New(cfg.Database.Path, database.Migrations(), logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		store:  repository.NewStore(db),
	}, nil
}

func (rt *app) close() {
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = rt.logger.Sync()
}
