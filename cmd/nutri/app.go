package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/nutri/internal/catalog"
	"github.com/hpungsan/nutri/internal/config"
	"github.com/hpungsan/nutri/internal/db"
	"github.com/hpungsan/nutri/internal/ledger"
	"github.com/hpungsan/nutri/internal/logging"
	"github.com/hpungsan/nutri/internal/mcp"
	"github.com/hpungsan/nutri/internal/ops"
)

// app holds everything a command needs.
type app struct {
	baseDir string
	cfg     *config.Config
	db      *sql.DB
	catalog *catalog.Catalog
	svc     *ops.Service
	logger  *slog.Logger
}

// openApp loads configuration from baseDir, opens the food database and
// wires the service. Logs go to logOut.
func openApp(ctx context.Context, baseDir string, logOut io.Writer) (*app, error) {
	if err := config.LoadDotEnv(filepath.Join(baseDir, ".env"), ".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		return nil, fmt.Errorf("invalid config: unknown disabled_tools: %s", strings.Join(unknown, ", "))
	}

	logger := logging.New(logOut, cfg.LogLevel)

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	store := db.NewFoodStore(database)
	cat, err := catalog.Open(ctx, store)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	stored, err := store.CountFoods(ctx)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("count foods: %w", err)
	}
	version, err := db.SchemaVersion(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	logging.Component(logger, logging.ComponentStorage).Debug("catalog loaded",
		logging.FieldItems, cat.Len(),
		logging.FieldCount, stored,
		logging.FieldSchema, version,
		logging.FieldPath, filepath.Join(baseDir, db.FileName),
	)

	loc, err := cfg.Location()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	book := ledger.NewBook(time.Now, loc)

	return &app{
		baseDir: baseDir,
		cfg:     cfg,
		db:      database,
		catalog: cat,
		svc:     ops.NewService(book, cat, cfg.Goals, logger).WithExportsDir(filepath.Join(baseDir, ExportsDir)),
		logger:  logger,
	}, nil
}

// ExportsDir is the catalog export directory under the base dir.
const ExportsDir = "exports"

// Close releases the database.
func (a *app) Close() error {
	return a.db.Close()
}
