// Package engine assembles the catalog, library service and scanner from the
// server configuration.
package engine

import (
	"context"
	"fmt"

	config "github.com/mwantia/nfosync/internal/config/server"
	"github.com/mwantia/nfosync/pkg/assets"
	"github.com/mwantia/nfosync/pkg/db/store"
	"github.com/mwantia/nfosync/pkg/library"
	"github.com/mwantia/nfosync/pkg/log"
	"github.com/mwantia/nfosync/pkg/metrics"
	"github.com/mwantia/nfosync/pkg/scanner"
)

type Engine struct {
	Catalog  *store.SQLiteStore
	Resolver *assets.Resolver
	Library  *library.Service
	Scanner  *scanner.Scanner

	cfg *config.BaseServerConfig
	log log.LoggerService
}

// Open connects to the catalog and wires the services on top of it. The
// schema is not migrated; call Migrate when the caller needs it.
func Open(ctx context.Context, cfg *config.BaseServerConfig, logger log.LoggerService) (*Engine, error) {
	storeCfg, err := store.SQLiteConfigFromServer(cfg.Catalog, logger.Named("catalog"))
	if err != nil {
		return nil, err
	}

	catalog, err := store.NewSQLiteStore(storeCfg)
	if err != nil {
		return nil, err
	}

	if err := catalog.Connect(ctx); err != nil {
		catalog.Close()
		return nil, fmt.Errorf("failed to connect to catalog '%s': %w", cfg.Catalog.SQLite.Path, err)
	}

	resolver := assets.NewResolver(cfg.Library.VideoExtensions)
	svc := library.NewService(catalog, resolver, logger.Named("library"), library.ServiceConfig{
		Incremental: cfg.Library.Incremental,
	})
	scan := scanner.New(svc, logger.Named("scanner"), ScannerConfig(cfg))

	return &Engine{
		Catalog:  catalog,
		Resolver: resolver,
		Library:  svc,
		Scanner:  scan,
		cfg:      cfg,
		log:      logger,
	}, nil
}

// ScannerConfig maps the library section onto the scanner settings.
func ScannerConfig(cfg *config.BaseServerConfig) scanner.Config {
	return scanner.Config{
		Workers:           cfg.Library.Workers,
		SidecarExtensions: cfg.Library.SidecarExtensions,
		SkipNames:         cfg.Library.SkipNames,
		SkipHidden:        cfg.Library.SkipHidden,
	}
}

// Migrate applies all pending catalog migrations.
func (e *Engine) Migrate(ctx context.Context) error {
	if err := e.Catalog.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// Scan runs one scan. Without explicit roots the configured ones are used.
func (e *Engine) Scan(ctx context.Context, roots []string) (*scanner.Report, error) {
	if len(roots) == 0 {
		roots = e.cfg.Library.Roots
	}

	report, err := e.Scanner.Scan(ctx, roots)
	if err != nil {
		return report, err
	}

	if total, err := e.Catalog.CountItems(context.WithoutCancel(ctx)); err == nil {
		metrics.CatalogItems.Set(float64(total))
	} else {
		e.log.Warn("Unable to count catalog items: %v", err)
	}

	return report, nil
}

func (e *Engine) Close() error {
	return e.Catalog.Close()
}
