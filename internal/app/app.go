// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jobrunner/mapassist/internal/adapters/commandlog"
	"github.com/jobrunner/mapassist/internal/adapters/editor"
	"github.com/jobrunner/mapassist/internal/adapters/geojson"
	"github.com/jobrunner/mapassist/internal/adapters/levels"
	"github.com/jobrunner/mapassist/internal/adapters/memstore"
	"github.com/jobrunner/mapassist/internal/adapters/metrics"
	"github.com/jobrunner/mapassist/internal/adapters/projection"
	"github.com/jobrunner/mapassist/internal/adapters/scheduler"
	"github.com/jobrunner/mapassist/internal/adapters/sqlitestore"
	"github.com/jobrunner/mapassist/internal/application"
	"github.com/jobrunner/mapassist/internal/config"
	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

// ShutdownTimeout bounds how long Close waits for scheduled work.
const ShutdownTimeout = 5 * time.Second

// Store is a feature store that commands can be applied to.
type Store interface {
	output.FeatureStore
	output.Applier
}

// App holds all application components.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     Store
	Projector *projection.Mercator
	Levels    *levels.Static
	Commands  *commandlog.Log
	Editor    *editor.Recorder
	Scheduler *scheduler.Timer
	Metrics   *metrics.Collector

	Selection     *application.SelectionService
	Merge         *application.MergeService
	LevelAssigner *application.LevelAssigner
	Verify        *application.VerifyService
	Move          *application.MoveService

	closeStore func() error
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Levels:    levels.NewStatic(cfg.Assist.Level),
		Editor:    editor.NewRecorder(logger),
		Scheduler: &scheduler.Timer{},
	}

	// Initialize metrics
	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector(cfg.Metrics.Namespace)
		metricsCollector = app.Metrics
	}

	// Initialize feature store
	if err := app.initStore(ctx); err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	all, err := app.Store.AllPolygons(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}
	metricsCollector.SetFeatureCount(len(all))

	// Initialize projection
	refLat := datasetLatitude(all)
	if cfg.Projection.ReferenceLatitude != nil {
		refLat = *cfg.Projection.ReferenceLatitude
	}
	app.Projector = projection.NewMercator(refLat)
	geodesy := projection.Sphere{}

	app.Commands = commandlog.New(app.Store, metricsCollector, logger)

	// Initialize services
	search := application.NewNeighborSearch(
		app.Store,
		app.Projector,
		geodesy,
		logger,
		application.NeighborSearchConfig{
			CorridorWidthFactor:  cfg.Assist.CorridorWidthFactor,
			CorridorLengthFactor: cfg.Assist.CorridorLengthFactor,
		},
	)

	interpolator := application.NewNameInterpolator(
		search,
		app.Projector,
		logger,
		application.NameInterpolatorConfig{CollinearTolerance: cfg.Assist.CollinearTolerance},
	)

	app.Selection = application.NewSelectionService(
		app.Store,
		app.Levels,
		app.Projector,
		search,
		interpolator,
		application.Host{Commands: app.Commands, Editor: app.Editor, Selection: app.Editor},
		metricsCollector,
		logger,
		application.SelectionServiceConfig{
			Enabled:   cfg.Assist.Enabled,
			MaxRadius: cfg.Assist.MaxRadius,
		},
	)

	app.Merge = application.NewMergeService(
		app.Store,
		app.Projector,
		app.Commands,
		metricsCollector,
		logger,
		application.MergeServiceConfig{},
	)

	app.LevelAssigner = application.NewLevelAssigner(
		app.Store,
		app.Levels,
		app.Commands,
		app.Scheduler,
		metricsCollector,
		logger,
		application.LevelAssignerConfig{SettleDelay: cfg.Assist.SettleDelay},
	)

	app.Verify = application.NewVerifyService(app.Store, app.Commands, logger)
	app.Move = application.NewMoveService(app.Store, geodesy, app.Commands, logger)

	logger.Debug("application initialized",
		"store", cfg.Store.Type,
		"polygons", len(all),
		"reference_latitude", refLat,
	)
	return app, nil
}

// initStore opens the configured store and seeds it from the dataset.
func (a *App) initStore(ctx context.Context) error {
	var seed []*domain.Polygon
	if a.Config.Store.Dataset != "" {
		polygons, err := geojson.NewLoader(a.Logger).LoadFile(a.Config.Store.Dataset)
		if err != nil {
			return err
		}
		seed = polygons
	}

	switch a.Config.Store.Type {
	case "memory":
		store := memstore.New()
		if err := store.Load(seed...); err != nil {
			return err
		}
		a.Store = store

	case "sqlite":
		store, err := sqlitestore.Open(ctx, a.Config.Store.SQLitePath)
		if err != nil {
			return err
		}
		a.closeStore = store.Close

		count, err := store.Count(ctx)
		if err != nil {
			_ = store.Close()
			return err
		}
		// Seed only a fresh database so edits survive restarts.
		if count == 0 && len(seed) > 0 {
			if err := store.Load(ctx, seed...); err != nil {
				_ = store.Close()
				return err
			}
		}
		a.Store = store

	default:
		return fmt.Errorf("unknown store type: %s", a.Config.Store.Type)
	}

	a.Logger.Info("store ready", "type", a.Config.Store.Type, "dataset", a.Config.Store.Dataset)
	return nil
}

// Polygons fetches polygons by ID.
func (a *App) Polygons(ctx context.Context, ids []int64) ([]*domain.Polygon, error) {
	out := make([]*domain.Polygon, 0, len(ids))
	for _, id := range ids {
		p, err := a.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Save writes the current dataset to path as GeoJSON.
func (a *App) Save(ctx context.Context, path string) error {
	all, err := a.Store.AllPolygons(ctx)
	if err != nil {
		return err
	}
	data, err := geojson.Collection(all).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //#nosec G306 -- dataset is not secret
		return fmt.Errorf("writing dataset: %w", err)
	}
	a.Logger.Info("dataset saved", "path", path, "polygons", len(all))
	return nil
}

// Close waits for scheduled work, exports metrics and closes the store.
func (a *App) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.Scheduler.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.Logger.Warn("scheduled work still pending at shutdown")
	}

	var errs []error
	if a.Metrics != nil {
		if all, err := a.Store.AllPolygons(ctx); err == nil {
			a.Metrics.SetFeatureCount(len(all))
		}
		if a.Config.Metrics.Textfile != "" {
			if err := a.Metrics.WriteTextfile(a.Config.Metrics.Textfile); err != nil {
				errs = append(errs, fmt.Errorf("writing metrics: %w", err))
			}
		}
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// datasetLatitude returns the latitude at the center of the polygons'
// bounding box, or 0 for an empty dataset.
func datasetLatitude(polygons []*domain.Polygon) float64 {
	extent := domain.EmptyExtent()
	for _, p := range polygons {
		for _, n := range p.Nodes {
			if n.IsValid() {
				extent = extent.Extend(n.Lon, n.Lat)
			}
		}
	}
	if !extent.IsValid() {
		return 0
	}
	_, lat := extent.Center()
	return lat
}
