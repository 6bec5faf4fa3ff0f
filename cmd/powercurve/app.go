package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/power-curve-service/internal/adapter/catalogfile"
	kafkaadapter "github.com/couchcryptid/power-curve-service/internal/adapter/kafka"
	"github.com/couchcryptid/power-curve-service/internal/adapter/objectstore"
	"github.com/couchcryptid/power-curve-service/internal/config"
	"github.com/couchcryptid/power-curve-service/internal/domain"
	"github.com/couchcryptid/power-curve-service/internal/observability"
	"github.com/couchcryptid/power-curve-service/internal/pipeline"
	"github.com/couchcryptid/power-curve-service/internal/render"
)

// metrics are registered once per process.
var metrics = sync.OnceValue(observability.NewMetrics)

// app holds the wired pipeline and the resources that need closing.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	pipeline *pipeline.Pipeline
	store    *objectstore.Store
	writer   *kafkaadapter.Writer
}

// newApp loads configuration and wires the pipeline with the optional sinks.
// dpi overrides RENDER_DPI when positive.
func newApp(ctx context.Context, dpi int) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dpi > 0 {
		cfg.RenderDPI = dpi
	}

	logger := observability.NewLogger(cfg)

	catalog, err := catalogfile.Load(cfg.ReferenceCurvesPath, domain.DefaultCatalog())
	if err != nil {
		return nil, err
	}
	if cfg.ReferenceCurvesPath != "" {
		logger.Info("reference curves loaded", "path", cfg.ReferenceCurvesPath, "models", catalog.Models())
	}

	renderer := render.NewRenderer(catalog, render.Options{
		DPI:    cfg.RenderDPI,
		Width:  vg.Length(cfg.RenderWidthIn) * vg.Inch,
		Height: vg.Length(cfg.RenderHeightIn) * vg.Inch,
	}, logger)

	a := &app{cfg: cfg, logger: logger, metrics: metrics()}
	var sinks pipeline.Sinks
	if cfg.ArchiveEnabled {
		store, err := objectstore.NewStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		a.store = store
		sinks.Archive = store
		logger.Info("archive upload enabled", "bucket", store.Bucket())
	}
	if cfg.ManifestEnabled {
		a.writer = kafkaadapter.NewWriter(cfg, logger)
		sinks.Manifest = a.writer
		logger.Info("manifest publishing enabled", "topic", cfg.KafkaManifestTopic)
	}

	a.pipeline = pipeline.New(catalog, renderer, sinks, logger, a.metrics)
	return a, nil
}

// CheckReadiness reports the pipeline ready and, when uploads are enabled, the
// bucket reachable.
func (a *app) CheckReadiness(ctx context.Context) error {
	if err := a.pipeline.CheckReadiness(ctx); err != nil {
		return err
	}
	if a.store != nil {
		return a.store.CheckReadiness(ctx)
	}
	return nil
}

func (a *app) Close() error {
	var errs []error
	if a.writer != nil {
		if err := a.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka writer close: %w", err))
		}
	}
	return errors.Join(errs...)
}
