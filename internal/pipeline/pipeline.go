package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/power-curve-service/internal/archive"
	"github.com/couchcryptid/power-curve-service/internal/domain"
	"github.com/couchcryptid/power-curve-service/internal/observability"
	"github.com/couchcryptid/power-curve-service/internal/render"
)

// RecordSource supplies the rows of one telemetry export.
type RecordSource interface {
	ReadDataset(ctx context.Context) (domain.Dataset, error)
}

// ChartRenderer draws the chart of one turbine group.
type ChartRenderer interface {
	Render(g domain.TurbineGroup, model string) *render.Artifact
}

// ArchiveSink stores a finished archive.
type ArchiveSink interface {
	StoreArchive(ctx context.Context, name string, body io.Reader, size int64) error
}

// ManifestPublisher announces a finished archive to downstream consumers.
type ManifestPublisher interface {
	PublishManifest(ctx context.Context, m domain.Manifest) error
}

// Sinks are optional destinations for finished archives. Nil fields are skipped.
type Sinks struct {
	Archive  ArchiveSink
	Manifest ManifestPublisher
}

// Result is the outcome of one run.
type Result struct {
	Name     string
	Archive  *bytes.Reader
	Manifest domain.Manifest
}

// Pipeline runs ingest, group, render and package for one export at a time.
type Pipeline struct {
	catalog  *domain.Catalog
	renderer ChartRenderer
	sinks    Sinks
	logger   *slog.Logger
	metrics  *observability.Metrics

	archiveGuard  *guard
	manifestGuard *guard
}

// New creates a Pipeline.
func New(catalog *domain.Catalog, renderer ChartRenderer, sinks Sinks, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		catalog:       catalog,
		renderer:      renderer,
		sinks:         sinks,
		logger:        logger,
		metrics:       metrics,
		archiveGuard:  newGuard(sinkObjectStore, logger),
		manifestGuard: newGuard(sinkManifest, logger),
	}
}

// CheckReadiness returns nil once a non-empty reference curve catalog is loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.catalog.Len() == 0 {
		return errors.New("reference curve catalog is empty")
	}
	return nil
}

// Catalog returns the reference curve catalog the pipeline renders against.
func (p *Pipeline) Catalog() *domain.Catalog {
	return p.catalog
}

// Summarize reads the export and returns its overview without rendering.
func (p *Pipeline) Summarize(ctx context.Context, src RecordSource) (domain.Summary, error) {
	ds, err := readDataset(ctx, src)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(ds), nil
}

// Run renders one chart per turbine and packages them into a single archive.
// Turbines are rendered and archived one at a time so only one raster is held
// in memory. The run fails with domain.ErrIngestion when the export cannot be
// read, with domain.ErrEmptyDataset when it holds no turbines and with the
// context error when ctx ends before the export is read; no archive is
// produced in any of these cases.
func (p *Pipeline) Run(ctx context.Context, src RecordSource) (Result, error) {
	p.metrics.RunsInFlight.Inc()
	defer p.metrics.RunsInFlight.Dec()

	ds, err := readDataset(ctx, src)
	if err != nil {
		outcome := "ingestion_error"
		if isContextErr(err) {
			outcome = "canceled"
		}
		p.metrics.Runs.WithLabelValues(outcome).Inc()
		return Result{}, err
	}
	p.metrics.RecordsIngested.Add(float64(len(ds.Records)))
	p.metrics.RowsSkipped.Add(float64(ds.SkippedRows))

	groups := domain.GroupTurbines(ds)
	if len(groups) == 0 {
		p.metrics.Runs.WithLabelValues("empty_dataset").Inc()
		return Result{}, domain.ErrEmptyDataset
	}
	p.logger.Info("rendering power curves", "turbines", len(groups), "records", len(ds.Records))

	manifest := domain.NewManifest()
	w := archive.NewWriter(p.logger)
	for _, g := range groups {
		entry, err := p.renderAndArchive(w, g)
		if err != nil {
			p.metrics.Runs.WithLabelValues("error").Inc()
			return Result{}, err
		}
		manifest.Entries = append(manifest.Entries, entry)
	}

	r, err := w.Finish()
	if err != nil {
		p.metrics.Runs.WithLabelValues("error").Inc()
		return Result{}, err
	}
	manifest.SizeBytes = r.Size()
	p.metrics.ArchiveBytes.Observe(float64(r.Size()))

	p.deliver(ctx, manifest, r)

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.logger.Info("archive ready", "archive", manifest.Archive, "entries", len(manifest.Entries), "bytes", manifest.SizeBytes)
	return Result{Name: manifest.Archive, Archive: r, Manifest: manifest}, nil
}

func (p *Pipeline) renderAndArchive(w *archive.Writer, g domain.TurbineGroup) (domain.ManifestEntry, error) {
	start := time.Now()

	a := p.renderer.Render(g, g.Model)
	ch := a.Chart
	entry, err := w.Add(g.Turbine, a, g.Metadata)
	if err != nil {
		return domain.ManifestEntry{}, fmt.Errorf("archive turbine %s: %w", g.Turbine, err)
	}

	p.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	p.metrics.TurbinesRendered.Inc()
	p.metrics.RecordsDropped.Add(float64(ch.Dropped))
	if ch.Reference == nil {
		p.metrics.UnknownModels.Inc()
	}
	if ch.PointCount() == 0 {
		p.metrics.EmptyCharts.Inc()
	}
	if entry.Renamed {
		p.metrics.FilenameCollisions.Inc()
	}

	return domain.ManifestEntry{
		Turbine:   g.Turbine,
		Model:     g.Model,
		Filename:  entry.Name,
		Metadata:  g.Metadata,
		Points:    ch.PointCount(),
		Dropped:   ch.Dropped,
		Reference: ch.Reference != nil,
		Renamed:   entry.Renamed,
	}, nil
}

// Sink labels for logs and metrics.
const (
	sinkObjectStore = "object_store"
	sinkManifest    = "manifest"
)

// deliver forwards the archive to the configured sinks. Failures are logged and
// counted; the archive is still returned to the caller.
func (p *Pipeline) deliver(ctx context.Context, m domain.Manifest, r *bytes.Reader) {
	if p.sinks.Archive != nil {
		err := p.archiveGuard.do(func() error {
			body := io.NewSectionReader(r, 0, r.Size())
			return p.sinks.Archive.StoreArchive(ctx, m.Archive, body, r.Size())
		})
		p.sinkFailed(sinkObjectStore, m, err)
	}
	if p.sinks.Manifest != nil {
		err := p.manifestGuard.do(func() error {
			return p.sinks.Manifest.PublishManifest(ctx, m)
		})
		p.sinkFailed(sinkManifest, m, err)
	}
}

func (p *Pipeline) sinkFailed(sink string, m domain.Manifest, err error) {
	if err == nil {
		return
	}
	p.metrics.SinkErrors.WithLabelValues(sink).Inc()
	if errors.Is(err, gobreaker.ErrOpenState) {
		p.logger.Warn("sink skipped while circuit is open", "sink", sink, "archive", m.Archive)
		return
	}
	p.logger.Error("sink delivery failed", "sink", sink, "archive", m.Archive, "error", err)
}

func readDataset(ctx context.Context, src RecordSource) (domain.Dataset, error) {
	ds, err := src.ReadDataset(ctx)
	if err == nil {
		return ds, nil
	}
	if errors.Is(err, domain.ErrIngestion) || isContextErr(err) {
		return domain.Dataset{}, err
	}
	return domain.Dataset{}, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
