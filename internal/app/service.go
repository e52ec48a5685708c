// Package service ties the loader, mapper, renderer and session store
// together behind the operations used by the HTTP layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/xgxt/internal/adapters/render"
	"github.com/okian/xgxt/internal/adapters/session"
	"github.com/okian/xgxt/internal/domain/examples"
	"github.com/okian/xgxt/internal/domain/heat"
	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/internal/domain/overlay"
	"github.com/okian/xgxt/internal/domain/view"
	"github.com/okian/xgxt/pkg/logger"
	"github.com/okian/xgxt/pkg/metrics"
)

// Figure names used for metrics and titles.
const (
	FigureDataset = "dataset"

	zoneExpand = 5  // 4x4 zones -> 20x20 cells
	binnedCols = 30 // synthetic passes are binned in 4x4 yard cells
	binnedRows = 20
	heatCols   = 12 // uploaded data is sparse; use 10x10 yard cells
	heatRows   = 8

	// simulated passes are drawn faintly over their binned means
	syntheticRadius  = 0.4
	syntheticOpacity = 0.2
)

// Service implements the API dependencies for the xG/xT demo.
type Service struct {
	mu sync.RWMutex

	// Core components
	mapper   *overlay.Mapper
	renderer *render.Renderer
	sessions session.Store
	ownStore bool // sessions was built by Start and is dropped by Stop

	// Configuration
	pitch        model.Pitch
	maxRows      int
	previewRows  int
	mapperOpts   []overlay.Option
	rendererOpts []render.Option
	sessionOpts  []session.Option

	// Bundled data, read-only after Start
	shots     *model.Dataset
	match     *model.Dataset
	zones     *heat.Grid
	binned    *heat.Grid
	synthetic []model.Event

	// State
	started  bool
	accepted atomic.Int64
	rejected atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		pitch:       model.StatsBomb(),
		maxRows:     50_000,
		previewRows: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the bundled examples and builds the components.
func (s *Service) Start(ctx context.Context) error {
	const op = "service.start"
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting xgxt service...")

	if !s.pitch.Valid() {
		return fmt.Errorf("%s: invalid pitch %gx%g", op, s.pitch.Length, s.pitch.Width)
	}

	shots, err := examples.Shots(ctx, s.pitch)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	match, err := examples.Match(ctx, s.pitch)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	zones, err := heat.Expand(examples.ThreatZones(), zoneExpand)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	synthetic := examples.Synthetic(examples.SyntheticSeed, examples.SyntheticEvents, examples.SyntheticMaxXT, s.pitch)
	binned, err := heat.BinMean(synthetic, s.pitch, binnedCols, binnedRows, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.shots, s.match, s.zones, s.binned, s.synthetic = shots, match, zones, binned, synthetic
	s.mapper = overlay.NewMapper(s.mapperOpts...)
	s.renderer = render.NewRenderer(append(s.rendererOpts, render.WithPitch(s.pitch))...)
	if s.sessions == nil {
		evict := session.WithEvictHook(func(string) { metrics.RecordSessionEvicted() })
		s.sessions = session.NewMemoryStore(append([]session.Option{evict}, s.sessionOpts...)...)
		s.ownStore = true
	}

	s.started = true
	s.logger.Info(ctx, "xgxt service started",
		logger.Int("exampleEvents", match.Len()),
		logger.Int("maxRows", s.maxRows),
		logger.Float64("defaultWeight", s.mapper.DefaultWeight()),
	)
	return nil
}

// Stop marks the service stopped. Sessions of the built-in store are dropped;
// a store passed with WithSessionStore is kept.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	if s.ownStore {
		s.sessions = nil
		s.ownStore = false
	}
	s.logger.Info(context.Background(), "xgxt service stopped")
}

// components returns what an operation needs, or ErrNotStarted.
func (s *Service) components() (*overlay.Mapper, *render.Renderer, session.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.mapper, s.renderer, s.sessions, nil
}

// Upload parses r and, on success, makes it the active dataset of session
// sid. On failure the previously active dataset is left in place and the
// error wraps ingest.ErrValidation when the file itself was at fault.
func (s *Service) Upload(ctx context.Context, sid, name string, r io.Reader) (*ingest.Result, error) {
	const op = "service.upload"
	_, _, store, err := s.components()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := ingest.Load(ctx, r,
		ingest.WithPitch(s.pitch),
		ingest.WithMaxRows(s.maxRows),
		ingest.WithSource(name),
		ingest.WithUploaded(true),
	)
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			metrics.RecordUpload(metrics.UploadRejected)
			s.rejected.Add(1)
			s.logger.Info(ctx, "upload rejected",
				logger.String("file", name),
				logger.String("reason", verr.Error()),
				logger.Int("issues", len(verr.Issues)),
			)
		} else {
			metrics.RecordUpload(metrics.UploadFailed)
			s.logger.Warn(ctx, "upload failed", logger.String("file", name), logger.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := store.Put(ctx, sid, res.Dataset); err != nil {
		metrics.RecordUpload(metrics.UploadFailed)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordUpload(metrics.UploadAccepted)
	metrics.RecordRows(res.Dataset.Len(), res.Rejected(), len(res.Warnings))
	metrics.UpdateActiveSessions(store.Len())
	s.accepted.Add(1)
	s.logger.Info(ctx, "upload accepted",
		logger.String("file", name),
		logger.Int("rows", res.Rows),
		logger.Int("events", res.Dataset.Len()),
		logger.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// Reset drops the uploaded dataset of sid, returning it to the example.
func (s *Service) Reset(ctx context.Context, sid string) error {
	const op = "service.reset"
	_, _, store, err := s.components()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	store.Delete(ctx, sid)
	metrics.UpdateActiveSessions(store.Len())
	return nil
}

// Dataset returns the active dataset of sid: its upload when present, else
// the bundled demo match.
func (s *Service) Dataset(ctx context.Context, sid string) (*model.Dataset, error) {
	const op = "service.dataset"
	_, _, store, err := s.components()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sid != "" {
		if ds, err := store.Get(ctx, sid); err == nil {
			return ds, nil
		} else if !errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s.match, nil
}

// Preview returns the first rows of the active dataset.
func (s *Service) Preview(ctx context.Context, sid string) ([]model.Event, error) {
	ds, err := s.Dataset(ctx, sid)
	if err != nil {
		return nil, err
	}
	return ds.Head(s.previewRows), nil
}

// DefaultWeight is the marker weight of events without their metric.
func (s *Service) DefaultWeight() float64 {
	mapper, _, _, err := s.components()
	if err != nil {
		return overlay.NewMapper(s.mapperOpts...).DefaultWeight()
	}
	return mapper.DefaultWeight()
}

// DatasetFigure builds the figure for the active dataset under state.
func (s *Service) DatasetFigure(ctx context.Context, sid string, state view.State) (render.Figure, error) {
	const op = "service.dataset_figure"
	mapper, _, _, err := s.components()
	if err != nil {
		return render.Figure{}, fmt.Errorf("%s: %w", op, err)
	}
	ds, err := s.Dataset(ctx, sid)
	if err != nil {
		return render.Figure{}, err
	}
	events := state.Apply(ds)
	fig := render.Figure{Title: datasetTitle(ds, len(events))}
	if state.EffectiveLayer() == view.Heat {
		layers, err := heat.ByType(events, s.pitch, heatCols, heatRows, heat.MetricOr(mapper.DefaultWeight()))
		if err != nil {
			return render.Figure{}, fmt.Errorf("%s: %w", op, err)
		}
		fig.Layers = layers
		return fig, nil
	}
	fig.Markers = mapper.Map(events)
	return fig, nil
}

func datasetTitle(ds *model.Dataset, shown int) string {
	if shown == ds.Len() {
		return fmt.Sprintf("%s: %d events", ds.Source, shown)
	}
	return fmt.Sprintf("%s: %d of %d events", ds.Source, shown, ds.Len())
}

// RenderDataset writes the active dataset of sid as SVG.
func (s *Service) RenderDataset(ctx context.Context, sid string, state view.State, w io.Writer) error {
	fig, err := s.DatasetFigure(ctx, sid, state)
	if err != nil {
		return err
	}
	return s.render(ctx, FigureDataset, fig, w)
}

// ExampleFigure builds one of the bundled explainer figures.
func (s *Service) ExampleFigure(name string) (render.Figure, error) {
	const op = "service.example_figure"
	mapper, _, _, err := s.components()
	if err != nil {
		return render.Figure{}, fmt.Errorf("%s: %w", op, err)
	}
	switch name {
	case examples.NameShots:
		return render.Figure{
			Title:      "Three shots and their xG",
			Markers:    mapper.Map(s.shots.Events),
			ShowLabels: true,
		}, nil
	case examples.NameZones:
		return render.Figure{Title: "Expected threat by zone", Heat: s.zones}, nil
	case examples.NameBinned:
		return render.Figure{
			Title:   fmt.Sprintf("Mean xT of %d simulated passes", examples.SyntheticEvents),
			Heat:    s.binned,
			Markers: faint(mapper.Map(s.synthetic)),
		}, nil
	}
	return render.Figure{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownFigure, name)
}

// faint shrinks markers to small translucent dots.
func faint(markers []overlay.Marker) []overlay.Marker {
	for i := range markers {
		markers[i].Radius = syntheticRadius
		markers[i].Opacity = syntheticOpacity
	}
	return markers
}

// RenderExample writes a bundled explainer figure as SVG.
func (s *Service) RenderExample(ctx context.Context, name string, w io.Writer) error {
	fig, err := s.ExampleFigure(name)
	if err != nil {
		return err
	}
	return s.render(ctx, name, fig, w)
}

// ExampleNames lists the figures RenderExample accepts.
func ExampleNames() []string {
	return []string{examples.NameShots, examples.NameZones, examples.NameBinned}
}

func (s *Service) render(ctx context.Context, name string, fig render.Figure, w io.Writer) error {
	const op = "service.render"
	_, renderer, _, err := s.components()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	start := time.Now()
	if err := renderer.Render(w, fig); err != nil {
		metrics.RecordRenderError(name)
		s.logger.Error(ctx, "render failed", logger.String("figure", name), logger.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordRender(name, float64(time.Since(start).Microseconds())/1000)
	return nil
}

// Sweep expires idle sessions and returns how many were removed.
func (s *Service) Sweep(ctx context.Context) int {
	_, _, store, err := s.components()
	if err != nil {
		return 0
	}
	n := store.Sweep(ctx)
	metrics.UpdateActiveSessions(store.Len())
	return n
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"maxRows":         s.maxRows,
		"uploadsAccepted": s.accepted.Load(),
		"uploadsRejected": s.rejected.Load(),
	}
	if s.started {
		stats["activeSessions"] = s.sessions.Len()
		stats["exampleEvents"] = s.match.Len()
		stats["defaultWeight"] = s.mapper.DefaultWeight()
		stats["pitch"] = fmt.Sprintf("%gx%g", s.pitch.Length, s.pitch.Width)
	}
	return stats
}
