package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/input"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

// Host bundles the editor collaborators the assist services drive.
type Host struct {
	Commands  output.CommandLog
	Editor    output.TagEditor
	Selection output.Selection
}

// SelectionService handles clicks in select mode: it selects the polygon
// under the pointer and prefills a name for it.
type SelectionService struct {
	store        output.FeatureStore
	levels       output.LevelSource
	projector    output.Projector
	selector     *PolygonSelector
	search       *NeighborSearch
	interpolator *NameInterpolator
	host         Host
	metrics      output.MetricsCollector
	logger       *slog.Logger
	enabled      bool
	maxRadius    float64
}

// SelectionServiceConfig holds configuration for the selection service.
type SelectionServiceConfig struct {
	Enabled   bool
	MaxRadius float64 // Meters
}

var _ input.SelectionService = (*SelectionService)(nil)

// NewSelectionService creates a new selection service.
func NewSelectionService(
	store output.FeatureStore,
	levels output.LevelSource,
	projector output.Projector,
	search *NeighborSearch,
	interpolator *NameInterpolator,
	host Host,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg SelectionServiceConfig,
) *SelectionService {
	if cfg.MaxRadius <= 0 {
		cfg.MaxRadius = DefaultMaxRadius
	}

	return &SelectionService{
		store:        store,
		levels:       levels,
		projector:    projector,
		selector:     NewPolygonSelector(projector, logger),
		search:       search,
		interpolator: interpolator,
		host:         host,
		metrics:      metrics,
		logger:       logger,
		enabled:      cfg.Enabled,
		maxRadius:    cfg.MaxRadius,
	}
}

// HandleClick implements input.SelectionService. Clicking outside every
// polygon returns domain.ErrNoContainingPolygon and changes nothing.
func (s *SelectionService) HandleClick(ctx context.Context, req input.ClickRequest) (*domain.SelectionResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("select", time.Since(start)) }()

	if !s.enabled || req.Mode != domain.ModeSelect {
		s.metrics.IncSelection("inactive")
		return nil, fmt.Errorf("mode %s: %w", req.Mode, domain.ErrInactive)
	}
	if err := req.Point.Validate(); err != nil {
		s.metrics.IncSelection("error")
		return nil, err
	}

	candidates, err := s.store.QueryByExtent(ctx, domain.GeoExtent(req.Point))
	if err != nil {
		s.metrics.IncSelection("error")
		return nil, fmt.Errorf("querying candidates: %w", err)
	}

	polygon, err := s.selector.Select(req.Point, candidates)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatch) {
			s.metrics.IncSelection("no_match")
		} else {
			s.metrics.IncSelection("error")
		}
		return nil, err
	}

	if err := s.host.Selection.Replace(ctx, []int64{polygon.ID}); err != nil {
		s.metrics.IncSelection("error")
		return nil, fmt.Errorf("selecting polygon %d: %w", polygon.ID, err)
	}

	result := &domain.SelectionResult{Polygon: polygon, Name: polygon.Name(), Source: domain.SourceExisting}
	if !polygon.IsNamed() {
		result.Name, result.Source, err = s.suggest(ctx, polygon, req.Point)
		if err != nil {
			s.metrics.IncSelection("error")
			return nil, err
		}
	}

	if err := s.openEditor(ctx, polygon, result); err != nil {
		if domain.IsRecoverable(err) {
			s.logger.Warn("selection changed before editing", "polygon", polygon.ID, "error", err)
		}
		s.metrics.IncSelection("error")
		return nil, err
	}

	s.metrics.IncSelection("selected")
	if result.HasSuggestion() {
		s.metrics.IncNameSuggestion(string(result.Source))
	}
	s.logger.Info("polygon selected",
		"polygon", polygon.ID,
		"name", result.Name,
		"source", result.Source,
	)
	return result, nil
}

// suggest infers a name: interpolation first, then the nearest neighbour's
// name, otherwise none.
func (s *SelectionService) suggest(ctx context.Context, polygon *domain.Polygon, click domain.GeoPoint) (string, domain.NameSource, error) {
	level, ok := s.levels.CurrentLevel()
	if !ok {
		return "", domain.SourceNone, nil
	}

	point := s.searchPoint(polygon, click)

	name, err := s.interpolator.Interpolate(ctx, polygon, point, level, s.maxRadius)
	if err == nil {
		return name, domain.SourceInterpolated, nil
	}
	if !domain.IsRecoverable(err) {
		return "", "", err
	}
	s.logger.Debug("interpolation failed", "polygon", polygon.ID, "reason", err)

	nearest, err := s.search.FindNearest(ctx, point, polygon, level, s.maxRadius)
	if err == nil {
		return nearest.Name(), domain.SourceNearest, nil
	}
	if !domain.IsRecoverable(err) {
		return "", "", err
	}
	return "", domain.SourceNone, nil
}

// searchPoint is the polygon's centroid, or the click when the polygon has
// no valid centroid.
func (s *SelectionService) searchPoint(polygon *domain.Polygon, click domain.GeoPoint) domain.GeoPoint {
	c, err := planarCentroid(s.projector, polygon)
	if err != nil {
		return click
	}
	g, err := s.projector.ToGeodetic(c)
	if err != nil {
		return click
	}
	return g
}

// openEditor makes sure the polygon has a name tag, then opens the tag
// editor on it with the name field focused and prefilled.
func (s *SelectionService) openEditor(ctx context.Context, polygon *domain.Polygon, result *domain.SelectionResult) error {
	if !polygon.HasTag(domain.TagName) {
		if err := revalidate(ctx, s.store, polygon.Stamp()); err != nil {
			return err
		}
		cmd := domain.SetTag{IDs: []int64{polygon.ID}, Key: domain.TagName, Value: ""}
		if err := s.host.Commands.Submit(ctx, cmd); err != nil {
			return err
		}
	}

	if err := s.host.Editor.Open(ctx, polygon.ID); err != nil {
		return err
	}
	if err := s.host.Editor.FocusField(ctx, domain.TagName); err != nil {
		return err
	}
	if result.HasSuggestion() {
		return s.host.Editor.SetValue(ctx, domain.TagName, result.Name)
	}
	return nil
}
