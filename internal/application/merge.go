package application

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/input"
	"github.com/jobrunner/mapassist/internal/ports/output"
	"github.com/jobrunner/mapassist/internal/spatial"
)

// MergeService replaces a group of polygons with the minimum-area rectangle
// enclosing all their nodes.
type MergeService struct {
	store     output.FeatureStore
	projector output.Projector
	commands  output.CommandLog
	metrics   output.MetricsCollector
	logger    *slog.Logger
	minPoints int
}

// MergeServiceConfig holds configuration for the merge service.
type MergeServiceConfig struct {
	MinPoints int
}

var _ input.MergeService = (*MergeService)(nil)

// NewMergeService creates a new merge service.
func NewMergeService(
	store output.FeatureStore,
	projector output.Projector,
	commands output.CommandLog,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg MergeServiceConfig,
) *MergeService {
	if cfg.MinPoints <= 0 {
		cfg.MinPoints = spatial.DefaultMinPoints
	}

	return &MergeService{
		store:     store,
		projector: projector,
		commands:  commands,
		metrics:   metrics,
		logger:    logger,
		minPoints: cfg.MinPoints,
	}
}

// Combine implements input.MergeService. The new rectangle carries the tags
// of the first named source, or of the first source when none is named. The
// addition and all deletions are submitted as one command.
func (s *MergeService) Combine(ctx context.Context, ids []int64) (*domain.Polygon, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("combine", time.Since(start)) }()

	if len(ids) == 0 {
		return nil, fmt.Errorf("nothing selected: %w", domain.ErrInputInvalid)
	}

	sources, err := loadPolygons(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	nodes := uniqueNodes(sources)
	if len(nodes) < s.minPoints {
		return nil, fmt.Errorf("%d distinct nodes, need %d: %w", len(nodes), s.minPoints, domain.ErrTooFewPoints)
	}

	planar, err := projectNodes(s.projector, nodes)
	if err != nil {
		return nil, err
	}

	rect, err := spatial.FitRectangle(planar, s.minPoints)
	if err != nil {
		return nil, err
	}

	corners := make([]domain.GeoPoint, 0, 5)
	for _, c := range rect.Ring() {
		g, err := s.projector.ToGeodetic(c)
		if err != nil {
			return nil, err
		}
		corners = append(corners, g)
	}

	reference := sources[0]
	for _, p := range sources {
		if p.IsNamed() {
			reference = p
			break
		}
	}

	merged := &domain.Polygon{
		Nodes: corners,
		Tags:  maps.Clone(reference.Tags),
		Area:  true,
	}
	if merged.Tags == nil {
		merged.Tags = make(map[string]string)
	}

	if err := revalidate(ctx, s.store, stamps(sources)...); err != nil {
		s.logger.Warn("combine aborted", "polygons", ids, "error", err)
		return nil, err
	}

	cmd := domain.Sequence{
		Name: fmt.Sprintf("Combine %d ways to rectangle", len(sources)),
		Commands: []domain.Command{
			domain.AddFeature{Polygon: merged},
			domain.DeleteFeatures{IDs: polygonIDs(sources)},
		},
	}
	if err := s.commands.Submit(ctx, cmd); err != nil {
		return nil, err
	}

	s.logger.Info("polygons combined",
		"sources", polygonIDs(sources),
		"nodes", len(nodes),
		"axis_aligned", rect.AxisAligned,
	)
	return merged, nil
}

// uniqueNodes pools the valid nodes of all polygons, first occurrence wins.
func uniqueNodes(polygons []*domain.Polygon) []domain.GeoPoint {
	seen := make(map[domain.GeoPoint]bool)
	var out []domain.GeoPoint
	for _, p := range polygons {
		for _, n := range p.Nodes {
			if seen[n] || !n.IsValid() {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
