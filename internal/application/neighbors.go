package application

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/output"
	"github.com/jobrunner/mapassist/internal/spatial"
)

// Neighbour search defaults.
const (
	DefaultMaxRadius            = 50.0
	DefaultCorridorWidthFactor  = 3.5
	DefaultCorridorLengthFactor = 0.5
)

// NeighborSearch finds named polygons near a point on the same level.
type NeighborSearch struct {
	store        output.FeatureStore
	projector    output.Projector
	geodesy      output.Geodesy
	logger       *slog.Logger
	widthFactor  float64
	lengthFactor float64
}

// NeighborSearchConfig holds configuration for the neighbour search.
type NeighborSearchConfig struct {
	CorridorWidthFactor  float64
	CorridorLengthFactor float64
}

// NewNeighborSearch creates a new neighbour search.
func NewNeighborSearch(
	store output.FeatureStore,
	projector output.Projector,
	geodesy output.Geodesy,
	logger *slog.Logger,
	cfg NeighborSearchConfig,
) *NeighborSearch {
	if cfg.CorridorWidthFactor <= 0 {
		cfg.CorridorWidthFactor = DefaultCorridorWidthFactor
	}
	if cfg.CorridorLengthFactor <= 0 {
		cfg.CorridorLengthFactor = DefaultCorridorLengthFactor
	}

	return &NeighborSearch{
		store:        store,
		projector:    projector,
		geodesy:      geodesy,
		logger:       logger,
		widthFactor:  cfg.CorridorWidthFactor,
		lengthFactor: cfg.CorridorLengthFactor,
	}
}

// FindCandidates returns named polygons on level near point, nearest
// first. Neighbours beside exclude, inside a corridor along its short axis,
// are preferred; when that yields fewer than need results a circular search
// of maxRadius meters replaces them. An empty level matches nothing.
func (s *NeighborSearch) FindCandidates(
	ctx context.Context,
	point domain.GeoPoint,
	exclude *domain.Polygon,
	level string,
	maxRadius float64,
	need int,
) ([]domain.Candidate, error) {
	if level == "" {
		return nil, nil
	}
	if maxRadius <= 0 {
		maxRadius = DefaultMaxRadius
	}

	origin, err := s.projector.ToPlanar(point)
	if err != nil {
		return nil, err
	}

	if exclude != nil {
		found, ok, err := s.lateral(ctx, point, origin, exclude, level)
		if err != nil {
			return nil, err
		}
		if ok && len(found) >= need {
			return found, nil
		}
		s.logger.Debug("corridor search insufficient", "polygon", exclude.ID, "found", len(found), "need", need)
	}

	return s.circular(ctx, point, origin, exclude, level, maxRadius)
}

// FindNearest returns the closest named polygon on level within maxRadius.
func (s *NeighborSearch) FindNearest(
	ctx context.Context,
	point domain.GeoPoint,
	exclude *domain.Polygon,
	level string,
	maxRadius float64,
) (*domain.Polygon, error) {
	found, err := s.FindCandidates(ctx, point, exclude, level, maxRadius, 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrNoNeighbors
	}
	return found[0].Polygon, nil
}

// lateral searches the corridor around exclude. The boolean result is false
// when exclude has no usable principal axes.
func (s *NeighborSearch) lateral(
	ctx context.Context,
	point domain.GeoPoint,
	origin domain.PlanarPoint,
	exclude *domain.Polygon,
	level string,
) ([]domain.Candidate, bool, error) {
	ring, err := projectNodes(s.projector, exclude.Nodes)
	if err != nil {
		return nil, false, nil
	}
	box, err := spatial.BuildOrientedBox(ring)
	if err != nil {
		s.logger.Debug("no oriented box", "polygon", exclude.ID, "error", err)
		return nil, false, nil
	}
	corridor := spatial.Corridor(box, s.widthFactor, s.lengthFactor)

	corners := corridor.Corners()
	extent, err := geodeticExtent(s.projector, corners[:]...)
	if err != nil {
		return nil, false, nil
	}

	polygons, err := s.store.QueryByExtent(ctx, extent)
	if err != nil {
		return nil, false, err
	}

	var out []domain.Candidate
	for _, p := range polygons {
		if !eligible(p, exclude, level) {
			continue
		}
		c, err := planarCentroid(s.projector, p)
		if err != nil || !corridor.Contains(c) {
			continue
		}
		out = append(out, domain.Candidate{Polygon: p, Distance: s.distance(point, origin, p)})
	}
	sortCandidates(out)
	return out, true, nil
}

func (s *NeighborSearch) circular(
	ctx context.Context,
	point domain.GeoPoint,
	origin domain.PlanarPoint,
	exclude *domain.Polygon,
	level string,
	maxRadius float64,
) ([]domain.Candidate, error) {
	r := maxRadius / s.projector.MetersPerUnit()
	extent, err := geodeticExtent(s.projector,
		domain.PlanarPoint{East: origin.East - r, North: origin.North - r},
		domain.PlanarPoint{East: origin.East + r, North: origin.North + r},
	)
	if err != nil {
		return nil, err
	}

	polygons, err := s.store.QueryByExtent(ctx, extent)
	if err != nil {
		return nil, err
	}

	var out []domain.Candidate
	for _, p := range polygons {
		if !eligible(p, exclude, level) {
			continue
		}
		d := s.distance(point, origin, p)
		if d <= maxRadius {
			out = append(out, domain.Candidate{Polygon: p, Distance: d})
		}
	}
	sortCandidates(out)
	return out, nil
}

// distance returns the meters from point to the boundary of p, falling back
// to the great-circle distance to its nearest node.
func (s *NeighborSearch) distance(point domain.GeoPoint, origin domain.PlanarPoint, p *domain.Polygon) float64 {
	if ring, err := projectNodes(s.projector, p.Nodes); err == nil {
		if d, ok := spatial.DistanceToBoundary(ring, origin); ok {
			return d * s.projector.MetersPerUnit()
		}
	}

	best := math.Inf(1)
	for _, n := range p.Nodes {
		if n.IsValid() {
			best = math.Min(best, s.geodesy.Distance(point, n))
		}
	}
	return best
}

func eligible(p, exclude *domain.Polygon, level string) bool {
	if exclude != nil && p.ID == exclude.ID {
		return false
	}
	return p.OnLevel(level) && p.IsNamed()
}

func sortCandidates(c []domain.Candidate) {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Distance < c[j].Distance })
}
