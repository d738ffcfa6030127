package application

import (
	"log/slog"
	"sort"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/output"
	"github.com/jobrunner/mapassist/internal/spatial"
)

// PolygonSelector resolves which polygon a click refers to.
type PolygonSelector struct {
	projector output.Projector
	logger    *slog.Logger
}

// NewPolygonSelector creates a new selector.
func NewPolygonSelector(projector output.Projector, logger *slog.Logger) *PolygonSelector {
	return &PolygonSelector{projector: projector, logger: logger}
}

// Select returns the closed area polygon containing point. When several
// contain it, the one with the smallest bounding box wins and remaining
// ties go to the earliest candidate.
func (s *PolygonSelector) Select(point domain.GeoPoint, candidates []*domain.Polygon) (*domain.Polygon, error) {
	click, err := s.projector.ToPlanar(point)
	if err != nil {
		return nil, err
	}

	type hit struct {
		polygon *domain.Polygon
		area    float64
	}
	var hits []hit

	for _, p := range candidates {
		if !p.IsSelectable() {
			continue
		}
		ring, err := projectNodes(s.projector, p.Nodes)
		if err != nil {
			s.logger.Debug("skipping unprojectable candidate", "polygon", p.ID, "error", err)
			continue
		}
		if !spatial.Contains(ring, click) {
			continue
		}
		hits = append(hits, hit{polygon: p, area: spatial.EnvelopeArea(ring)})
	}

	if len(hits) == 0 {
		return nil, domain.ErrNoContainingPolygon
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].area < hits[j].area })
	s.logger.Debug("polygon selected", "polygon", hits[0].polygon.ID, "containing", len(hits))
	return hits[0].polygon, nil
}
