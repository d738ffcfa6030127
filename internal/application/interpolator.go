package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/naming"
	"github.com/jobrunner/mapassist/internal/ports/output"
	"github.com/jobrunner/mapassist/internal/spatial"
)

// NameInterpolator infers a name for an unnamed polygon from the numbering
// of its two nearest named neighbours.
type NameInterpolator struct {
	search    *NeighborSearch
	projector output.Projector
	logger    *slog.Logger
	tolerance float64
}

// NameInterpolatorConfig holds configuration for the interpolator.
type NameInterpolatorConfig struct {
	// CollinearTolerance is the largest offset from the neighbour line, as a
	// fraction of the neighbour distance, for filling a gap of two.
	CollinearTolerance float64
}

// NewNameInterpolator creates a new interpolator.
func NewNameInterpolator(
	search *NeighborSearch,
	projector output.Projector,
	logger *slog.Logger,
	cfg NameInterpolatorConfig,
) *NameInterpolator {
	if cfg.CollinearTolerance <= 0 {
		cfg.CollinearTolerance = naming.DefaultCollinearTolerance
	}

	return &NameInterpolator{
		search:    search,
		projector: projector,
		logger:    logger,
		tolerance: cfg.CollinearTolerance,
	}
}

// Interpolate returns a name for target located at targetPoint, or an
// error explaining why none follows from its neighbours.
func (n *NameInterpolator) Interpolate(
	ctx context.Context,
	target *domain.Polygon,
	targetPoint domain.GeoPoint,
	level string,
	maxRadius float64,
) (string, error) {
	found, err := n.search.FindCandidates(ctx, targetPoint, target, level, maxRadius, 2)
	if err != nil {
		return "", err
	}
	if len(found) < 2 {
		return "", fmt.Errorf("found %d: %w", len(found), domain.ErrNoNeighbors)
	}

	a, b := found[0].Polygon, found[1].Polygon
	pa, err := naming.Parse(a.Name())
	if err != nil {
		return "", err
	}
	pb, err := naming.Parse(b.Name())
	if err != nil {
		return "", err
	}
	if pa.Prefix != pb.Prefix {
		return "", fmt.Errorf("%q and %q: %w", a.Name(), b.Name(), domain.ErrPrefixMismatch)
	}
	if pa.Number > pb.Number {
		a, b = b, a
		pa, pb = pb, pa
	}

	at, err := n.placement(targetPoint, a, b)
	if err != nil {
		return "", err
	}

	name, err := naming.Next(pa, pb, at, n.tolerance)
	if err != nil {
		return "", err
	}

	n.logger.Debug("name interpolated",
		"polygon", target.ID,
		"name", name,
		"from", a.Name(),
		"to", b.Name(),
		"position", at.Position.String(),
	)
	return name, nil
}

// placement locates targetPoint relative to the centroids of a and b.
func (n *NameInterpolator) placement(targetPoint domain.GeoPoint, a, b *domain.Polygon) (naming.Placement, error) {
	t, err := n.projector.ToPlanar(targetPoint)
	if err != nil {
		return naming.Placement{}, err
	}
	ca, err := planarCentroid(n.projector, a)
	if err != nil {
		return naming.Placement{}, err
	}
	cb, err := planarCentroid(n.projector, b)
	if err != nil {
		return naming.Placement{}, err
	}

	param, offset, err := spatial.ProjectOntoSegment(ca, cb, t)
	if err != nil {
		return naming.Placement{}, err
	}
	return naming.Placement{
		Position:  naming.PositionOf(param),
		Offset:    offset,
		SegLength: cb.Sub(ca).Len(),
	}, nil
}
