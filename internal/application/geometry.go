package application

import (
	"context"
	"fmt"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/output"
	"github.com/jobrunner/mapassist/internal/spatial"
)

// projectNodes projects every node or fails on the first one that cannot
// be projected.
func projectNodes(projector output.Projector, nodes []domain.GeoPoint) ([]domain.PlanarPoint, error) {
	out := make([]domain.PlanarPoint, len(nodes))
	for i, n := range nodes {
		p, err := projector.ToPlanar(n)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// planarCentroid returns the projected area centroid of a polygon.
func planarCentroid(projector output.Projector, p *domain.Polygon) (domain.PlanarPoint, error) {
	ring, err := projectNodes(projector, p.Nodes)
	if err != nil {
		return domain.PlanarPoint{}, err
	}
	return spatial.Centroid(ring)
}

// geodeticExtent converts planar points back and returns their geodetic
// bounding box.
func geodeticExtent(projector output.Projector, points ...domain.PlanarPoint) (domain.Extent, error) {
	e := domain.EmptyExtent()
	for _, p := range points {
		g, err := projector.ToGeodetic(p)
		if err != nil {
			return domain.Extent{}, err
		}
		e = e.Extend(g.Lon, g.Lat)
	}
	return e, nil
}

// revalidate checks that each polygon still exists at the version it was
// read at.
func revalidate(ctx context.Context, store output.FeatureStore, stamps ...domain.Stamp) error {
	for _, st := range stamps {
		current, err := store.Get(ctx, st.ID)
		if err != nil {
			return err
		}
		if current.Version != st.Version {
			return fmt.Errorf("polygon %d at version %d, expected %d: %w",
				st.ID, current.Version, st.Version, domain.ErrFeatureModified)
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// loadPolygons fetches polygons by ID, failing if any has vanished.
func loadPolygons(ctx context.Context, store output.FeatureStore, ids []int64) ([]*domain.Polygon, error) {
	out := make([]*domain.Polygon, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		p, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func stamps(polygons []*domain.Polygon) []domain.Stamp {
	out := make([]domain.Stamp, len(polygons))
	for i, p := range polygons {
		out[i] = p.Stamp()
	}
	return out
}

func polygonIDs(polygons []*domain.Polygon) []int64 {
	out := make([]int64, len(polygons))
	for i, p := range polygons {
		out[i] = p.ID
	}
	return out
}
