package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/jobrunner/mapassist/internal/domain"
)

// Ring converts planar points to an orb ring.
func Ring(points []domain.PlanarPoint) orb.Ring {
	r := make(orb.Ring, len(points))
	for i, p := range points {
		r[i] = orb.Point{p.East, p.North}
	}
	return r
}

// Open strips the closing repeat from a ring if present.
func Open(points []domain.PlanarPoint) []domain.PlanarPoint {
	n := len(points)
	if n >= 2 && points[0] == points[n-1] {
		return points[:n-1]
	}
	return points
}

// Close returns the ring with its first point repeated at the end.
func Close(points []domain.PlanarPoint) []domain.PlanarPoint {
	if len(points) == 0 {
		return nil
	}
	out := append([]domain.PlanarPoint(nil), Open(points)...)
	return append(out, out[0])
}

// Contains reports whether p lies inside the ring or on its boundary.
func Contains(ring []domain.PlanarPoint, p domain.PlanarPoint) bool {
	if len(ring) < 3 {
		return false
	}
	return planar.RingContains(Ring(ring), orb.Point{p.East, p.North})
}

// EnvelopeArea returns the area of the axis-aligned bounding box of the ring.
func EnvelopeArea(ring []domain.PlanarPoint) float64 {
	return domain.PlanarExtent(ring...).Area()
}

// Centroid returns the area centroid of the ring. It fails with
// domain.ErrInvalidCentroid when fewer than three distinct finite points
// are given or the enclosed area is zero.
func Centroid(ring []domain.PlanarPoint) (domain.PlanarPoint, error) {
	pts := Open(ring)
	if distinctFinite(pts) < 3 {
		return domain.PlanarPoint{}, domain.ErrInvalidCentroid
	}
	c, area := planar.CentroidArea(Ring(Close(pts)))
	p := domain.PlanarPoint{East: c[0], North: c[1]}
	if area == 0 || math.IsNaN(area) || !p.IsFinite() {
		return domain.PlanarPoint{}, domain.ErrInvalidCentroid
	}
	return p, nil
}

// DistanceToBoundary returns the shortest distance from p to any boundary
// segment of the ring, in planar units. The second result is false when the
// ring has fewer than two finite points.
func DistanceToBoundary(ring []domain.PlanarPoint, p domain.PlanarPoint) (float64, bool) {
	pts := Close(ring)
	if distinctFinite(pts) < 2 {
		return 0, false
	}
	d := planar.DistanceFrom(orb.LineString(Ring(pts)), orb.Point{p.East, p.North})
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

// ProjectOntoSegment returns the parameter t of p's orthogonal projection
// onto the line a→b (0 at a, 1 at b) and the perpendicular distance from p
// to that line. It fails when a and b coincide.
func ProjectOntoSegment(a, b, p domain.PlanarPoint) (t, perp float64, err error) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < 1e-18 {
		return 0, 0, domain.ErrDegenerateSegment
	}
	ap := p.Sub(a)
	t = ap.Dot(ab) / l2
	cross := ab.East*ap.North - ab.North*ap.East
	return t, math.Abs(cross) / math.Sqrt(l2), nil
}

func distinctFinite(points []domain.PlanarPoint) int {
	seen := make(map[domain.PlanarPoint]struct{}, len(points))
	for _, p := range points {
		if p.IsFinite() {
			seen[p] = struct{}{}
		}
	}
	return len(seen)
}
