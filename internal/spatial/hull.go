package spatial

import (
	"math"
	"sort"

	"github.com/jobrunner/mapassist/internal/domain"
)

const angleEpsilon = 1e-10

// ConvexHull returns the convex hull of points in counter-clockwise order
// using a Graham sweep. Collinear points on the hull boundary are dropped,
// so collinear input yields fewer than three points.
func ConvexHull(points []domain.PlanarPoint) []domain.PlanarPoint {
	if len(points) == 0 {
		return nil
	}

	anchor := 0
	for i, p := range points {
		a := points[anchor]
		if p.North < a.North || (p.North == a.North && p.East < a.East) {
			anchor = i
		}
	}
	origin := points[anchor]

	rest := make([]domain.PlanarPoint, 0, len(points)-1)
	rest = append(rest, points[:anchor]...)
	rest = append(rest, points[anchor+1:]...)

	angle := func(p domain.PlanarPoint) float64 {
		return math.Atan2(p.North-origin.North, p.East-origin.East)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		ai, aj := angle(rest[i]), angle(rest[j])
		if math.Abs(ai-aj) < angleEpsilon {
			return rest[i].Sub(origin).Len() < rest[j].Sub(origin).Len()
		}
		return ai < aj
	})

	hull := []domain.PlanarPoint{origin}
	for _, p := range rest {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull
}

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c domain.PlanarPoint) float64 {
	return (b.East-a.East)*(c.North-a.North) - (b.North-a.North)*(c.East-a.East)
}
