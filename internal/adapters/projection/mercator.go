// Package projection provides the Projector and Geodesy ports on top of
// orb's spherical Web Mercator and great-circle helpers.
package projection

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/project"

	"github.com/jobrunner/mapassist/internal/domain"
)

// MaxLatitude is the latitude limit of the Web Mercator projection.
const MaxLatitude = 85.05112878

// Mercator implements output.Projector with spherical Web Mercator.
// Planar units are Mercator meters, which are true meters only at the
// equator; MetersPerUnit scales them at the reference latitude.
type Mercator struct {
	metersPerUnit float64
}

// NewMercator creates a projector whose metric scale is taken at refLat.
func NewMercator(refLat float64) *Mercator {
	if math.Abs(refLat) > MaxLatitude {
		refLat = math.Copysign(MaxLatitude, refLat)
	}
	return &Mercator{metersPerUnit: math.Cos(refLat * math.Pi / 180)}
}

// ToPlanar implements output.Projector.
func (m *Mercator) ToPlanar(p domain.GeoPoint) (domain.PlanarPoint, error) {
	if err := p.Validate(); err != nil {
		return domain.PlanarPoint{}, &domain.ProjectionError{Op: "to_planar", Point: p.String(), Err: err}
	}
	if math.Abs(p.Lat) > MaxLatitude {
		return domain.PlanarPoint{}, &domain.ProjectionError{Op: "to_planar", Point: p.String()}
	}
	q := project.WGS84.ToMercator(orb.Point{p.Lon, p.Lat})
	return domain.PlanarPoint{East: q[0], North: q[1]}, nil
}

// ToGeodetic implements output.Projector.
func (m *Mercator) ToGeodetic(p domain.PlanarPoint) (domain.GeoPoint, error) {
	if !p.IsFinite() {
		return domain.GeoPoint{}, &domain.ProjectionError{Op: "to_geodetic", Point: p.String()}
	}
	q := project.Mercator.ToWGS84(orb.Point{p.East, p.North})
	g := domain.GeoPoint{Lat: q[1], Lon: q[0]}
	if err := g.Validate(); err != nil {
		return domain.GeoPoint{}, &domain.ProjectionError{Op: "to_geodetic", Point: p.String(), Err: err}
	}
	return g, nil
}

// MetersPerUnit implements output.Projector.
func (m *Mercator) MetersPerUnit() float64 {
	return m.metersPerUnit
}

// Sphere implements output.Geodesy on a sphere of orb.EarthRadius.
type Sphere struct{}

// Distance implements output.Geodesy.
func (Sphere) Distance(a, b domain.GeoPoint) float64 {
	return geo.Distance(orbPoint(a), orbPoint(b))
}

// Bearing implements output.Geodesy.
func (Sphere) Bearing(a, b domain.GeoPoint) float64 {
	return geo.Bearing(orbPoint(a), orbPoint(b)) * math.Pi / 180
}

// Destination implements output.Geodesy.
func (Sphere) Destination(origin domain.GeoPoint, bearing, meters float64) domain.GeoPoint {
	q := geo.PointAtBearingAndDistance(orbPoint(origin), bearing*180/math.Pi, meters)
	return domain.GeoPoint{Lat: q[1], Lon: q[0]}
}

func orbPoint(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
