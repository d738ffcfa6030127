// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"

	"github.com/jobrunner/mapassist/internal/domain"
)

// FeatureStore defines the secondary port for read access to the edited dataset.
// Returned polygons are copies; mutating them does not change the store.
type FeatureStore interface {
	// QueryByExtent returns polygons whose bounding box intersects the
	// geodetic extent (X = longitude, Y = latitude), ordered by ID.
	QueryByExtent(ctx context.Context, extent domain.Extent) ([]*domain.Polygon, error)

	// AllPolygons returns every polygon in the dataset, ordered by ID.
	AllPolygons(ctx context.Context) ([]*domain.Polygon, error)

	// Get returns a polygon by ID or domain.ErrFeatureVanished.
	Get(ctx context.Context, id int64) (*domain.Polygon, error)
}

// Applier applies commands to a dataset. A Sequence is applied entirely or
// not at all.
type Applier interface {
	Apply(ctx context.Context, cmd domain.Command) ([]int64, error)
}

// LevelSource provides the level the user is currently editing.
type LevelSource interface {
	// CurrentLevel returns the active level, or false when none is known.
	CurrentLevel() (string, bool)
}

// Projector converts between geodetic and planar coordinates.
type Projector interface {
	// ToPlanar projects a geodetic point.
	ToPlanar(p domain.GeoPoint) (domain.PlanarPoint, error)

	// ToGeodetic inverts ToPlanar.
	ToGeodetic(p domain.PlanarPoint) (domain.GeoPoint, error)

	// MetersPerUnit returns how many meters one planar unit spans.
	MetersPerUnit() float64
}

// Geodesy provides great-circle computations on the sphere.
type Geodesy interface {
	// Distance returns the great-circle distance in meters.
	Distance(a, b domain.GeoPoint) float64

	// Bearing returns the initial bearing from a to b in radians.
	Bearing(a, b domain.GeoPoint) float64

	// Destination returns the point reached from origin after travelling
	// meters along bearing (radians).
	Destination(origin domain.GeoPoint, bearing, meters float64) domain.GeoPoint
}
