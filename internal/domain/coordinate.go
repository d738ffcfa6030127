// Package domain contains the core entities and value objects of the assist engine.
package domain

import (
	"fmt"
	"math"
)

// GeoPoint is a geodetic coordinate in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Validate checks that the point is finite and inside the WGS84 ranges.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return &ValidationError{
			Field:      "latitude",
			Value:      p.Lat,
			Constraint: "[-90, 90]",
			Message:    "latitude must be between -90 and 90",
		}
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return &ValidationError{
			Field:      "longitude",
			Value:      p.Lon,
			Constraint: "[-180, 180]",
			Message:    "longitude must be between -180 and 180",
		}
	}
	return nil
}

// IsValid reports whether Validate succeeds.
func (p GeoPoint) IsValid() bool {
	return p.Validate() == nil
}

// String returns a string representation of the point.
func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.7f, %.7f)", p.Lat, p.Lon)
}

// PlanarPoint is a projected coordinate in projection units.
type PlanarPoint struct {
	East  float64
	North float64
}

// Sub returns p - q.
func (p PlanarPoint) Sub(q PlanarPoint) PlanarPoint {
	return PlanarPoint{East: p.East - q.East, North: p.North - q.North}
}

// Add returns p + q.
func (p PlanarPoint) Add(q PlanarPoint) PlanarPoint {
	return PlanarPoint{East: p.East + q.East, North: p.North + q.North}
}

// Scale returns p multiplied by f.
func (p PlanarPoint) Scale(f float64) PlanarPoint {
	return PlanarPoint{East: p.East * f, North: p.North * f}
}

// Dot returns the dot product of p and q.
func (p PlanarPoint) Dot(q PlanarPoint) float64 {
	return p.East*q.East + p.North*q.North
}

// Len returns the euclidean length of p.
func (p PlanarPoint) Len() float64 {
	return math.Hypot(p.East, p.North)
}

// IsFinite reports whether both components are finite.
func (p PlanarPoint) IsFinite() bool {
	return !math.IsNaN(p.East) && !math.IsInf(p.East, 0) &&
		!math.IsNaN(p.North) && !math.IsInf(p.North, 0)
}

// String returns a string representation of the point.
func (p PlanarPoint) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.East, p.North)
}

// Extent represents an axis-aligned bounding box. X is longitude or easting,
// Y is latitude or northing.
type Extent struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// EmptyExtent returns an extent that contains nothing and grows with Extend.
func EmptyExtent() Extent {
	return Extent{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// GeoExtent returns the extent covering the given geodetic points.
func GeoExtent(points ...GeoPoint) Extent {
	e := EmptyExtent()
	for _, p := range points {
		e = e.Extend(p.Lon, p.Lat)
	}
	return e
}

// PlanarExtent returns the extent covering the given planar points.
func PlanarExtent(points ...PlanarPoint) Extent {
	e := EmptyExtent()
	for _, p := range points {
		e = e.Extend(p.East, p.North)
	}
	return e
}

// Extend returns the extent grown to include (x, y).
func (e Extent) Extend(x, y float64) Extent {
	e.MinX = math.Min(e.MinX, x)
	e.MinY = math.Min(e.MinY, y)
	e.MaxX = math.Max(e.MaxX, x)
	e.MaxY = math.Max(e.MaxY, y)
	return e
}

// Contains checks if (x, y) is within the extent, edges included.
func (e Extent) Contains(x, y float64) bool {
	return x >= e.MinX && x <= e.MaxX && y >= e.MinY && y <= e.MaxY
}

// Intersects checks if the two extents overlap, touching edges included.
func (e Extent) Intersects(o Extent) bool {
	return e.MinX <= o.MaxX && e.MaxX >= o.MinX && e.MinY <= o.MaxY && e.MaxY >= o.MinY
}

// IsValid checks if the extent has valid dimensions.
func (e Extent) IsValid() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

// Width returns the width of the extent.
func (e Extent) Width() float64 {
	return math.Abs(e.MaxX - e.MinX)
}

// Height returns the height of the extent.
func (e Extent) Height() float64 {
	return math.Abs(e.MaxY - e.MinY)
}

// Area returns width times height, or +Inf for an invalid extent.
func (e Extent) Area() float64 {
	if !e.IsValid() {
		return math.Inf(1)
	}
	return e.Width() * e.Height()
}

// Center returns the center of the extent as (x, y).
func (e Extent) Center() (float64, float64) {
	return (e.MinX + e.MaxX) / 2, (e.MinY + e.MaxY) / 2
}
