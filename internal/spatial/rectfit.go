package spatial

import (
	"fmt"
	"math"

	"github.com/jobrunner/mapassist/internal/domain"
)

// DefaultMinPoints is the fewest points FitRectangle accepts by default.
const DefaultMinPoints = 3

// Rectangle is a fitted quadrilateral.
type Rectangle struct {
	Corners     [4]domain.PlanarPoint
	AxisAligned bool // Set when the fit fell back to the bounding box
}

// Ring returns the corners as a closed ring.
func (r Rectangle) Ring() []domain.PlanarPoint {
	return []domain.PlanarPoint{r.Corners[0], r.Corners[1], r.Corners[2], r.Corners[3], r.Corners[0]}
}

// Area returns the area enclosed by the rectangle.
func (r Rectangle) Area() float64 {
	return r.Corners[1].Sub(r.Corners[0]).Len() * r.Corners[2].Sub(r.Corners[1]).Len()
}

// FitRectangle finds the minimum-area rectangle enclosing points with the
// rotating calipers method over their convex hull. Degenerate input falls
// back to the axis-aligned bounding box.
func FitRectangle(points []domain.PlanarPoint, minPoints int) (Rectangle, error) {
	if minPoints <= 0 {
		minPoints = DefaultMinPoints
	}
	if len(points) < minPoints {
		return Rectangle{}, fmt.Errorf("rectangle fit needs %d points, got %d: %w", minPoints, len(points), domain.ErrTooFewPoints)
	}

	hull := ConvexHull(points)
	if len(hull) < 3 {
		return boundingRectangle(points), nil
	}

	best := Rectangle{}
	bestArea := math.Inf(1)
	for i := range hull {
		p1, p2 := hull[i], hull[(i+1)%len(hull)]
		edge := p2.Sub(p1)
		l := edge.Len()
		if l < angleEpsilon {
			continue
		}
		u := edge.Scale(1 / l)
		v := domain.PlanarPoint{East: -u.North, North: u.East}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, q := range hull {
			d := q.Sub(p1)
			pu, pv := d.Dot(u), d.Dot(v)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			at := func(a, b float64) domain.PlanarPoint {
				return p1.Add(u.Scale(a)).Add(v.Scale(b))
			}
			best = Rectangle{Corners: [4]domain.PlanarPoint{
				at(minU, minV), at(maxU, minV), at(maxU, maxV), at(minU, maxV),
			}}
		}
	}

	if math.IsInf(bestArea, 1) {
		return boundingRectangle(points), nil
	}
	return best, nil
}

func boundingRectangle(points []domain.PlanarPoint) Rectangle {
	e := domain.PlanarExtent(points...)
	return Rectangle{
		Corners: [4]domain.PlanarPoint{
			{East: e.MinX, North: e.MinY},
			{East: e.MaxX, North: e.MinY},
			{East: e.MaxX, North: e.MaxY},
			{East: e.MinX, North: e.MaxY},
		},
		AxisAligned: true,
	}
}
