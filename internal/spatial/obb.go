package spatial

import (
	"fmt"

	"github.com/jobrunner/mapassist/internal/domain"
)

// MinEdgeLength is the shortest edge the oriented box builder accepts.
const MinEdgeLength = 1e-9

// BuildOrientedBox derives the principal axes of a roughly rectangular
// ring from its first two edges. The shorter edge gives the width axis.
func BuildOrientedBox(ring []domain.PlanarPoint) (domain.OrientedBox, error) {
	pts := Open(ring)
	if len(pts) < 4 {
		return domain.OrientedBox{}, fmt.Errorf("oriented box needs 4 points, got %d: %w", len(pts), domain.ErrTooFewPoints)
	}

	center, err := Centroid(pts)
	if err != nil {
		return domain.OrientedBox{}, err
	}

	e1 := pts[1].Sub(pts[0])
	e2 := pts[2].Sub(pts[1])
	l1, l2 := e1.Len(), e2.Len()
	if l1 <= MinEdgeLength || l2 <= MinEdgeLength {
		return domain.OrientedBox{}, domain.ErrZeroLengthEdge
	}

	box := domain.OrientedBox{Center: center}
	if l1 <= l2 {
		box.Width, box.WidthDir = l1, e1.Scale(1/l1)
		box.Length, box.LengthDir = l2, e2.Scale(1/l2)
	} else {
		box.Width, box.WidthDir = l2, e2.Scale(1/l2)
		box.Length, box.LengthDir = l1, e1.Scale(1/l1)
	}
	return box, nil
}

// Corridor widens an oriented box into a lateral search corridor. The
// half-width is widthFactor times the box width and the half-length is
// lengthFactor times the box length.
func Corridor(box domain.OrientedBox, widthFactor, lengthFactor float64) domain.SearchCorridor {
	return domain.SearchCorridor{
		Center:     box.Center,
		WidthDir:   box.WidthDir,
		LengthDir:  box.LengthDir,
		HalfWidth:  widthFactor * box.Width,
		HalfLength: lengthFactor * box.Length,
	}
}
