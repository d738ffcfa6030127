package naming

import (
	"fmt"

	"github.com/jobrunner/mapassist/internal/domain"
)

// Position is where a target lies relative to the segment between two
// neighbours.
type Position int

// Positions along the neighbour segment.
const (
	Before Position = iota
	Between
	After
)

// String returns the position name.
func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case Between:
		return "between"
	default:
		return "after"
	}
}

// PositionOf classifies the projection parameter t of a target onto the
// segment from the lower- to the higher-numbered neighbour.
func PositionOf(t float64) Position {
	switch {
	case t < 0:
		return Before
	case t > 1:
		return After
	default:
		return Between
	}
}

// Placement describes the target relative to neighbours a and b.
type Placement struct {
	Position  Position
	Offset    float64 // Perpendicular distance from the a→b line
	SegLength float64 // Distance between a and b
}

// DefaultCollinearTolerance is the largest perpendicular offset, as a
// fraction of the neighbour distance, at which a target still counts as
// lying on the line between two neighbours.
const DefaultCollinearTolerance = 0.1

// Next decides the name for a target given two neighbour names and its
// placement along the a→b segment. Prefixes must match. A gap of two is filled
// only between collinear neighbours. A gap of one extends the sequence
// outward. Anything else is rejected.
func Next(a, b Parts, at Placement, tolerance float64) (string, error) {
	if a.Prefix != b.Prefix {
		return "", fmt.Errorf("%q vs %q: %w", a.Prefix, b.Prefix, domain.ErrPrefixMismatch)
	}
	if a.Number > b.Number {
		a, b = b, a
		switch at.Position {
		case Before:
			at.Position = After
		case After:
			at.Position = Before
		}
	}
	if tolerance <= 0 {
		tolerance = DefaultCollinearTolerance
	}

	out := Parts{Prefix: a.Prefix, Padding: max(a.Padding, b.Padding)}

	switch b.Number - a.Number {
	case 2:
		if at.Position != Between {
			return "", fmt.Errorf("target %s %s and %s: %w", at.Position, a, b, domain.ErrSpatialOrder)
		}
		if at.Offset > tolerance*at.SegLength {
			return "", fmt.Errorf("target %.2f off the line %s-%s: %w", at.Offset, a, b, domain.ErrSpatialOrder)
		}
		out.Number = (a.Number + b.Number) / 2
	case 1:
		switch at.Position {
		case Before:
			if a.Number-1 <= 0 {
				return "", fmt.Errorf("no number below %s: %w", a, domain.ErrSpatialOrder)
			}
			out.Number = a.Number - 1
		case After:
			out.Number = b.Number + 1
		default:
			return "", fmt.Errorf("no number between %s and %s: %w", a, b, domain.ErrSpatialOrder)
		}
	default:
		return "", fmt.Errorf("gap %d between %s and %s: %w", b.Number-a.Number, a, b, domain.ErrUnsupportedGap)
	}

	return out.Format(), nil
}
