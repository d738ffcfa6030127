package domain

// EditorMode is the interaction mode the host editor is in.
type EditorMode int

// Editor modes.
const (
	ModeOther EditorMode = iota
	ModeSelect
	ModeDraw
)

// String returns the mode name.
func (m EditorMode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModeDraw:
		return "draw"
	default:
		return "other"
	}
}

// ParseEditorMode converts a mode name to an EditorMode. Unknown names map
// to ModeOther.
func ParseEditorMode(s string) EditorMode {
	switch s {
	case "select":
		return ModeSelect
	case "draw":
		return ModeDraw
	default:
		return ModeOther
	}
}

// NameSource tells where a suggested name came from.
type NameSource string

// Name sources.
const (
	SourceExisting     NameSource = "existing"
	SourceInterpolated NameSource = "interpolated"
	SourceNearest      NameSource = "nearest"
	SourceNone         NameSource = "none"
)

// SelectionResult is the outcome of a click in select mode.
type SelectionResult struct {
	Polygon *Polygon   // Selected polygon
	Name    string     // Suggested or existing name, may be empty
	Source  NameSource // Origin of Name
}

// HasSuggestion reports whether a new name was inferred for the polygon.
func (r *SelectionResult) HasSuggestion() bool {
	return r.Source == SourceInterpolated || r.Source == SourceNearest
}

// Candidate is a named neighbour found by a neighbour search.
type Candidate struct {
	Polygon  *Polygon
	Distance float64 // Meters from the search point to the polygon boundary
}

// OrientedBox is the principal-axis description of a roughly rectangular
// polygon. Width never exceeds Length.
type OrientedBox struct {
	Center    PlanarPoint
	WidthDir  PlanarPoint // Unit vector
	LengthDir PlanarPoint // Unit vector
	Width     float64
	Length    float64
}

// SearchCorridor is an oriented rectangle used to find lateral neighbours.
type SearchCorridor struct {
	Center     PlanarPoint
	WidthDir   PlanarPoint
	LengthDir  PlanarPoint
	HalfWidth  float64
	HalfLength float64
}

// Contains reports whether p lies within the corridor, edges included.
func (c SearchCorridor) Contains(p PlanarPoint) bool {
	d := p.Sub(c.Center)
	return abs(d.Dot(c.WidthDir)) <= c.HalfWidth && abs(d.Dot(c.LengthDir)) <= c.HalfLength
}

// Corners returns the four corner points of the corridor.
func (c SearchCorridor) Corners() [4]PlanarPoint {
	w := c.WidthDir.Scale(c.HalfWidth)
	l := c.LengthDir.Scale(c.HalfLength)
	return [4]PlanarPoint{
		c.Center.Sub(w).Sub(l),
		c.Center.Add(w).Sub(l),
		c.Center.Add(w).Add(l),
		c.Center.Sub(w).Add(l),
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
