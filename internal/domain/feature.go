package domain

import "maps"

// Well-known tag keys.
const (
	TagName     = "name"
	TagLevel    = "level"
	TagVerified = "verified"
	TagArea     = "area"
)

// Polygon is a feature whose boundary is an ordered list of nodes. A closed
// polygon repeats its first node at the end.
type Polygon struct {
	ID      int64             // Store identifier, 0 until stored
	Nodes   []GeoPoint        // Boundary nodes
	Tags    map[string]string // Attribute data
	Area    bool              // Whether the feature denotes an area rather than a line
	Version int64             // Bumped by the store on every change
}

// Closed returns true if the boundary ends where it starts.
func (p *Polygon) Closed() bool {
	n := len(p.Nodes)
	return n >= 2 && p.Nodes[0] == p.Nodes[n-1]
}

// IsSelectable reports whether the polygon takes part in click selection.
func (p *Polygon) IsSelectable() bool {
	return p.Area && p.Closed()
}

// Tag returns a tag value by key.
func (p *Polygon) Tag(key string) (string, bool) {
	if p.Tags == nil {
		return "", false
	}
	v, ok := p.Tags[key]
	return v, ok
}

// HasTag reports whether the tag key is present, even with an empty value.
func (p *Polygon) HasTag(key string) bool {
	_, ok := p.Tag(key)
	return ok
}

// Name returns the name tag or the empty string.
func (p *Polygon) Name() string {
	v, _ := p.Tag(TagName)
	return v
}

// IsNamed reports whether the polygon carries a non-empty name.
func (p *Polygon) IsNamed() bool {
	return p.Name() != ""
}

// Level returns the level tag. Missing and empty values report false.
func (p *Polygon) Level() (string, bool) {
	v, ok := p.Tag(TagLevel)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// OnLevel reports whether the level tag equals level exactly.
func (p *Polygon) OnLevel(level string) bool {
	v, ok := p.Level()
	return ok && level != "" && v == level
}

// Ring returns the boundary nodes without the closing repeat.
func (p *Polygon) Ring() []GeoPoint {
	if p.Closed() {
		return p.Nodes[:len(p.Nodes)-1]
	}
	return p.Nodes
}

// Extent returns the geodetic bounding box of the polygon.
func (p *Polygon) Extent() Extent {
	return GeoExtent(p.Nodes...)
}

// Clone returns a deep copy of the polygon.
func (p *Polygon) Clone() *Polygon {
	c := *p
	c.Nodes = append([]GeoPoint(nil), p.Nodes...)
	c.Tags = maps.Clone(p.Tags)
	return &c
}

// Stamp identifies a polygon at a specific version.
type Stamp struct {
	ID      int64
	Version int64
}

// Stamp returns the polygon's identity at its current version.
func (p *Polygon) Stamp() Stamp {
	return Stamp{ID: p.ID, Version: p.Version}
}
