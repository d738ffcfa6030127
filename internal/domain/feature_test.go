package domain

import "testing"

func square() *Polygon {
	return &Polygon{
		ID: 1,
		Nodes: []GeoPoint{
			{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}, {Lat: 0, Lon: 0},
		},
		Tags: map[string]string{"amenity": "parking_space", "level": "1"},
		Area: true,
	}
}

func TestPolygonClosed(t *testing.T) {
	p := square()
	if !p.Closed() || !p.IsSelectable() {
		t.Error("square should be closed and selectable")
	}
	if len(p.Ring()) != 4 {
		t.Errorf("len(Ring) = %d, want 4", len(p.Ring()))
	}

	open := square()
	open.Nodes = open.Nodes[:4]
	if open.Closed() {
		t.Error("open way should not be closed")
	}
	if len(open.Ring()) != 4 {
		t.Errorf("len(Ring) of open way = %d, want 4", len(open.Ring()))
	}

	line := square()
	line.Area = false
	if line.IsSelectable() {
		t.Error("non-area polygon should not be selectable")
	}
}

func TestPolygonTags(t *testing.T) {
	p := square()

	if p.IsNamed() || p.HasTag(TagName) {
		t.Error("polygon should have no name")
	}
	if lvl, ok := p.Level(); !ok || lvl != "1" {
		t.Errorf("Level() = %q, %v", lvl, ok)
	}
	if !p.OnLevel("1") || p.OnLevel("1.0") || p.OnLevel("") {
		t.Error("OnLevel should use exact string equality")
	}

	p.Tags[TagName] = ""
	if !p.HasTag(TagName) || p.IsNamed() {
		t.Error("empty name tag is present but unnamed")
	}

	p.Tags[TagLevel] = ""
	if _, ok := p.Level(); ok {
		t.Error("empty level should report false")
	}

	var bare Polygon
	if _, ok := bare.Tag("x"); ok {
		t.Error("nil tags should report missing")
	}
}

func TestPolygonClone(t *testing.T) {
	p := square()
	c := p.Clone()
	c.Tags["name"] = "A1"
	c.Nodes[0].Lat = 5

	if p.IsNamed() {
		t.Error("clone must not share tags")
	}
	if p.Nodes[0].Lat != 0 {
		t.Error("clone must not share nodes")
	}
}

func TestFlatten(t *testing.T) {
	cmd := Sequence{
		Name: "outer",
		Commands: []Command{
			SetTag{IDs: []int64{1}, Key: "a", Value: "b"},
			Sequence{Commands: []Command{DeleteFeatures{IDs: []int64{2}}, AddFeature{Polygon: square()}}},
		},
	}

	leaves := Flatten(cmd)
	if len(leaves) != 3 {
		t.Fatalf("len(Flatten) = %d, want 3", len(leaves))
	}
	want := []CommandKind{KindSetTag, KindDeleteFeatures, KindAddFeature}
	for i, k := range want {
		if leaves[i].Kind() != k {
			t.Errorf("leaf %d kind = %s, want %s", i, leaves[i].Kind(), k)
		}
	}
	if cmd.Describe() != "outer" {
		t.Errorf("Describe = %q", cmd.Describe())
	}
}

func TestSearchCorridorContains(t *testing.T) {
	c := SearchCorridor{
		Center:     PlanarPoint{East: 10, North: 10},
		WidthDir:   PlanarPoint{East: 1, North: 0},
		LengthDir:  PlanarPoint{East: 0, North: 1},
		HalfWidth:  8,
		HalfLength: 2,
	}

	tests := []struct {
		p    PlanarPoint
		want bool
	}{
		{PlanarPoint{East: 10, North: 10}, true},
		{PlanarPoint{East: 18, North: 12}, true},
		{PlanarPoint{East: 18.1, North: 10}, false},
		{PlanarPoint{East: 10, North: 12.5}, false},
	}
	for _, tt := range tests {
		if got := c.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	for _, corner := range c.Corners() {
		if !c.Contains(corner) {
			t.Errorf("corner %v should be inside", corner)
		}
	}
}

func TestParseEditorMode(t *testing.T) {
	for _, m := range []EditorMode{ModeOther, ModeSelect, ModeDraw} {
		if got := ParseEditorMode(m.String()); got != m {
			t.Errorf("ParseEditorMode(%q) = %v", m.String(), got)
		}
	}
}
