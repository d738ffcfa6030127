package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

// unit converts meters to the degrees used by the flat test projection.
const unit = 1e5

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// rect builds a closed area polygon from its south-west corner and size in
// meters. The first edge runs east, so w is the width when w < h.
func rect(id int64, east, north, w, h float64, tags map[string]string) *domain.Polygon {
	g := func(e, n float64) domain.GeoPoint { return domain.GeoPoint{Lat: n / unit, Lon: e / unit} }
	if tags == nil {
		tags = map[string]string{}
	}
	return &domain.Polygon{
		ID: id,
		Nodes: []domain.GeoPoint{
			g(east, north), g(east+w, north), g(east+w, north+h), g(east, north+h), g(east, north),
		},
		Tags:    tags,
		Area:    true,
		Version: 1,
	}
}

// geo converts meters to a test GeoPoint.
func geo(east, north float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: north / unit, Lon: east / unit}
}

func named(name, level string) map[string]string {
	return map[string]string{"name": name, "level": level}
}

// mockStore implements output.FeatureStore and output.Applier in memory.
type mockStore struct {
	polygons map[int64]*domain.Polygon
	queryErr error
	nextID   int64
	onGet    func(id int64)
}

func newMockStore(polygons ...*domain.Polygon) *mockStore {
	m := &mockStore{polygons: make(map[int64]*domain.Polygon), nextID: 1000}
	for _, p := range polygons {
		m.polygons[p.ID] = p.Clone()
	}
	return m
}

func (m *mockStore) sorted() []*domain.Polygon {
	out := make([]*domain.Polygon, 0, len(m.polygons))
	for _, p := range m.polygons {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockStore) QueryByExtent(_ context.Context, extent domain.Extent) ([]*domain.Polygon, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []*domain.Polygon
	for _, p := range m.sorted() {
		if p.Extent().Intersects(extent) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) AllPolygons(_ context.Context) ([]*domain.Polygon, error) {
	return m.sorted(), nil
}

func (m *mockStore) Get(_ context.Context, id int64) (*domain.Polygon, error) {
	p, ok := m.polygons[id]
	if !ok {
		return nil, fmt.Errorf("polygon %d: %w", id, domain.ErrFeatureVanished)
	}
	out := p.Clone()
	if m.onGet != nil {
		m.onGet(id)
	}
	return out, nil
}

func (m *mockStore) Apply(_ context.Context, cmd domain.Command) ([]int64, error) {
	var created []int64
	for _, leaf := range domain.Flatten(cmd) {
		switch c := leaf.(type) {
		case domain.AddFeature:
			p := c.Polygon.Clone()
			p.ID, p.Version = m.nextID, 1
			m.nextID++
			m.polygons[p.ID] = p
			created = append(created, p.ID)
		case domain.DeleteFeatures:
			for _, id := range c.IDs {
				delete(m.polygons, id)
			}
		case domain.SetTag:
			for _, id := range c.IDs {
				p := m.polygons[id]
				if p.Tags == nil {
					p.Tags = make(map[string]string)
				}
				p.Tags[c.Key] = c.Value
				p.Version++
			}
		case domain.SetNodes:
			p := m.polygons[c.ID]
			p.Nodes = c.Nodes
			p.Version++
		}
	}
	return created, nil
}

// touch bumps a polygon's version as if another edit had happened.
func (m *mockStore) touch(id int64) {
	m.polygons[id].Version++
}

// flatProjector maps degrees to meters by scaling with unit.
type flatProjector struct {
	fail bool
}

func (p *flatProjector) ToPlanar(g domain.GeoPoint) (domain.PlanarPoint, error) {
	if p.fail || !g.IsValid() {
		return domain.PlanarPoint{}, &domain.ProjectionError{Op: "to_planar", Point: g.String()}
	}
	return domain.PlanarPoint{East: g.Lon * unit, North: g.Lat * unit}, nil
}

func (p *flatProjector) ToGeodetic(q domain.PlanarPoint) (domain.GeoPoint, error) {
	if p.fail || !q.IsFinite() {
		return domain.GeoPoint{}, &domain.ProjectionError{Op: "to_geodetic", Point: q.String()}
	}
	return domain.GeoPoint{Lat: q.North / unit, Lon: q.East / unit}, nil
}

func (p *flatProjector) MetersPerUnit() float64 { return 1 }

// flatGeodesy measures in the flat test plane.
type flatGeodesy struct{}

func (flatGeodesy) Distance(a, b domain.GeoPoint) float64 {
	return math.Hypot((b.Lon-a.Lon)*unit, (b.Lat-a.Lat)*unit)
}

func (flatGeodesy) Bearing(a, b domain.GeoPoint) float64 {
	return math.Atan2((b.Lon-a.Lon)*unit, (b.Lat-a.Lat)*unit)
}

func (flatGeodesy) Destination(o domain.GeoPoint, bearing, meters float64) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: o.Lat + math.Cos(bearing)*meters/unit,
		Lon: o.Lon + math.Sin(bearing)*meters/unit,
	}
}

// mockLevels implements output.LevelSource.
type mockLevels struct {
	level string
}

func (m *mockLevels) CurrentLevel() (string, bool) {
	return m.level, m.level != ""
}

// mockCommandLog records commands and applies them to a store.
type mockCommandLog struct {
	store     *mockStore
	submitted []domain.Command
	err       error
}

func (m *mockCommandLog) Submit(ctx context.Context, cmd domain.Command) error {
	if m.err != nil {
		return m.err
	}
	m.submitted = append(m.submitted, cmd)
	if m.store != nil {
		_, err := m.store.Apply(ctx, cmd)
		return err
	}
	return nil
}

// mockEditor implements output.TagEditor and output.Selection.
type mockEditor struct {
	opened   []int64
	focused  []string
	values   map[string]string
	selected   []int64
	err        error
	replaceErr error
}

func newMockEditor() *mockEditor {
	return &mockEditor{values: make(map[string]string)}
}

func (m *mockEditor) Open(_ context.Context, id int64) error {
	m.opened = append(m.opened, id)
	return m.err
}

func (m *mockEditor) FocusField(_ context.Context, key string) error {
	m.focused = append(m.focused, key)
	return nil
}

func (m *mockEditor) SetValue(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *mockEditor) Replace(_ context.Context, ids []int64) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.selected = append([]int64(nil), ids...)
	return nil
}

// deferredScheduler holds scheduled work until run is called.
type deferredScheduler struct {
	delays []time.Duration
	queued []func()
}

func (s *deferredScheduler) After(delay time.Duration, fn func()) {
	s.delays = append(s.delays, delay)
	s.queued = append(s.queued, fn)
}

func (s *deferredScheduler) run() {
	queued := s.queued
	s.queued = nil
	for _, fn := range queued {
		fn()
	}
}

// recordingMetrics counts metric calls.
type recordingMetrics struct {
	output.NoOpMetrics
	selections  map[string]int
	suggestions map[string]int
	durations   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		selections:  map[string]int{},
		suggestions: map[string]int{},
		durations:   map[string]int{},
	}
}

func (r *recordingMetrics) ObserveDuration(operation string, _ time.Duration) {
	r.durations[operation]++
}

func (r *recordingMetrics) IncSelection(outcome string) { r.selections[outcome]++ }

func (r *recordingMetrics) IncNameSuggestion(source string) { r.suggestions[source]++ }

var errBoom = errors.New("boom")
