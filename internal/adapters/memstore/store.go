// Package memstore provides an in-memory FeatureStore indexed by an R-tree.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/jobrunner/mapassist/internal/domain"
)

// minExtent pads degenerate bounding boxes; rtreego rejects zero-length sides.
const minExtent = 1e-9

type entry struct {
	polygon *domain.Polygon
	rect    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Store implements the FeatureStore and Applier ports in memory.
type Store struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[int64]*entry
	nextID  int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[int64]*entry),
		nextID:  1,
	}
}

// Load inserts polygons, keeping their IDs when set. Polygons without an ID
// get the next free one.
func (s *Store) Load(polygons ...*domain.Polygon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range polygons {
		if p.ID != 0 {
			if _, ok := s.entries[p.ID]; ok {
				return fmt.Errorf("duplicate polygon id %d: %w", p.ID, domain.ErrInputInvalid)
			}
		}
		if err := validateNodes(p.Nodes); err != nil {
			return fmt.Errorf("polygon %d: %w", p.ID, err)
		}
		s.insert(p.Clone())
	}
	return nil
}

// Len returns the number of stored polygons.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// QueryByExtent implements output.FeatureStore.
func (s *Store) QueryByExtent(_ context.Context, extent domain.Extent) ([]*domain.Polygon, error) {
	if !extent.IsValid() {
		return nil, fmt.Errorf("query extent %+v: %w", extent, domain.ErrInputInvalid)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := s.tree.SearchIntersect(toRect(extent))
	out := make([]*domain.Polygon, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*entry).polygon.Clone())
	}
	sortByID(out)
	return out, nil
}

// AllPolygons implements output.FeatureStore.
func (s *Store) AllPolygons(_ context.Context) ([]*domain.Polygon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Polygon, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.polygon.Clone())
	}
	sortByID(out)
	return out, nil
}

// Get implements output.FeatureStore.
func (s *Store) Get(_ context.Context, id int64) (*domain.Polygon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("polygon %d: %w", id, domain.ErrFeatureVanished)
	}
	return e.polygon.Clone(), nil
}

// Apply implements output.Applier. Every leaf command is checked against
// the store before anything is changed.
func (s *Store) Apply(_ context.Context, cmd domain.Command) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leaves := domain.Flatten(cmd)
	if err := s.check(leaves); err != nil {
		return nil, &domain.CommandError{Command: cmd.Describe(), Err: err}
	}

	var created []int64
	for _, leaf := range leaves {
		switch c := leaf.(type) {
		case domain.AddFeature:
			p := c.Polygon.Clone()
			p.ID = 0
			p.Version = 0
			created = append(created, s.insert(p))
		case domain.DeleteFeatures:
			for _, id := range c.IDs {
				s.remove(id)
			}
		case domain.SetTag:
			for _, id := range c.IDs {
				p := s.entries[id].polygon
				if p.Tags == nil {
					p.Tags = make(map[string]string)
				}
				p.Tags[c.Key] = c.Value
				p.Version++
			}
		case domain.SetNodes:
			p := s.entries[c.ID].polygon.Clone()
			s.remove(c.ID)
			p.Nodes = append([]domain.GeoPoint(nil), c.Nodes...)
			p.Version++
			s.insert(p)
		}
	}
	return created, nil
}

func (s *Store) check(leaves []domain.Command) error {
	deleted := make(map[int64]bool)
	exists := func(id int64) error {
		if _, ok := s.entries[id]; !ok || deleted[id] {
			return fmt.Errorf("polygon %d: %w", id, domain.ErrFeatureVanished)
		}
		return nil
	}

	for _, leaf := range leaves {
		switch c := leaf.(type) {
		case domain.AddFeature:
			if c.Polygon == nil {
				return fmt.Errorf("add without polygon: %w", domain.ErrInputInvalid)
			}
			if err := validateNodes(c.Polygon.Nodes); err != nil {
				return err
			}
		case domain.DeleteFeatures:
			for _, id := range c.IDs {
				if err := exists(id); err != nil {
					return err
				}
				deleted[id] = true
			}
		case domain.SetTag:
			if c.Key == "" {
				return fmt.Errorf("empty tag key: %w", domain.ErrInputInvalid)
			}
			for _, id := range c.IDs {
				if err := exists(id); err != nil {
					return err
				}
			}
		case domain.SetNodes:
			if err := exists(c.ID); err != nil {
				return err
			}
			if err := validateNodes(c.Nodes); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported command %T: %w", leaf, domain.ErrInputInvalid)
		}
	}
	return nil
}

func (s *Store) insert(p *domain.Polygon) int64 {
	if p.ID == 0 {
		p.ID = s.nextID
	}
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	if p.Version == 0 {
		p.Version = 1
	}
	e := &entry{polygon: p, rect: toRect(p.Extent())}
	s.entries[p.ID] = e
	s.tree.Insert(e)
	return p.ID
}

func (s *Store) remove(id int64) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	s.tree.Delete(e)
	delete(s.entries, id)
}

func validateNodes(nodes []domain.GeoPoint) error {
	if len(nodes) < 2 {
		return fmt.Errorf("%d nodes: %w", len(nodes), domain.ErrTooFewPoints)
	}
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func toRect(e domain.Extent) rtreego.Rect {
	r, err := rtreego.NewRect(
		rtreego.Point{e.MinX, e.MinY},
		[]float64{math.Max(e.Width(), minExtent), math.Max(e.Height(), minExtent)},
	)
	if err != nil {
		// Unreachable: both lengths are positive.
		panic(err)
	}
	return r
}

func sortByID(polygons []*domain.Polygon) {
	sort.Slice(polygons, func(i, j int) bool { return polygons[i].ID < polygons[j].ID })
}
