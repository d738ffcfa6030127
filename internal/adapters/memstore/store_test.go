package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/jobrunner/mapassist/internal/domain"
)

func box(id int64, lat, lon, size float64, tags map[string]string) *domain.Polygon {
	return &domain.Polygon{
		ID: id,
		Nodes: []domain.GeoPoint{
			{Lat: lat, Lon: lon},
			{Lat: lat, Lon: lon + size},
			{Lat: lat + size, Lon: lon + size},
			{Lat: lat + size, Lon: lon},
			{Lat: lat, Lon: lon},
		},
		Tags: tags,
		Area: true,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	err := s.Load(
		box(1, 0, 0, 1, map[string]string{"name": "A1"}),
		box(2, 0, 2, 1, nil),
		box(5, 10, 10, 1, map[string]string{"level": "0"}),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestStoreQueryByExtent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		extent domain.Extent
		want   []int64
	}{
		{"point inside first", domain.Extent{MinX: 0.5, MinY: 0.5, MaxX: 0.5, MaxY: 0.5}, []int64{1}},
		{"span two", domain.Extent{MinX: 0.5, MinY: 0.5, MaxX: 2.5, MaxY: 0.6}, []int64{1, 2}},
		{"nothing", domain.Extent{MinX: 5, MinY: 5, MaxX: 6, MaxY: 6}, nil},
		{"everything", domain.Extent{MinX: -1, MinY: -1, MaxX: 20, MaxY: 20}, []int64{1, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryByExtent(ctx, tt.extent)
			if err != nil {
				t.Fatalf("QueryByExtent failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d polygons, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result %d id = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}

	if _, err := s.QueryByExtent(ctx, domain.EmptyExtent()); !errors.Is(err, domain.ErrInputInvalid) {
		t.Errorf("invalid extent error = %v", err)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	p.Tags["name"] = "changed"

	again, _ := s.Get(ctx, 1)
	if again.Name() != "A1" {
		t.Errorf("store polygon mutated through copy: %q", again.Name())
	}
	if again.Version != 1 {
		t.Errorf("Version = %d, want 1", again.Version)
	}

	if _, err := s.Get(ctx, 99); !errors.Is(err, domain.ErrFeatureVanished) {
		t.Errorf("Get missing error = %v", err)
	}
}

func TestStoreLoadRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)
	if err := s.Load(box(1, 3, 3, 1, nil)); !errors.Is(err, domain.ErrInputInvalid) {
		t.Errorf("duplicate load error = %v", err)
	}
	if err := s.Load(&domain.Polygon{Nodes: []domain.GeoPoint{{Lat: 1, Lon: 1}}}); !errors.Is(err, domain.ErrTooFewPoints) {
		t.Errorf("single node load error = %v", err)
	}
}

func TestStoreApplySequence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cmd := domain.Sequence{
		Name: "combine",
		Commands: []domain.Command{
			domain.AddFeature{Polygon: box(0, 0, 0, 3, map[string]string{"name": "A1"})},
			domain.DeleteFeatures{IDs: []int64{1, 2}},
		},
	}

	created, err := s.Apply(ctx, cmd)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(created) != 1 || created[0] != 6 {
		t.Fatalf("created = %v, want [6]", created)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	got, err := s.QueryByExtent(ctx, domain.Extent{MinX: 0.5, MinY: 0.5, MaxX: 0.5, MaxY: 0.5})
	if err != nil || len(got) != 1 || got[0].ID != 6 {
		t.Errorf("query after combine = %v, %v", got, err)
	}
}

func TestStoreApplyIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cmd := domain.Sequence{Commands: []domain.Command{
		domain.SetTag{IDs: []int64{1}, Key: "level", Value: "2"},
		domain.DeleteFeatures{IDs: []int64{2}},
		domain.SetTag{IDs: []int64{2}, Key: "name", Value: "gone"},
	}}

	_, err := s.Apply(ctx, cmd)
	if !errors.Is(err, domain.ErrFeatureVanished) {
		t.Fatalf("Apply error = %v, want ErrFeatureVanished", err)
	}
	var ce *domain.CommandError
	if !errors.As(err, &ce) {
		t.Errorf("error should be a CommandError, got %T", err)
	}

	p, _ := s.Get(ctx, 1)
	if _, ok := p.Level(); ok {
		t.Error("failed sequence must not change anything")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestStoreApplySetTagAndNodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Apply(ctx, domain.SetTag{IDs: []int64{2}, Key: "name", Value: ""}); err != nil {
		t.Fatalf("SetTag failed: %v", err)
	}
	p, _ := s.Get(ctx, 2)
	if !p.HasTag("name") || p.Version != 2 {
		t.Errorf("after SetTag: tags %v version %d", p.Tags, p.Version)
	}

	moved := box(0, 30, 30, 1, nil).Nodes
	if _, err := s.Apply(ctx, domain.SetNodes{ID: 2, Nodes: moved}); err != nil {
		t.Fatalf("SetNodes failed: %v", err)
	}
	got, _ := s.QueryByExtent(ctx, domain.Extent{MinX: 30.5, MinY: 30.5, MaxX: 30.5, MaxY: 30.5})
	if len(got) != 1 || got[0].ID != 2 || got[0].Version != 3 {
		t.Errorf("query after move = %+v", got)
	}
	old, _ := s.QueryByExtent(ctx, domain.Extent{MinX: 2.5, MinY: 0.5, MaxX: 2.5, MaxY: 0.5})
	if len(old) != 0 {
		t.Errorf("moved polygon still indexed at old location")
	}

	if _, err := s.Apply(ctx, domain.SetTag{IDs: []int64{1}}); !errors.Is(err, domain.ErrInputInvalid) {
		t.Errorf("empty key error = %v", err)
	}
}
