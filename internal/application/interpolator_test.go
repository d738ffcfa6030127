package application

import (
	"context"
	"errors"
	"testing"

	"github.com/jobrunner/mapassist/internal/domain"
)

func TestNameInterpolator_Interpolate(t *testing.T) {
	unnamed := func(i int) *domain.Polygon {
		return space(100, i, 0, map[string]string{"level": "1"})
	}
	center := func(i int) domain.GeoPoint { return geo(2.5*float64(i)+1.25, 2.5) }

	triangle := &domain.Polygon{
		ID:      100,
		Nodes:   []domain.GeoPoint{geo(5, 0), geo(7.5, 0), geo(6.25, 5), geo(5, 0)},
		Tags:    map[string]string{"level": "1"},
		Area:    true,
		Version: 1,
	}
	offLine := rect(100, 5, 2, 2.5, 5, map[string]string{"level": "1"})

	tests := []struct {
		name      string
		target    *domain.Polygon
		point     domain.GeoPoint
		neighbors []*domain.Polygon
		want      string
		wantErr   error
	}{
		{
			name:   "fills gap between",
			target: unnamed(1),
			point:  center(1),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("A301", "1")),
				space(2, 2, 0, named("A303", "1")),
			},
			want: "A302",
		},
		{
			name:   "keeps zero padding",
			target: unnamed(1),
			point:  center(1),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("B3-023", "1")),
				space(2, 2, 0, named("B3-025", "1")),
			},
			want: "B3-024",
		},
		{
			name:   "continues after",
			target: unnamed(2),
			point:  center(2),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("C10", "1")),
				space(2, 1, 0, named("C11", "1")),
			},
			want: "C12",
		},
		{
			name:   "continues before",
			target: unnamed(0),
			point:  center(0),
			neighbors: []*domain.Polygon{
				space(1, 1, 0, named("C10", "1")),
				space(2, 2, 0, named("C11", "1")),
			},
			want: "C9",
		},
		{
			name:   "descending numbering",
			target: unnamed(2),
			point:  center(2),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("C11", "1")),
				space(2, 1, 0, named("C10", "1")),
			},
			want: "C9",
		},
		{
			name:   "circular fallback for non rectangular target",
			target: triangle,
			point:  geo(6.25, 5.0/3),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("D1", "1")),
				space(2, 4, 0, named("D3", "1")),
			},
			want: "D2",
		},
		{
			name:   "nothing below one",
			target: unnamed(0),
			point:  center(0),
			neighbors: []*domain.Polygon{
				space(1, 1, 0, named("C1", "1")),
				space(2, 2, 0, named("C2", "1")),
			},
			wantErr: domain.ErrSpatialOrder,
		},
		{
			name:   "consecutive neighbours leave no gap",
			target: unnamed(1),
			point:  center(1),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("A1", "1")),
				space(2, 2, 0, named("A2", "1")),
			},
			wantErr: domain.ErrSpatialOrder,
		},
		{
			name:   "off the neighbour line",
			target: offLine,
			point:  geo(6.25, 4.5),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("A1", "1")),
				space(2, 4, 0, named("A3", "1")),
			},
			wantErr: domain.ErrSpatialOrder,
		},
		{
			name:   "gap too wide",
			target: unnamed(1),
			point:  center(1),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("A301", "1")),
				space(2, 2, 0, named("A305", "1")),
			},
			wantErr: domain.ErrUnsupportedGap,
		},
		{
			name:   "prefixes differ",
			target: unnamed(1),
			point:  center(1),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("A1", "1")),
				space(2, 2, 0, named("B3", "1")),
			},
			wantErr: domain.ErrPrefixMismatch,
		},
		{
			name:   "name without number",
			target: unnamed(1),
			point:  center(1),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("Lobby", "1")),
				space(2, 2, 0, named("A3", "1")),
			},
			wantErr: domain.ErrNoTrailingDigits,
		},
		{
			name:   "single neighbour",
			target: unnamed(1),
			point:  center(1),
			neighbors: []*domain.Polygon{
				space(1, 0, 0, named("A1", "1")),
			},
			wantErr: domain.ErrNoNeighbors,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore(append(tt.neighbors, tt.target)...)
			interp := NewNameInterpolator(newTestSearch(store), &flatProjector{}, newTestLogger(), NameInterpolatorConfig{})

			got, err := interp.Interpolate(context.Background(), tt.target, tt.point, "1", 20)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Interpolate() error = %v, want %v", err, tt.wantErr)
				}
				if !domain.IsRecoverable(err) {
					t.Errorf("Interpolate() error %v should be recoverable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Interpolate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Interpolate() = %q, want %q", got, tt.want)
			}
		})
	}
}
