// Package geojson converts between GeoJSON feature collections and polygons.
package geojson

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/mapassist/internal/domain"
)

// Loader reads polygon datasets from GeoJSON.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile reads a FeatureCollection from path.
func (l *Loader) LoadFile(path string) ([]*domain.Polygon, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- dataset path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	polygons, err := l.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return polygons, nil
}

// Decode converts a FeatureCollection into polygons. Polygon geometries use
// their outer ring and count as areas unless tagged area=no; line strings
// count as areas only when tagged area=yes. Other geometry types are
// skipped.
func (l *Loader) Decode(data []byte) ([]*domain.Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Polygon, 0, len(fc.Features))
	for i, f := range fc.Features {
		p := &domain.Polygon{Tags: tags(f.Properties)}

		id, err := featureID(f.ID)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		p.ID = id

		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) == 0 {
				continue
			}
			p.Nodes = nodes(g[0])
			p.Area = p.Tags[domain.TagArea] != "no"
		case orb.LineString:
			p.Nodes = nodes(g)
			p.Area = p.Tags[domain.TagArea] == "yes"
		default:
			if l.logger != nil {
				l.logger.Debug("skipping feature", "index", i, "type", geometryType(f.Geometry))
			}
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Feature encodes a polygon as a GeoJSON feature.
func Feature(p *domain.Polygon) *geojson.Feature {
	ls := make(orb.LineString, len(p.Nodes))
	for i, n := range p.Nodes {
		ls[i] = orb.Point{n.Lon, n.Lat}
	}

	var g orb.Geometry = ls
	if p.IsSelectable() {
		g = orb.Polygon{orb.Ring(ls)}
	}

	f := geojson.NewFeature(g)
	if p.ID != 0 {
		f.ID = p.ID
	}
	for k, v := range p.Tags {
		f.Properties[k] = v
	}
	return f
}

// Collection encodes polygons as a FeatureCollection.
func Collection(polygons []*domain.Polygon) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range polygons {
		fc.Append(Feature(p))
	}
	return fc
}

func nodes[T ~[]orb.Point](pts T) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(pts))
	for i, pt := range pts {
		out[i] = domain.GeoPoint{Lat: pt[1], Lon: pt[0]}
	}
	return out
}

func tags(props geojson.Properties) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

func featureID(id interface{}) (int64, error) {
	switch v := id.(type) {
	case nil:
		return 0, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("id %q: %w", v, domain.ErrInputInvalid)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("id %v: %w", v, domain.ErrInputInvalid)
	}
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "none"
	}
	return g.GeoJSONType()
}
