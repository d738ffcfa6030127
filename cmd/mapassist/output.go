package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jobrunner/mapassist/internal/adapters/editor"
	"github.com/jobrunner/mapassist/internal/domain"
)

type polygonOutput struct {
	ID      int64             `json:"id" yaml:"id"`
	Version int64             `json:"version" yaml:"version"`
	Tags    map[string]string `json:"tags" yaml:"tags"`
	Nodes   [][2]float64      `json:"nodes" yaml:"nodes"` // lon, lat
}

type selectionOutput struct {
	Polygon polygonOutput   `json:"polygon" yaml:"polygon"`
	Name    string          `json:"name" yaml:"name"`
	Source  string          `json:"source" yaml:"source"`
	Editor  []editor.Action `json:"editor" yaml:"editor"`
}

type combineOutput struct {
	Removed []int64       `json:"removed" yaml:"removed"`
	Polygon polygonOutput `json:"polygon" yaml:"polygon"`
}

type countOutput struct {
	Changed int `json:"changed" yaml:"changed"`
}

type settleOutput struct {
	Tracked  int             `json:"tracked" yaml:"tracked"`
	Polygons []polygonOutput `json:"polygons" yaml:"polygons"`
}

func newPolygonOutput(p *domain.Polygon) polygonOutput {
	out := polygonOutput{ID: p.ID, Version: p.Version, Tags: p.Tags, Nodes: make([][2]float64, len(p.Nodes))}
	for i, n := range p.Nodes {
		out.Nodes[i] = [2]float64{n.Lon, n.Lat}
	}
	return out
}

func newSelectionOutput(res *domain.SelectionResult, actions []editor.Action) selectionOutput {
	return selectionOutput{
		Polygon: newPolygonOutput(res.Polygon),
		Name:    res.Name,
		Source:  string(res.Source),
		Editor:  actions,
	}
}

// render writes v to w as JSON or YAML.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
