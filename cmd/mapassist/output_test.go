package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jobrunner/mapassist/internal/domain"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "17"})
	if err != nil {
		t.Fatalf("parseIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 17 {
		t.Errorf("parseIDs() = %v, want [3 17]", ids)
	}

	if _, err := parseIDs([]string{"x"}); !errors.Is(err, domain.ErrInputInvalid) {
		t.Errorf("parseIDs() error = %v, want ErrInputInvalid", err)
	}
}

func TestRender(t *testing.T) {
	p := &domain.Polygon{
		ID:      7,
		Version: 2,
		Tags:    map[string]string{"name": "A302"},
		Nodes:   []domain.GeoPoint{{Lat: 48, Lon: 11}},
	}
	v := combineOutput{Removed: []int64{1, 2}, Polygon: newPolygonOutput(p)}

	tests := []struct {
		format string
		want   []string
	}{
		{format: "json", want: []string{`"removed": [`, `"name": "A302"`, `"id": 7`}},
		{format: "yaml", want: []string{"removed:", "name: A302", "id: 7"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := render(&buf, tt.format, v); err != nil {
				t.Fatalf("render() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}

	if err := render(&bytes.Buffer{}, "xml", v); err == nil {
		t.Error("render() expected error for unknown format")
	}
}
