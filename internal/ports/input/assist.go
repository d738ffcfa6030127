// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/mapassist/internal/domain"
)

// ClickRequest describes a pointer click reported by the host editor.
type ClickRequest struct {
	Point domain.GeoPoint   // Click location
	Mode  domain.EditorMode // Mode the editor was in when the click happened
}

// SelectionService defines the primary port for click selection with name
// suggestion.
type SelectionService interface {
	// HandleClick selects the polygon under the click and suggests a name.
	HandleClick(ctx context.Context, req ClickRequest) (*domain.SelectionResult, error)
}

// MergeService defines the primary port for combining polygons into a
// minimum-area rectangle.
type MergeService interface {
	// Combine replaces the given polygons with one rectangle and returns it.
	Combine(ctx context.Context, ids []int64) (*domain.Polygon, error)
}

// LevelAssigner defines the primary port for tagging newly drawn polygons
// with the active level.
type LevelAssigner interface {
	// Added records polygons the user just created.
	Added(polygons ...*domain.Polygon)

	// Removed forgets deleted polygons.
	Removed(ids ...int64)

	// TagsChanged stops tracking polygons that were given a level meanwhile.
	TagsChanged(polygons ...*domain.Polygon)

	// ModeChanged reports an editor mode transition.
	ModeChanged(from, to domain.EditorMode)

	// EscapePressed reports the escape key.
	EscapePressed()

	// Settle assigns the current level to all tracked polygons now.
	Settle(ctx context.Context) (int, error)
}

// VerifyService defines the primary port for marking polygons as verified.
type VerifyService interface {
	// MarkVerified tags ids with verified=true and returns how many changed.
	MarkVerified(ctx context.Context, ids []int64) (int, error)
}

// MoveService defines the primary port for shape-preserving moves.
type MoveService interface {
	// MoveTo moves the polygons so their common center lands on target.
	MoveTo(ctx context.Context, ids []int64, target domain.GeoPoint) error
}
