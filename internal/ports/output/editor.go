package output

import (
	"context"
	"time"

	"github.com/jobrunner/mapassist/internal/domain"
)

// CommandLog defines the secondary port to the host's undoable command log.
type CommandLog interface {
	// Submit applies cmd as one undoable unit.
	Submit(ctx context.Context, cmd domain.Command) error
}

// TagEditor drives the host's tag editing dialog.
type TagEditor interface {
	// Open shows the tag editor for a polygon.
	Open(ctx context.Context, id int64) error

	// FocusField moves keyboard focus to the value field of key.
	FocusField(ctx context.Context, key string) error

	// SetValue prefills the value field of key.
	SetValue(ctx context.Context, key, value string) error
}

// Selection controls the host's current selection.
type Selection interface {
	// Replace clears the selection and selects ids.
	Replace(ctx context.Context, ids []int64) error
}

// Scheduler runs deferred work on the host's event queue.
type Scheduler interface {
	After(delay time.Duration, fn func())
}
