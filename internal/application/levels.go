package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/input"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

// DefaultSettleDelay is how long after a mode change the host's edits are
// assumed to have settled. It is a heuristic for hosts that cannot signal
// completion themselves.
const DefaultSettleDelay = 100 * time.Millisecond

// LevelAssigner tags polygons drawn without a level with the active level
// once the user leaves draw mode.
type LevelAssigner struct {
	mu        sync.Mutex
	pending   map[int64]bool
	order     []int64
	store     output.FeatureStore
	levels    output.LevelSource
	commands  output.CommandLog
	scheduler output.Scheduler
	metrics   output.MetricsCollector
	logger    *slog.Logger
	delay     time.Duration
}

// LevelAssignerConfig holds configuration for the level assigner.
type LevelAssignerConfig struct {
	SettleDelay time.Duration
}

var _ input.LevelAssigner = (*LevelAssigner)(nil)

// NewLevelAssigner creates a new level assigner.
func NewLevelAssigner(
	store output.FeatureStore,
	levels output.LevelSource,
	commands output.CommandLog,
	scheduler output.Scheduler,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg LevelAssignerConfig,
) *LevelAssigner {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	return &LevelAssigner{
		pending:   make(map[int64]bool),
		store:     store,
		levels:    levels,
		commands:  commands,
		scheduler: scheduler,
		metrics:   metrics,
		logger:    logger,
		delay:     cfg.SettleDelay,
	}
}

// Added implements input.LevelAssigner. Polygons that already carry a level
// are ignored.
func (a *LevelAssigner) Added(polygons ...*domain.Polygon) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range polygons {
		if _, ok := p.Level(); ok || p.ID == 0 || a.pending[p.ID] {
			continue
		}
		a.pending[p.ID] = true
		a.order = append(a.order, p.ID)
	}
}

// Removed implements input.LevelAssigner.
func (a *LevelAssigner) Removed(ids ...int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range ids {
		delete(a.pending, id)
	}
	kept := a.order[:0]
	for _, id := range a.order {
		if a.pending[id] {
			kept = append(kept, id)
		}
	}
	a.order = kept
}

// TagsChanged implements input.LevelAssigner.
func (a *LevelAssigner) TagsChanged(polygons ...*domain.Polygon) {
	var leveled []int64
	for _, p := range polygons {
		if _, ok := p.Level(); ok {
			leveled = append(leveled, p.ID)
		}
	}
	if len(leveled) > 0 {
		a.Removed(leveled...)
	}
}

// Pending returns the IDs awaiting a level.
func (a *LevelAssigner) Pending() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int64(nil), a.order...)
}

// ModeChanged implements input.LevelAssigner. Leaving draw mode schedules
// a settle.
func (a *LevelAssigner) ModeChanged(from, to domain.EditorMode) {
	if from == domain.ModeDraw && to != domain.ModeDraw {
		a.schedule("mode_change")
	}
}

// EscapePressed implements input.LevelAssigner.
func (a *LevelAssigner) EscapePressed() {
	a.schedule("escape")
}

func (a *LevelAssigner) schedule(trigger string) {
	a.scheduler.After(a.delay, func() {
		n, err := a.Settle(context.Background())
		if err != nil {
			a.logger.Warn("level assignment failed", "trigger", trigger, "error", err)
			return
		}
		if n > 0 {
			a.logger.Debug("level assignment settled", "trigger", trigger, "polygons", n)
		}
	})
}

// Settle implements input.LevelAssigner. Tracked polygons that vanished or
// gained a level in the meantime are skipped. Tracking is cleared either way.
func (a *LevelAssigner) Settle(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { a.metrics.ObserveDuration("settle", time.Since(start)) }()

	a.mu.Lock()
	tracked := a.order
	a.order = nil
	a.pending = make(map[int64]bool)
	a.mu.Unlock()

	if len(tracked) == 0 {
		return 0, nil
	}

	level, ok := a.levels.CurrentLevel()
	if !ok {
		a.logger.Debug("no active level, dropping new polygons", "polygons", len(tracked))
		return 0, nil
	}

	var targets []int64
	for _, id := range tracked {
		p, err := a.store.Get(ctx, id)
		if err != nil {
			a.logger.Debug("new polygon gone", "polygon", id, "error", err)
			continue
		}
		if _, has := p.Level(); has {
			continue
		}
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return 0, nil
	}

	cmd := domain.Sequence{
		Name: fmt.Sprintf("Set level %s on %d new polygons", level, len(targets)),
		Commands: []domain.Command{
			domain.SetTag{IDs: targets, Key: domain.TagLevel, Value: level},
		},
	}
	if err := a.commands.Submit(ctx, cmd); err != nil {
		return 0, err
	}

	a.logger.Info("level assigned", "level", level, "polygons", targets)
	return len(targets), nil
}
