package application

import (
	"context"
	"testing"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

func newTestAssigner(store *mockStore, level string, log *mockCommandLog, sched *deferredScheduler) *LevelAssigner {
	return NewLevelAssigner(store, &mockLevels{level: level}, log, sched, &output.NoOpMetrics{}, newTestLogger(), LevelAssignerConfig{})
}

func TestLevelAssigner_Added(t *testing.T) {
	a := newTestAssigner(newMockStore(), "1", &mockCommandLog{}, &deferredScheduler{})

	a.Added(
		space(1, 0, 0, nil),
		space(2, 1, 0, map[string]string{"level": "3"}),
		space(0, 2, 0, nil),
		space(4, 3, 0, map[string]string{"level": ""}),
		space(1, 0, 0, nil),
	)

	got := a.Pending()
	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Fatalf("Pending() = %v, want [1 4]", got)
	}

	a.Removed(1)
	if got := a.Pending(); len(got) != 1 || got[0] != 4 {
		t.Errorf("Pending() after Removed = %v, want [4]", got)
	}

	a.TagsChanged(space(4, 3, 0, map[string]string{"name": "X"}))
	if got := a.Pending(); len(got) != 1 {
		t.Errorf("Pending() after unrelated tag change = %v, want [4]", got)
	}
	a.TagsChanged(space(4, 3, 0, map[string]string{"level": "0"}))
	if got := a.Pending(); len(got) != 0 {
		t.Errorf("Pending() after level set = %v, want none", got)
	}
}

func TestLevelAssigner_Triggers(t *testing.T) {
	tests := []struct {
		name      string
		trigger   func(a *LevelAssigner)
		scheduled bool
	}{
		{
			name:      "leaving draw mode",
			trigger:   func(a *LevelAssigner) { a.ModeChanged(domain.ModeDraw, domain.ModeSelect) },
			scheduled: true,
		},
		{
			name:      "entering draw mode",
			trigger:   func(a *LevelAssigner) { a.ModeChanged(domain.ModeSelect, domain.ModeDraw) },
			scheduled: false,
		},
		{
			name:      "between other modes",
			trigger:   func(a *LevelAssigner) { a.ModeChanged(domain.ModeSelect, domain.ModeOther) },
			scheduled: false,
		},
		{
			name:      "escape",
			trigger:   func(a *LevelAssigner) { a.EscapePressed() },
			scheduled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore(space(1, 0, 0, nil))
			log := &mockCommandLog{store: store}
			sched := &deferredScheduler{}
			a := newTestAssigner(store, "2", log, sched)
			a.Added(space(1, 0, 0, nil))

			tt.trigger(a)
			if got := len(sched.queued) == 1; got != tt.scheduled {
				t.Fatalf("scheduled = %v, want %v", got, tt.scheduled)
			}
			if !tt.scheduled {
				return
			}
			if sched.delays[0] != DefaultSettleDelay {
				t.Errorf("delay = %v, want %v", sched.delays[0], DefaultSettleDelay)
			}
			if len(log.submitted) != 0 {
				t.Fatal("level assigned before the delay elapsed")
			}

			sched.run()
			p, _ := store.Get(context.Background(), 1)
			if level, _ := p.Level(); level != "2" {
				t.Errorf("level = %q, want 2", level)
			}
		})
	}
}

func TestLevelAssigner_Settle(t *testing.T) {
	store := newMockStore(
		space(1, 0, 0, nil),
		space(2, 1, 0, nil),
		space(3, 2, 0, nil),
	)
	log := &mockCommandLog{store: store}
	a := newTestAssigner(store, "1", log, &deferredScheduler{})

	a.Added(space(1, 0, 0, nil), space(2, 1, 0, nil), space(3, 2, 0, nil), space(4, 3, 0, nil))
	// Polygon 2 got a level elsewhere and 4 was never stored.
	store.polygons[2].Tags["level"] = "7"

	n, err := a.Settle(context.Background())
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Settle() = %d, want 2", n)
	}
	if len(log.submitted) != 1 {
		t.Fatalf("submitted %d commands, want 1", len(log.submitted))
	}
	seq := log.submitted[0].(domain.Sequence)
	tag := seq.Commands[0].(domain.SetTag)
	if len(tag.IDs) != 2 || tag.IDs[0] != 1 || tag.IDs[1] != 3 || tag.Value != "1" {
		t.Errorf("SetTag = %+v, want level 1 on [1 3]", tag)
	}
	if p, _ := store.Get(context.Background(), 2); p.Tags["level"] != "7" {
		t.Errorf("existing level overwritten: %q", p.Tags["level"])
	}

	if len(a.Pending()) != 0 {
		t.Error("tracking not cleared")
	}
	if n, _ := a.Settle(context.Background()); n != 0 {
		t.Errorf("second Settle() = %d, want 0", n)
	}
}

func TestLevelAssigner_Settle_NoLevel(t *testing.T) {
	store := newMockStore(space(1, 0, 0, nil))
	log := &mockCommandLog{store: store}
	a := newTestAssigner(store, "", log, &deferredScheduler{})
	a.Added(space(1, 0, 0, nil))

	n, err := a.Settle(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Settle() = %d, %v; want 0, nil", n, err)
	}
	if len(log.submitted) != 0 {
		t.Error("submitted without an active level")
	}
	if len(a.Pending()) != 0 {
		t.Error("tracking not cleared")
	}
}

func TestLevelAssigner_SettleObservesDuration(t *testing.T) {
	store := newMockStore(space(1, 0, 0, nil))
	rec := newRecordingMetrics()
	a := NewLevelAssigner(store, &mockLevels{level: "1"}, &mockCommandLog{store: store}, &deferredScheduler{}, rec, newTestLogger(), LevelAssignerConfig{})
	a.Added(space(1, 0, 0, nil))

	if _, err := a.Settle(context.Background()); err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if rec.durations["settle"] != 1 {
		t.Errorf("settle durations observed = %d, want 1", rec.durations["settle"])
	}
}
