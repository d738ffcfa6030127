// Package commandlog provides a CommandLog that applies commands to a store
// and keeps the history of what was applied.
package commandlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

// Entry is one applied command.
type Entry struct {
	Command domain.Command
	Created []int64 // IDs assigned to added polygons
	At      time.Time
}

// Log implements output.CommandLog.
type Log struct {
	mu      sync.Mutex
	applier output.Applier
	metrics output.MetricsCollector
	logger  *slog.Logger
	history []Entry
	now     func() time.Time
}

// New creates a command log on top of applier.
func New(applier output.Applier, metrics output.MetricsCollector, logger *slog.Logger) *Log {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &Log{
		applier: applier,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit implements output.CommandLog.
func (l *Log) Submit(ctx context.Context, cmd domain.Command) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	created, err := l.applier.Apply(ctx, cmd)
	l.metrics.IncCommands(string(cmd.Kind()), err == nil)
	if err != nil {
		l.logger.Warn("command rejected", "command", cmd.Describe(), "error", err)
		return err
	}

	l.history = append(l.history, Entry{Command: cmd, Created: created, At: l.now()})
	l.logger.Info("command applied", "command", cmd.Describe(), "kind", cmd.Kind(), "created", created)
	return nil
}

// History returns the applied commands, oldest first.
func (l *Log) History() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.history...)
}

// Last returns the most recently applied command.
func (l *Log) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.history) == 0 {
		return Entry{}, false
	}
	return l.history[len(l.history)-1], true
}
