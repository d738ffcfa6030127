// Package levels provides LevelSource implementations.
package levels

import "sync"

// Static is a LevelSource whose level is set by the host.
type Static struct {
	mu    sync.RWMutex
	level string
}

// NewStatic creates a level source starting at level. An empty level means
// no level is active.
func NewStatic(level string) *Static {
	return &Static{level: level}
}

// CurrentLevel implements output.LevelSource.
func (s *Static) CurrentLevel() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level, s.level != ""
}

// Set changes the active level.
func (s *Static) Set(level string) {
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
}
