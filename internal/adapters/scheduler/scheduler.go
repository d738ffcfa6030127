// Package scheduler provides Scheduler implementations for deferred
// post-edit processing.
package scheduler

import (
	"sync"
	"time"
)

// Immediate runs work synchronously, ignoring the delay. It suits hosts
// that already call back once edits have settled.
type Immediate struct{}

// After implements output.Scheduler.
func (Immediate) After(_ time.Duration, fn func()) {
	fn()
}

// Timer runs work on a timer goroutine after the delay. Pending work is
// never cancelled.
type Timer struct {
	wg sync.WaitGroup
}

// After implements output.Scheduler.
func (t *Timer) After(delay time.Duration, fn func()) {
	t.wg.Add(1)
	time.AfterFunc(delay, func() {
		defer t.wg.Done()
		fn()
	})
}

// Wait blocks until all scheduled work has run.
func (t *Timer) Wait() {
	t.wg.Wait()
}
