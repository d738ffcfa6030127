// Package editor provides a TagEditor and Selection that record what the
// assist engine asked the host to do. The CLI prints the recording; tests
// assert on it.
package editor

import (
	"context"
	"log/slog"
	"sync"
)

// Action is one recorded editor call.
type Action struct {
	Op    string  `json:"op" yaml:"op"`
	ID    int64   `json:"id,omitempty" yaml:"id,omitempty"`
	IDs   []int64 `json:"ids,omitempty" yaml:"ids,omitempty"`
	Key   string  `json:"key,omitempty" yaml:"key,omitempty"`
	Value string  `json:"value,omitempty" yaml:"value,omitempty"`
}

// Recorder implements output.TagEditor and output.Selection.
type Recorder struct {
	mu       sync.Mutex
	logger   *slog.Logger
	actions  []Action
	selected []int64
	values   map[string]string
}

// NewRecorder creates an empty recorder.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger, values: make(map[string]string)}
}

// Open implements output.TagEditor.
func (r *Recorder) Open(_ context.Context, id int64) error {
	r.record(Action{Op: "open", ID: id})
	return nil
}

// FocusField implements output.TagEditor.
func (r *Recorder) FocusField(_ context.Context, key string) error {
	r.record(Action{Op: "focus", Key: key})
	return nil
}

// SetValue implements output.TagEditor.
func (r *Recorder) SetValue(_ context.Context, key, value string) error {
	r.mu.Lock()
	r.values[key] = value
	r.mu.Unlock()
	r.record(Action{Op: "set_value", Key: key, Value: value})
	return nil
}

// Replace implements output.Selection.
func (r *Recorder) Replace(_ context.Context, ids []int64) error {
	r.mu.Lock()
	r.selected = append([]int64(nil), ids...)
	r.mu.Unlock()
	r.record(Action{Op: "select", IDs: ids})
	return nil
}

// Actions returns the recorded calls in order.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// Selected returns the current selection.
func (r *Recorder) Selected() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.selected...)
}

// Value returns the value prefilled for key.
func (r *Recorder) Value(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok
}

func (r *Recorder) record(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Debug("editor action", "op", a.Op, "id", a.ID, "key", a.Key, "value", a.Value)
	}
}
