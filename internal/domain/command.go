package domain

import (
	"fmt"
	"strings"
)

// CommandKind identifies a command variant.
type CommandKind string

// Command kinds.
const (
	KindAddFeature     CommandKind = "add_feature"
	KindDeleteFeatures CommandKind = "delete_features"
	KindSetTag         CommandKind = "set_tag"
	KindSetNodes       CommandKind = "set_nodes"
	KindSequence       CommandKind = "sequence"
)

// Command is an editor mutation. Commands are values; the host's command
// log applies them and records them for undo.
type Command interface {
	Kind() CommandKind
	Describe() string
}

// AddFeature adds a new polygon. The store assigns its ID.
type AddFeature struct {
	Polygon *Polygon
}

// Kind implements Command.
func (c AddFeature) Kind() CommandKind { return KindAddFeature }

// Describe implements Command.
func (c AddFeature) Describe() string {
	return fmt.Sprintf("Add polygon with %d nodes", len(c.Polygon.Nodes))
}

// DeleteFeatures removes polygons by ID.
type DeleteFeatures struct {
	IDs []int64
}

// Kind implements Command.
func (c DeleteFeatures) Kind() CommandKind { return KindDeleteFeatures }

// Describe implements Command.
func (c DeleteFeatures) Describe() string {
	return fmt.Sprintf("Delete %d polygons", len(c.IDs))
}

// SetTag sets one tag on every listed polygon. An empty value is stored
// as an empty tag, not removed.
type SetTag struct {
	IDs   []int64
	Key   string
	Value string
}

// Kind implements Command.
func (c SetTag) Kind() CommandKind { return KindSetTag }

// Describe implements Command.
func (c SetTag) Describe() string {
	return fmt.Sprintf("Set %s=%q on %d polygons", c.Key, c.Value, len(c.IDs))
}

// SetNodes replaces the boundary of one polygon.
type SetNodes struct {
	ID    int64
	Nodes []GeoPoint
}

// Kind implements Command.
func (c SetNodes) Kind() CommandKind { return KindSetNodes }

// Describe implements Command.
func (c SetNodes) Describe() string {
	return fmt.Sprintf("Move %d nodes of polygon %d", len(c.Nodes), c.ID)
}

// Sequence groups commands into one atomic, undoable unit.
type Sequence struct {
	Name     string
	Commands []Command
}

// Kind implements Command.
func (c Sequence) Kind() CommandKind { return KindSequence }

// Describe implements Command.
func (c Sequence) Describe() string {
	if c.Name != "" {
		return c.Name
	}
	parts := make([]string, 0, len(c.Commands))
	for _, sub := range c.Commands {
		parts = append(parts, sub.Describe())
	}
	return strings.Join(parts, "; ")
}

// Flatten returns the leaf commands of cmd in application order.
func Flatten(cmd Command) []Command {
	seq, ok := cmd.(Sequence)
	if !ok {
		return []Command{cmd}
	}
	var out []Command
	for _, sub := range seq.Commands {
		out = append(out, Flatten(sub)...)
	}
	return out
}
