package core

import "fmt"

// Status is the execution state shown by script views.
type Status int

const (
	StatusModified Status = iota
	StatusRunning
	StatusComputed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusModified:
		return "MODIFIED"
	case StatusRunning:
		return "RUNNING"
	case StatusComputed:
		return "COMPUTED"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Highlights are the three text highlight categories pushed to script views.
type Highlights struct {
	Zones    []Span
	Selected []Span
	Edited   []Span
}

// SceneView renders the scene.
type SceneView interface {
	// Sync is called with the keys whose render value changed.
	Sync(changed NameSet)
	// ApplyPoses is called when solid poses moved without a scene change.
	ApplyPoses()
}

// SelectableView renders per element selection state.
type SelectableView interface {
	HasKey(key string) bool
	Select(key string, sub int, state bool)
}

// ScriptView shows the script text.
type ScriptView interface {
	SetHighlights(Highlights)
}

// StatusView shows the execution status label.
type StatusView interface {
	SetStatus(status Status, detail string)
}

// ErrorView displays evaluation errors.
type ErrorView interface {
	ShowError(err error)
}

// InfoView displays transient, non fatal messages.
type InfoView interface {
	Info(msg string)
}

// Views is the set of open views. Notifications reach every view that
// implements the matching interface.
type Views []any

// Sync notifies scene views of changed keys.
func (vs Views) Sync(changed NameSet) {
	for _, v := range vs {
		if sv, ok := v.(SceneView); ok {
			sv.Sync(changed)
		}
	}
}

// ApplyPoses notifies scene views of moved solids.
func (vs Views) ApplyPoses() {
	for _, v := range vs {
		if sv, ok := v.(SceneView); ok {
			sv.ApplyPoses()
		}
	}
}

// Select forwards a selection state to views rendering key.
func (vs Views) Select(key string, sub int, state bool) {
	for _, v := range vs {
		if sv, ok := v.(SelectableView); ok && sv.HasKey(key) {
			sv.Select(key, sub, state)
		}
	}
}

// SetHighlights pushes highlights to script views.
func (vs Views) SetHighlights(h Highlights) {
	for _, v := range vs {
		if sv, ok := v.(ScriptView); ok {
			sv.SetHighlights(h)
		}
	}
}

// SetStatus updates status labels.
func (vs Views) SetStatus(status Status, detail string) {
	for _, v := range vs {
		if sv, ok := v.(StatusView); ok {
			sv.SetStatus(status, detail)
		}
	}
}

// ShowError reports err to error views.
func (vs Views) ShowError(err error) {
	for _, v := range vs {
		if ev, ok := v.(ErrorView); ok {
			ev.ShowError(err)
		}
	}
}

// Info sends msg to info views.
func (vs Views) Info(msg string) {
	for _, v := range vs {
		if iv, ok := v.(InfoView); ok {
			iv.Info(msg)
		}
	}
}
