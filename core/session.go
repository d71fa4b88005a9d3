package core

import (
	"sync"
	"time"
)

// Session is the explicit context shared by every component. Apart from the
// event history it is not safe for concurrent use: all fields are mutated
// from the engine's event loop, and each field names its single writer.
type Session struct {
	ID      string
	Created time.Time

	// Document is the script text. Writer: engine (edits).
	Document *Document
	// Env is the live environment of the last successful execution.
	// Writer: scheduler (replacement), display.Rules.AddTemporary (temps).
	Env Environment
	// Locations of the last successful execution. Writer: scheduler.
	Locations *Locations
	// NeverUsed holds terminal names. Writer: scheduler.
	NeverUsed NameSet
	// Target is the execution target offset. Writer: scheduler.
	Target int
	// Status of the last execution. Writer: scheduler.
	Status Status

	// Ownership is the pose ownership map. Writer: deps.Tracker.
	Ownership *Ownership

	// Scene is the render set. Writer: display.Rules.
	Scene Scene
	// Zones are the display zones. Writer: display.Rules.
	Zones []Span
	// Pinned names are always displayed. Writer: engine.
	Pinned NameSet
	// Editors are overlays under interactive edit. Writer: engine.
	Editors map[string]any
	// ActiveKinematic is the kinematic found in the last rebuild.
	// Writer: display.Rules.
	ActiveKinematic Kinematic

	// Selection is the selection set. Writer: selection.Manager.
	Selection Selection
	// ActiveSolid is the last picked solid. Writer: selection.Manager.
	ActiveSolid Solid

	// Views are the open views. Writer: engine.
	Views Views

	mu     sync.RWMutex
	events []Event
}

// NewSession creates an empty session over text.
func NewSession(text string) *Session {
	return &Session{
		ID:        NewID(),
		Created:   time.Now().UTC(),
		Document:  NewDocument(text),
		Env:       Environment{},
		Locations: NewLocations(),
		NeverUsed: NewNameSet(),
		Ownership: NewOwnership(),
		Scene:     Scene{},
		Pinned:    NewNameSet(),
		Editors:   map[string]any{},
		Selection: Selection{},
	}
}

// AddEvent appends ev to the history. Safe for concurrent use.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a defensive copy of the history. Safe for concurrent use.
func (s *Session) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventsOf returns the events of the given kind.
func (s *Session) EventsOf(kind EventKind) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
