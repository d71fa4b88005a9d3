package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind classifies session history entries.
type EventKind string

const (
	EventExecuted         EventKind = "executed"
	EventExecutionFailed  EventKind = "execution_failed"
	EventModified         EventKind = "modified"
	EventTargetChanged    EventKind = "target_changed"
	EventSolved           EventKind = "solved"
	EventSolveFailed      EventKind = "solve_failed"
	EventLockToggled      EventKind = "lock_toggled"
	EventSelectionChanged EventKind = "selection_changed"
	EventAssist           EventKind = "assist"
)

// Event is an immutable record appended to the session history.
type Event struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message,omitempty"`
	Span      *Span          `json:"span,omitempty"`
	Names     []string       `json:"names,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an event of the given kind stamped with the current UTC
// time.
func NewEvent(kind EventKind, message string) Event {
	return Event{
		ID:        NewID(),
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}

// WithNames returns a copy of the event carrying names.
func (e Event) WithNames(names ...string) Event {
	e.Names = append([]string(nil), names...)
	return e
}

// WithSpan returns a copy of the event carrying span.
func (e Event) WithSpan(s *Span) Event {
	if s != nil {
		c := *s
		e.Span = &c
	}
	return e
}

// WithMetadata returns a copy of the event with key set to value.
func (e Event) WithMetadata(key string, value any) Event {
	m := make(map[string]any, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		m[k] = v
	}
	m[key] = value
	e.Metadata = m
	return e
}

// NewID generates a new unique identifier.
func NewID() string {
	return uuid.NewString()
}
