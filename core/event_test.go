package core

import "testing"

func TestEvent_Constructors(t *testing.T) {
	e := NewEvent(EventExecuted, "ok")
	if e.Kind != EventExecuted || e.Message != "ok" || e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("NewEvent did not initialize fields correctly: %+v", e)
	}

	span := &Span{Start: 1, End: 4}
	e2 := e.WithNames("a", "b").WithSpan(span).WithMetadata("target", 4)
	if len(e2.Names) != 2 || e2.Span == nil || e2.Metadata["target"] != 4 {
		t.Fatalf("helpers did not set fields: %+v", e2)
	}
	span.End = 10
	if e2.Span.End != 4 {
		t.Error("WithSpan should copy the span")
	}
	if e.Names != nil || e.Metadata != nil {
		t.Error("helpers must not mutate the receiver")
	}
}

func TestEvent_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewEvent(EventModified, "").ID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
