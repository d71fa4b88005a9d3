package manipulate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// EventKind classifies pointer events.
type EventKind int

const (
	Press EventKind = iota
	DoublePress
	Move
	Release
	// Other is any event that is not part of a drag (key press, wheel, ...).
	Other
)

func (k EventKind) String() string {
	switch k {
	case Press:
		return "press"
	case DoublePress:
		return "double-press"
	case Move:
		return "move"
	case Release:
		return "release"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// PointerEvent is a pointer event in view coordinates.
type PointerEvent struct {
	Kind EventKind
	X, Y float64
}

// Picker resolves screen positions against the rendered scene. It is
// implemented by scene views.
type Picker interface {
	// Pick returns the render key and world point under the screen position.
	Pick(x, y float64) (key string, point mgl64.Vec3, ok bool)
	// PointFrom projects the screen position onto the plane through ref
	// facing the camera.
	PointFrom(x, y float64, ref mgl64.Vec3) mgl64.Vec3
}

// Result tells the event loop whether the gesture keeps consuming events.
type Result int

const (
	Continue Result = iota
	Done
)

func (r Result) String() string {
	if r == Continue {
		return "continue"
	}
	return "done"
}

// State of a gesture.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Idle {
		return "idle"
	}
	return "dragging"
}
