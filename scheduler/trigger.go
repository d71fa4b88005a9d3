package scheduler

import (
	"fmt"
	"strings"
)

// TriggerMode governs automatic execution after edits.
type TriggerMode int

const (
	// Manual never executes on edits.
	Manual TriggerMode = iota
	// OnNewline executes when the inserted text contains a line break.
	OnNewline
	// Continuous executes on every edit.
	Continuous
)

func (m TriggerMode) String() string {
	switch m {
	case Manual:
		return "manual"
	case OnNewline:
		return "newline"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("TriggerMode(%d)", int(m))
	}
}

// ParseTriggerMode parses manual, newline or continuous.
func ParseTriggerMode(s string) (TriggerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return Manual, nil
	case "newline", "onnewline", "":
		return OnNewline, nil
	case "continuous":
		return Continuous, nil
	default:
		return Manual, fmt.Errorf("unknown trigger mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m TriggerMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *TriggerMode) UnmarshalText(b []byte) error {
	v, err := ParseTriggerMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Fires reports whether an edit inserting text triggers an execution.
func (m TriggerMode) Fires(inserted string) bool {
	switch m {
	case Continuous:
		return true
	case OnNewline:
		return strings.Contains(inserted, "\n")
	default:
		return false
	}
}
