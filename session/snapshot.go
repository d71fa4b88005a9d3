package session

import (
	"errors"
	"time"

	"github.com/hupe1980/livecad/core"
)

// ErrNotFound is returned when no snapshot exists for a script.
var ErrNotFound = errors.New("session snapshot not found")

// Snapshot is the restorable state of a session.
type Snapshot struct {
	// Script names the script the snapshot belongs to.
	Script  string               `json:"script" yaml:"script"`
	Pinned  []string             `json:"pinned" yaml:"pinned"`
	Trigger string               `json:"trigger" yaml:"trigger"`
	Target  int                  `json:"target" yaml:"target"`
	Poses   map[string]core.Pose `json:"poses" yaml:"poses"`
	Saved   time.Time            `json:"saved" yaml:"saved"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Pinned = append([]string(nil), s.Pinned...)
	if s.Poses != nil {
		c.Poses = make(map[string]core.Pose, len(s.Poses))
		for k, v := range s.Poses {
			c.Poses[k] = v
		}
	}
	return c
}

// Store persists snapshots by script name.
type Store interface {
	Get(script string) (Snapshot, error)
	Save(snap Snapshot) error
	Delete(script string) error
}
