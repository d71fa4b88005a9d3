package testutil

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/hupe1980/livecad/core"
)

// Selected records one Select notification.
type Selected struct {
	Key   string
	Sub   int
	State bool
}

// View records every notification it receives. It implements all view
// interfaces of core.
type View struct {
	Synced     []core.NameSet
	PoseCount  int
	Selections []Selected
	Highlights []core.Highlights
	Statuses   []core.Status
	Errors     []error
	Infos      []string
	// Keys restricts HasKey; nil accepts every key.
	Keys core.NameSet
}

func (v *View) Sync(changed core.NameSet) { v.Synced = append(v.Synced, changed.Clone()) }
func (v *View) ApplyPoses()               { v.PoseCount++ }
func (v *View) ShowError(err error)       { v.Errors = append(v.Errors, err) }
func (v *View) Info(msg string)           { v.Infos = append(v.Infos, msg) }

func (v *View) HasKey(key string) bool {
	return v.Keys == nil || v.Keys.Has(key)
}

func (v *View) Select(key string, sub int, state bool) {
	v.Selections = append(v.Selections, Selected{key, sub, state})
}

func (v *View) SetHighlights(h core.Highlights) { v.Highlights = append(v.Highlights, h) }

func (v *View) SetStatus(s core.Status, _ string) { v.Statuses = append(v.Statuses, s) }

// LastStatus returns the most recent status or StatusModified.
func (v *View) LastStatus() core.Status {
	if len(v.Statuses) == 0 {
		return core.StatusModified
	}
	return v.Statuses[len(v.Statuses)-1]
}

// LastHighlights returns the most recent highlights.
func (v *View) LastHighlights() core.Highlights {
	if len(v.Highlights) == 0 {
		return core.Highlights{}
	}
	return v.Highlights[len(v.Highlights)-1]
}

// Picker is a scripted picker. Pick returns Key and Point unless Miss is
// set; PointFrom maps the screen position onto the plane z = ref.Z.
type Picker struct {
	Key   string
	Point mgl64.Vec3
	Miss  bool
}

func (p *Picker) Pick(x, y float64) (string, mgl64.Vec3, bool) {
	if p.Miss {
		return "", mgl64.Vec3{}, false
	}
	return p.Key, p.Point, true
}

func (p *Picker) PointFrom(x, y float64, ref mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{x, y, ref.Z()}
}
