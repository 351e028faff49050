package arplace

import (
	"github.com/golang/geo/r3"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// FocusTracker resolves the centre of the screen every frame and remembers
// the last world position found there. New objects are dropped at that spot.
type FocusTracker struct {
	sensing  gesturepose.Sensing
	resolver *gesturepose.Resolver
	last     r3.Vector
	kind     gesturepose.HitKind
	known    bool
}

// NewFocusTracker creates a tracker resolving through resolver.
func NewFocusTracker(sensing gesturepose.Sensing, resolver *gesturepose.Resolver) *FocusTracker {
	return &FocusTracker{sensing: sensing, resolver: resolver}
}

// Update resolves the viewport centre. A miss keeps the previous position.
func (f *FocusTracker) Update() bool {
	vp := f.sensing.Viewport()
	if vp.IsEmpty() {
		return false
	}
	var ref *r3.Vector
	if f.known {
		last := f.last
		ref = &last
	}
	res := f.resolver.Resolve(vp.Center(), ref, false)
	if !res.Found {
		return false
	}
	f.last = res.Position
	f.kind = res.Kind
	f.known = true
	return true
}

// Last returns the most recent focus position.
func (f *FocusTracker) Last() (r3.Vector, bool) {
	return f.last, f.known
}

// Kind returns how the last focus position was found.
func (f *FocusTracker) Kind() gesturepose.HitKind {
	return f.kind
}
