package arplace

import (
	"time"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// Animator plays a vertical snap transition on an object, one frame at a time.
type Animator struct {
	obj     gesturepose.ObjectHandle
	tr      gesturepose.Transition
	started time.Time
	active  bool
}

// Start begins moving obj's height along tr from now. A running animation is replaced.
func (a *Animator) Start(obj gesturepose.ObjectHandle, tr gesturepose.Transition, now time.Time) {
	a.obj = obj
	a.tr = tr
	a.started = now
	a.active = true
}

// Step applies the transition at now and reports whether it is still running.
func (a *Animator) Step(now time.Time) bool {
	if !a.active {
		return false
	}
	elapsed := now.Sub(a.started)
	pos := a.obj.Position()
	pos.Y = a.tr.At(elapsed)
	a.obj.SetPosition(pos)
	if a.tr.Done(elapsed) {
		a.Cancel()
	}
	return a.active
}

// Pending reports whether an animation is running.
func (a *Animator) Pending() bool {
	return a.active
}

// Cancel stops the animation where it is.
func (a *Animator) Cancel() {
	a.active = false
	a.obj = nil
}
