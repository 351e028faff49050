package gesturepose

import "github.com/golang/geo/r2"

// objectProbe answers questions about the object's on-screen footprint.
type objectProbe interface {
	hitsObject(pt r2.Point) bool
	coverage() float64
}

// singleTouch drags the object with one finger, or teleports it on a tap.
type singleTouch struct {
	initial         r2.Point
	latest          r2.Point
	dragOffset      r2.Point
	threshold       float64
	thresholdPassed bool
	beganOnObject   bool
	moved           bool
}

func newSingleTouch(t Touch, threshold float64, probe objectProbe) *singleTouch {
	return &singleTouch{
		initial:       t.Pos,
		latest:        t.Pos,
		threshold:     threshold,
		beganOnObject: probe.hitsObject(t.Pos),
	}
}

// update tracks the finger. objectScreen is the object's current projection.
func (s *singleTouch) update(t Touch, objectScreen r2.Point) []Effect {
	s.latest = t.Pos

	if !s.thresholdPassed {
		if s.latest.Sub(s.initial).Norm() >= s.threshold {
			s.thresholdPassed = true
			// Grab the object where the finger is so it does not jump.
			s.dragOffset = s.latest.Sub(objectScreen)
		}
	}

	if s.thresholdPassed && s.beganOnObject {
		s.moved = true
		return []Effect{TranslateEffect{
			Screen:        s.latest.Sub(s.dragOffset),
			InfinitePlane: true,
		}}
	}
	return nil
}

// finish decides whether the lifted finger was a teleporting tap.
func (s *singleTouch) finish(remaining int, probe objectProbe, teleportMin float64) []Effect {
	// Another finger joined: this becomes a two-finger gesture instead.
	if remaining > 1 {
		return nil
	}
	if s.moved {
		return nil
	}

	// A tap on the object leaves it alone, unless the object fills so much of
	// the screen that the tap is probably aimed past it.
	if probe.hitsObject(s.latest) && probe.coverage() <= teleportMin {
		return nil
	}
	if s.thresholdPassed {
		return nil
	}
	return []Effect{TranslateEffect{Screen: s.latest, Instantly: true}}
}
