package trace

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/biotinker/arplace"
	"github.com/biotinker/arplace/internal/simscene"
)

// Events turns a step into interaction events against scene. Waits produce no
// events; the caller advances its clock instead.
func (s Step) Events(scene *simscene.Scene, at time.Time) []arplace.Event {
	switch {
	case s.Touch != nil:
		phase, err := ParsePhase(s.Touch.Phase)
		if err != nil {
			return nil
		}
		return []arplace.Event{arplace.TouchEvent{Phase: phase, Touches: s.Touch.GestureTouches()}}
	case s.Load != nil:
		half := s.Load.Size / 2
		obj := simscene.NewObject(s.Load.Name, r3.Vector{X: half, Y: half, Z: half})
		obj.Reactor = &simscene.Shadow{}
		return []arplace.Event{arplace.ObjectLoaded{Object: obj}}
	case s.Plane != nil:
		return []arplace.Event{arplace.PlaneEvent{Plane: s.Plane.GesturePlane(), Removed: s.Plane.Removed, At: at}}
	case s.Camera != nil:
		eye, target := s.Camera.EyeTarget()
		return []arplace.Event{arplace.FrameEvent{At: at, Apply: func() {
			if cam := scene.Camera(); cam != nil {
				cam.LookAt(eye, target)
			}
		}}}
	}
	return nil
}
