package gesturepose

import (
	"math"
	"time"

	"go.viam.com/rdk/spatialmath"
)

// SnapEngine drops an object onto a plane that was just detected or refined
// close beneath (or above) it.
type SnapEngine struct {
	cfg SnapConfig
}

// NewSnapEngine creates a SnapEngine.
func NewSnapEngine(cfg SnapConfig) *SnapEngine {
	return &SnapEngine{cfg: cfg}
}

// Check decides whether obj should settle onto plane. When it should, the
// returned transition animates the object's Y coordinate to the plane height.
func (e *SnapEngine) Check(obj ObjectHandle, plane Plane) (Transition, bool) {
	if plane.Pose == nil {
		return Transition{}, false
	}

	local := spatialmath.Compose(
		spatialmath.PoseInverse(plane.Pose),
		spatialmath.NewPoseFromPoint(obj.Position()),
	).Point()

	// Already resting on the plane.
	if local.Y == 0 {
		return Transition{}, false
	}

	tol := e.cfg.ExtentTolerance
	minX := plane.Center.X - plane.Extent.X/2 - plane.Extent.X*tol
	maxX := plane.Center.X + plane.Extent.X/2 + plane.Extent.X*tol
	minZ := plane.Center.Z - plane.Extent.Z/2 - plane.Extent.Z*tol
	maxZ := plane.Center.Z + plane.Extent.Z/2 + plane.Extent.Z*tol
	if local.X < minX || local.X > maxX || local.Z < minZ || local.Z > maxZ {
		return Transition{}, false
	}

	allow := e.cfg.VerticalAllowance
	if local.Y <= -allow || local.Y >= allow {
		return Transition{}, false
	}

	return Transition{
		From:     obj.Position().Y,
		To:       plane.Pose.Point().Y,
		Duration: e.cfg.Duration,
		Curve:    EaseInEaseOut,
	}, true
}

// Transition interpolates a single coordinate over a fixed duration.
type Transition struct {
	From     float64
	To       float64
	Duration time.Duration
	Curve    func(float64) float64
}

// At returns the value elapsed into the transition.
func (t Transition) At(elapsed time.Duration) float64 {
	if t.Duration <= 0 || elapsed >= t.Duration {
		return t.To
	}
	if elapsed <= 0 {
		return t.From
	}
	p := float64(elapsed) / float64(t.Duration)
	if t.Curve != nil {
		p = t.Curve(p)
	}
	return t.From + (t.To-t.From)*p
}

// Done reports whether elapsed has reached the end of the transition.
func (t Transition) Done(elapsed time.Duration) bool {
	return elapsed >= t.Duration
}

// EaseInEaseOut is the cubic bezier (0.42, 0, 0.58, 1) timing curve.
func EaseInEaseOut(x float64) float64 {
	return cubicBezier(0.42, 0, 0.58, 1, x)
}

// cubicBezier evaluates y for x on the curve through (0,0), (x1,y1), (x2,y2), (1,1).
func cubicBezier(x1, y1, x2, y2, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	bez := func(a, b, t float64) float64 {
		u := 1 - t
		return 3*u*u*t*a + 3*u*t*t*b + t*t*t
	}
	deriv := func(a, b, t float64) float64 {
		u := 1 - t
		return 3*u*u*a + 6*u*t*(b-a) + 3*t*t*(1-b)
	}

	// Newton steps on x(t), falling back to bisection when the slope flattens.
	t := x
	for i := 0; i < 8; i++ {
		dx := bez(x1, x2, t) - x
		d := deriv(x1, x2, t)
		if d < 1e-6 && d > -1e-6 {
			break
		}
		t -= dx / d
	}
	if t < 0 || t > 1 || math.Abs(bez(x1, x2, t)-x) > 1e-7 {
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 40; i++ {
			if bez(x1, x2, t) < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
	}
	return bez(y1, y2, t)
}

