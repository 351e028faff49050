package gesturepose

import (
	"math"

	"github.com/golang/geo/r2"
)

// latch is a one-way activation flag with a baseline and a harder threshold.
type latch struct {
	limits  Thresholds
	passed  bool
	allowed bool
}

// limit picks the threshold to use given whether another channel already latched.
func (l latch) limit(othersPassed bool) float64 {
	if othersPassed {
		return l.limits.Harder
	}
	return l.limits.Baseline
}

// twoTouch combines translation, rotation and scale from two fingers. Each
// channel latches independently; a channel needs a larger motion once another
// one has latched so that one ambiguous motion does not trigger several.
type twoTouch struct {
	first  TouchID
	second TouchID

	translate  latch
	dragOffset r2.Point
	initialMid r2.Point

	rotate             latch
	initialFingerAngle float64
	baseObjectAngle    float64

	scale           latch
	initialSpan     float64
	baseSpan        float64
	objectBaseScale float64
}

func newTwoTouch(a, b Touch, obj ObjectHandle, cfg GestureConfig, probe objectProbe) *twoTouch {
	g := &twoTouch{
		first:           a.ID,
		second:          b.ID,
		translate:       latch{limits: cfg.Translate},
		rotate:          latch{limits: cfg.Rotate},
		scale:           latch{limits: cfg.Scale},
		initialMid:      a.Pos.Add(b.Pos).Mul(0.5),
		objectBaseScale: obj.Scale(),
		baseObjectAngle: obj.YRotation(),
	}

	onObject := false
	for _, pt := range eligibilitySamples(a.Pos, b.Pos) {
		if probe.hitsObject(pt) {
			onObject = true
			break
		}
	}
	g.translate.allowed = onObject
	g.rotate.allowed = onObject
	// Pinching off the object still works when it has shrunk too small to hit.
	g.scale.allowed = cfg.AllowPinchScale && (onObject || g.objectBaseScale < cfg.RescueScale)

	span := a.Pos.Sub(b.Pos)
	g.initialSpan = span.Norm()
	g.initialFingerAngle = fingerAngle(span)
	return g
}

// roles orders the live touches as first and second by identity.
func (g *twoTouch) roles(touches []Touch) (Touch, Touch) {
	if touches[0].ID == g.first {
		return touches[0], touches[1]
	}
	return touches[1], touches[0]
}

// update consumes the two live touches. objectScreen is the object's projection.
func (g *twoTouch) update(touches []Touch, objectScreen r2.Point) []Effect {
	a, b := g.roles(touches)

	var effects []Effect
	if g.translate.allowed {
		if e, ok := g.updateTranslation(a.Pos.Add(b.Pos).Mul(0.5), objectScreen); ok {
			effects = append(effects, e)
		}
	}

	span := a.Pos.Sub(b.Pos)
	if g.rotate.allowed {
		if e, ok := g.updateRotation(span); ok {
			effects = append(effects, e)
		}
	}
	if g.scale.allowed {
		if e, ok := g.updateScale(span); ok {
			effects = append(effects, e)
		}
	}
	return effects
}

func (g *twoTouch) updateTranslation(mid, objectScreen r2.Point) (Effect, bool) {
	if !g.translate.passed {
		limit := g.translate.limit(g.rotate.passed || g.scale.passed)
		if mid.Sub(g.initialMid).Norm() >= limit {
			g.translate.passed = true
			g.dragOffset = mid.Sub(objectScreen)
		}
	}
	if !g.translate.passed {
		return nil, false
	}
	return TranslateEffect{Screen: mid.Sub(g.dragOffset), InfinitePlane: true}, true
}

func (g *twoTouch) updateRotation(span r2.Point) (Effect, bool) {
	delta := normalizeAngle(g.initialFingerAngle - fingerAngle(span))

	if !g.rotate.passed {
		limit := g.rotate.limit(g.translate.passed || g.scale.passed)
		if math.Abs(delta) > limit {
			g.rotate.passed = true
			// Absorb the dead zone so the object does not jump at the latch.
			if delta > 0 {
				g.baseObjectAngle += limit
			} else {
				g.baseObjectAngle -= limit
			}
		}
	}
	if !g.rotate.passed {
		return nil, false
	}
	// Subtracting is right when looking down at the object, which is the common case.
	return RotateEffect{Angle: g.baseObjectAngle - delta}, true
}

func (g *twoTouch) updateScale(span r2.Point) (Effect, bool) {
	dist := span.Norm()

	if !g.scale.passed {
		limit := g.scale.limit(g.translate.passed || g.rotate.passed)
		if math.Abs(dist-g.initialSpan) > limit {
			g.scale.passed = true
			g.baseSpan = dist
		}
	}
	if !g.scale.passed || g.baseSpan == 0 {
		return nil, false
	}
	return ScaleEffect{Scale: g.objectBaseScale * (dist / g.baseSpan)}, true
}

// fingerAngle is the angle of half the inter-touch vector, measured from the Y axis.
func fingerAngle(span r2.Point) float64 {
	half := span.Mul(0.5)
	return math.Atan2(half.X, half.Y)
}

// normalizeAngle wraps a into (-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
