package gesturepose

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

type fakeObject struct {
	pos      r3.Vector
	rot      float64
	scale    float64
	attached bool
}

func newFakeObject() *fakeObject {
	return &fakeObject{scale: 1, attached: true}
}

func (o *fakeObject) Position() r3.Vector { return o.pos }
func (o *fakeObject) SetPosition(p r3.Vector) { o.pos = p }
func (o *fakeObject) YRotation() float64 { return o.rot }
func (o *fakeObject) SetYRotation(a float64) { o.rot = a }
func (o *fakeObject) Scale() float64 { return o.scale }
func (o *fakeObject) SetScale(s float64) { o.scale = s }
func (o *fakeObject) IsAttached() bool { return o.attached }

type fakeAttacher struct{ attached []ObjectHandle }

func (a *fakeAttacher) Attach(obj ObjectHandle) { a.attached = append(a.attached, obj) }

type countingReactor struct{ calls int }

func (r *countingReactor) ReactToScale() { r.calls++ }

// fakeSensing maps screen points to the floor at world (x/100, 0, y/100).
type fakeSensing struct {
	planes     bool
	highFeats  []r3.Vector
	lowFeats   []r3.Vector
	infinite   bool
	objectHit  func(r2.Point) bool
	objScreen  r2.Point
	reactor    *countingReactor
	camera     r3.Vector
	noCamera   bool
	viewport   r2.Rect
	infRef     r3.Vector
	queries    []FeatureQuery
	planeCalls int
	shift      r3.Vector
}

func newFakeSensing() *fakeSensing {
	return &fakeSensing{
		planes:    true,
		objectHit: func(r2.Point) bool { return false },
		camera:    r3.Vector{Y: 1},
		viewport:  r2.RectFromPoints(r2.Point{}, r2.Point{X: 1000, Y: 1000}),
	}
}

func screenToFloor(pt r2.Point) r3.Vector {
	return r3.Vector{X: pt.X / 100, Z: pt.Y / 100}
}

func (f *fakeSensing) HitTestPlanes(pt r2.Point) (PlaneHit, bool) {
	f.planeCalls++
	if !f.planes {
		return PlaneHit{}, false
	}
	return PlaneHit{Position: screenToFloor(pt).Add(f.shift), Plane: "floor"}, true
}

func (f *fakeSensing) HitTestFeatures(_ r2.Point, q FeatureQuery) []r3.Vector {
	f.queries = append(f.queries, q)
	if q == DefaultConfig().Placement.Features {
		return f.highFeats
	}
	return f.lowFeats
}

func (f *fakeSensing) HitTestInfinitePlane(pt r2.Point, ref r3.Vector) (r3.Vector, bool) {
	f.infRef = ref
	if !f.infinite {
		return r3.Vector{}, false
	}
	p := screenToFloor(pt)
	p.Y = ref.Y
	return p, true
}

func (f *fakeSensing) ProjectToScreen(r3.Vector) r2.Point { return f.objScreen }

func (f *fakeSensing) HitTestObject(pt r2.Point, _ ObjectHandle) bool { return f.objectHit(pt) }

func (f *fakeSensing) NearestScaleReactor(ObjectHandle) (ScaleReactor, bool) {
	if f.reactor == nil {
		return nil, false
	}
	return f.reactor, true
}

func (f *fakeSensing) CameraPosition() (r3.Vector, bool) { return f.camera, !f.noCamera }

func (f *fakeSensing) Viewport() r2.Rect { return f.viewport }

func within(pt r2.Point, lo, hi r2.Point) bool {
	return pt.X >= lo.X && pt.X <= hi.X && pt.Y >= lo.Y && pt.Y <= hi.Y
}

func vecNear(a, b r3.Vector, tol float64) bool {
	return a.Sub(b).Norm() <= tol
}

func r2Pt(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}

type stubProbe struct {
	hit func(r2.Point) bool
	cov float64
}

func (p stubProbe) hitsObject(pt r2.Point) bool {
	if p.hit == nil {
		return false
	}
	return p.hit(pt)
}

func (p stubProbe) coverage() float64 { return p.cov }

func alwaysHit(r2.Point) bool { return true }
