package simscene

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

func testCamera() *Camera {
	viewport := r2.RectFromPoints(r2.Point{}, r2.Point{X: 800, Y: 600})
	return NewCamera(r3.Vector{Y: 1.5, Z: 2}, r3.Vector{}, viewport, 60)
}

func floorPlane(size float64) gesturepose.Plane {
	return gesturepose.Plane{
		ID:     "floor",
		Pose:   spatialmath.NewZeroPose(),
		Extent: r3.Vector{X: size, Z: size},
	}
}

func vecNear(a, b r3.Vector, tol float64) bool {
	return a.Sub(b).Norm() <= tol
}

func mustProject(t *testing.T, c *Camera, p r3.Vector) r2.Point {
	t.Helper()
	pt, ok := c.Project(p)
	if !ok {
		t.Fatalf("point %v is behind the camera", p)
	}
	return pt
}

func TestCamera_ProjectRayRoundTrip(t *testing.T) {
	c := testCamera()

	if center := mustProject(t, c, r3.Vector{}); center.Sub(c.Viewport.Center()).Norm() > 1e-9 {
		t.Errorf("target should project to the viewport centre, got %v", center)
	}

	for _, pt := range []r2.Point{{X: 0, Y: 0}, {X: 650, Y: 120}, {X: 400, Y: 599}} {
		world := c.Eye.Add(c.Ray(pt).Mul(3))
		if got := mustProject(t, c, world); got.Sub(pt).Norm() > 1e-6 {
			t.Errorf("round trip of %v gave %v", pt, got)
		}
	}

	if _, ok := c.Project(c.Eye.Sub(c.Forward)); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestCamera_ScreenAxes(t *testing.T) {
	c := testCamera()
	right := mustProject(t, c, r3.Vector{X: 0.5})
	if right.X <= 400 {
		t.Errorf("+X should appear right of centre, got %v", right)
	}
	up := mustProject(t, c, r3.Vector{Y: 0.5})
	if up.Y >= 300 {
		t.Errorf("+Y should appear above centre, got %v", up)
	}
}

func TestScene_HitTestPlanes(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	s.UpsertPlane(floorPlane(4))

	target := r3.Vector{X: 0.5, Z: 0.3}
	hit, ok := s.HitTestPlanes(mustProject(t, s.Camera(), target))
	if !ok {
		t.Fatal("expected a floor hit")
	}
	if hit.Plane != "floor" || !vecNear(hit.Position, target, 1e-6) {
		t.Errorf("unexpected hit %+v", hit)
	}

	// Outside the extent.
	if _, ok := s.HitTestPlanes(mustProject(t, s.Camera(), r3.Vector{X: 2.5})); ok {
		t.Error("expected a miss outside the plane extent")
	}
}

func TestScene_HitTestPlanesNearestWins(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	s.UpsertPlane(floorPlane(4))
	s.UpsertPlane(gesturepose.Plane{
		ID:     "table",
		Pose:   spatialmath.NewPoseFromPoint(r3.Vector{Y: 0.5}),
		Extent: r3.Vector{X: 2, Z: 2},
	})

	hit, ok := s.HitTestPlanes(s.Camera().Viewport.Center())
	if !ok || hit.Plane != "table" {
		t.Fatalf("expected the table in front of the floor, got %+v %v", hit, ok)
	}
	if math.Abs(hit.Position.Y-0.5) > 1e-6 {
		t.Errorf("expected hit at table height, got %v", hit.Position)
	}
}

func TestScene_PlaneCenterOffset(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	s.UpsertPlane(gesturepose.Plane{
		ID:     "rug",
		Pose:   spatialmath.NewZeroPose(),
		Center: r3.Vector{X: 1},
		Extent: r3.Vector{X: 0.5, Z: 0.5},
	})

	if _, ok := s.HitTestPlanes(mustProject(t, s.Camera(), r3.Vector{})); ok {
		t.Error("origin lies outside the offset extent")
	}
	if _, ok := s.HitTestPlanes(mustProject(t, s.Camera(), r3.Vector{X: 1.1})); !ok {
		t.Error("expected a hit inside the offset extent")
	}
}

func TestScene_PlaneLifecycle(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	if !s.UpsertPlane(floorPlane(1)) {
		t.Error("first upsert should report a new plane")
	}
	if s.UpsertPlane(floorPlane(2)) {
		t.Error("second upsert should report an update")
	}
	if p, _ := s.Plane("floor"); p.Extent.X != 2 {
		t.Errorf("expected updated extent, got %v", p.Extent)
	}
	s.RemovePlane("floor")
	if len(s.Planes()) != 0 {
		t.Errorf("expected no planes, got %d", len(s.Planes()))
	}
}

func TestScene_HitTestFeatures(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	if err := s.AddFeatures(r3.Vector{X: 1, Z: 1}, r3.Vector{X: 0.05}, r3.Vector{}); err != nil {
		t.Fatal(err)
	}
	center := s.Camera().Viewport.Center()

	hits := s.HitTestFeatures(center, gesturepose.FeatureQuery{ConeAngleDeg: 18, MinDistance: 0.2, MaxDistance: 10})
	if len(hits) != 2 {
		t.Fatalf("expected 2 features in the cone, got %v", hits)
	}
	if !vecNear(hits[0], r3.Vector{}, 1e-9) {
		t.Errorf("expected the on-ray feature first, got %v", hits[0])
	}

	// The eye is 2.5 away from the origin.
	if hits := s.HitTestFeatures(center, gesturepose.FeatureQuery{ConeAngleDeg: 18, MinDistance: 0.2, MaxDistance: 2}); len(hits) != 0 {
		t.Errorf("expected max distance to exclude everything, got %v", hits)
	}

	if hits := s.HitTestFeatures(center, gesturepose.FeatureQuery{ConeAngleDeg: 90}); len(hits) != 3 {
		t.Errorf("expected the wide query to see all features, got %v", hits)
	}
}

func TestScene_HitTestInfinitePlane(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	center := s.Camera().Viewport.Center()

	p, ok := s.HitTestInfinitePlane(center, r3.Vector{X: 7, Z: -3})
	if !ok || !vecNear(p, r3.Vector{}, 1e-6) {
		t.Errorf("expected the origin, got %v %v", p, ok)
	}

	if _, ok := s.HitTestInfinitePlane(center, r3.Vector{Y: 2}); ok {
		t.Error("a plane above the eye cannot be hit by a downward ray")
	}
}

func TestScene_HitTestObject(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	obj := NewObject("cube", r3.Vector{X: 0.1, Y: 0.1, Z: 0.1})
	s.AddObject(obj)
	center := s.Camera().Viewport.Center()

	if !s.HitTestObject(center, obj) {
		t.Error("expected the centre ray to hit the cube")
	}
	aside := mustProject(t, s.Camera(), r3.Vector{X: 0.3})
	if s.HitTestObject(aside, obj) {
		t.Error("expected a miss beside the cube")
	}

	obj.SetScale(5)
	if !s.HitTestObject(aside, obj) {
		t.Error("expected the scaled cube to cover the point")
	}

	other := NewObject("stray", r3.Vector{X: 1, Y: 1, Z: 1})
	if s.HitTestObject(center, other) {
		t.Error("objects outside the scene are never hit")
	}
}

func TestScene_NearestScaleReactor(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	shadow := &Shadow{}
	obj := NewObject("lamp", r3.Vector{X: 0.1, Y: 0.1, Z: 0.1})
	obj.Parent = &Node{Name: "mesh", Parent: &Node{Name: "root", Reactor: shadow}}
	s.AddObject(obj)

	r, ok := s.NearestScaleReactor(obj)
	if !ok {
		t.Fatal("expected the ancestor reactor")
	}
	r.ReactToScale()
	if shadow.Updates != 1 {
		t.Errorf("expected 1 shadow update, got %d", shadow.Updates)
	}

	own := &Shadow{}
	obj.Reactor = own
	if r, _ := s.NearestScaleReactor(obj); r != own {
		t.Error("the object's own reactor should win")
	}

	bare := NewObject("bare", r3.Vector{})
	s.AddObject(bare)
	if _, ok := s.NearestScaleReactor(bare); ok {
		t.Error("expected no reactor")
	}
}

func TestScene_NoCameraFrame(t *testing.T) {
	s := New(nil, logging.NewTestLogger(t))
	s.UpsertPlane(floorPlane(4))

	if _, ok := s.CameraPosition(); ok {
		t.Error("expected no camera position")
	}
	if !s.Viewport().IsEmpty() {
		t.Error("expected an empty viewport")
	}
	if _, ok := s.HitTestPlanes(r2.Point{}); ok {
		t.Error("expected no plane hit without a frame")
	}
}

func TestScene_Attach(t *testing.T) {
	s := New(testCamera(), logging.NewTestLogger(t))
	obj := NewObject("cube", r3.Vector{X: 0.1, Y: 0.1, Z: 0.1})
	if obj.IsAttached() {
		t.Fatal("new objects start detached")
	}
	s.Attach(obj)
	if !obj.IsAttached() || !s.HitTestObject(s.Camera().Viewport.Center(), obj) {
		t.Error("attached object should be part of the scene")
	}
	s.RemoveObject(obj)
	if obj.IsAttached() {
		t.Error("removed object should be detached")
	}
}

// A one-finger drag across a real floor keeps the grab offset.
func TestScene_DragAcrossFloor(t *testing.T) {
	logger := logging.NewTestLogger(t)
	s := New(testCamera(), logger)
	s.UpsertPlane(floorPlane(10))

	obj := NewObject("cube", r3.Vector{X: 0.1, Y: 0.1, Z: 0.1})
	s.AddObject(obj)

	cfg := gesturepose.DefaultConfig()
	placer := gesturepose.NewPlacer(s, cfg.Placement, s, logger)
	placer.PlaceAt(obj, r3.Vector{})
	c := gesturepose.NewController(obj, s, placer, cfg.Gesture, logger)

	start := s.ProjectToScreen(obj.Position())
	if err := c.Begin([]gesturepose.Touch{{ID: 1, Pos: start}}); err != nil {
		t.Fatal(err)
	}
	// The first move past the drag threshold grabs the object in place.
	grab := start.Add(r2.Point{Y: 40})
	if err := c.Update([]gesturepose.Touch{{ID: 1, Pos: grab}}, gesturepose.PhaseMoved); err != nil {
		t.Fatal(err)
	}
	if !vecNear(obj.Position(), r3.Vector{}, 1e-6) {
		t.Errorf("object jumped when grabbed: %v", obj.Position())
	}

	goal := r3.Vector{X: 0.4, Z: 0.2}
	end := mustProject(t, s.Camera(), goal).Add(grab.Sub(start))
	if err := c.Update([]gesturepose.Touch{{ID: 1, Pos: end}}, gesturepose.PhaseMoved); err != nil {
		t.Fatal(err)
	}
	if !vecNear(obj.Position(), goal, 1e-6) {
		t.Errorf("expected object at %v, got %v", goal, obj.Position())
	}
	if err := c.Update([]gesturepose.Touch{{ID: 1, Pos: end}}, gesturepose.PhaseEnded); err != nil {
		t.Fatal(err)
	}
	if !vecNear(obj.Position(), goal, 1e-6) {
		t.Errorf("drag release should not move the object, got %v", obj.Position())
	}
}
