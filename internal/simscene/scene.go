package simscene

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"
	"go.viam.com/rdk/utils"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// Scene holds everything a hit test can touch. It is not safe for concurrent
// use; drive it from the interaction goroutine.
type Scene struct {
	camera   *Camera
	planes   map[gesturepose.PlaneID]gesturepose.Plane
	order    []gesturepose.PlaneID
	features pointcloud.PointCloud
	objects  map[gesturepose.ObjectHandle]*Object
	logger   logging.Logger
}

// New creates an empty scene viewed through camera.
func New(camera *Camera, logger logging.Logger) *Scene {
	return &Scene{
		camera:   camera,
		planes:   make(map[gesturepose.PlaneID]gesturepose.Plane),
		features: pointcloud.NewBasicEmpty(),
		objects:  make(map[gesturepose.ObjectHandle]*Object),
		logger:   logger,
	}
}

// Camera returns the scene camera, or nil when tracking is lost.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// SetCamera replaces the camera. A nil camera means no frame is available.
func (s *Scene) SetCamera(c *Camera) {
	s.camera = c
}

// AddObject makes obj hit-testable. It is attached on first placement.
func (s *Scene) AddObject(obj *Object) {
	s.objects[obj] = obj
}

// RemoveObject drops obj from the scene and detaches it.
func (s *Scene) RemoveObject(obj *Object) {
	obj.attached = false
	delete(s.objects, obj)
}

// UpsertPlane adds or replaces a plane. It reports whether the plane is new.
func (s *Scene) UpsertPlane(p gesturepose.Plane) bool {
	_, exists := s.planes[p.ID]
	if !exists {
		s.order = append(s.order, p.ID)
	}
	s.planes[p.ID] = p
	return !exists
}

// RemovePlane forgets a plane.
func (s *Scene) RemovePlane(id gesturepose.PlaneID) {
	if _, ok := s.planes[id]; !ok {
		return
	}
	delete(s.planes, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Plane looks up a plane by ID.
func (s *Scene) Plane(id gesturepose.PlaneID) (gesturepose.Plane, bool) {
	p, ok := s.planes[id]
	return p, ok
}

// Planes returns the planes in insertion order.
func (s *Scene) Planes() []gesturepose.Plane {
	out := make([]gesturepose.Plane, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.planes[id])
	}
	return out
}

// SetFeatures replaces the feature point cloud.
func (s *Scene) SetFeatures(cloud pointcloud.PointCloud) {
	s.features = cloud
}

// AddFeatures appends points to the feature cloud.
func (s *Scene) AddFeatures(points ...r3.Vector) error {
	for _, p := range points {
		if err := s.features.Set(p, pointcloud.NewBasicData()); err != nil {
			return err
		}
	}
	return nil
}

// Features returns the feature point cloud.
func (s *Scene) Features() pointcloud.PointCloud {
	return s.features
}

// HitTestPlanes intersects the ray through pt with every plane's extent and
// returns the nearest hit.
func (s *Scene) HitTestPlanes(pt r2.Point) (gesturepose.PlaneHit, bool) {
	if s.camera == nil {
		return gesturepose.PlaneHit{}, false
	}
	origin, dir := s.camera.Eye, s.camera.Ray(pt)

	best := math.Inf(1)
	var hit gesturepose.PlaneHit
	for _, id := range s.order {
		plane := s.planes[id]
		t, ok := intersectPlane(plane, origin, dir)
		if !ok || t >= best {
			continue
		}
		best = t
		hit = gesturepose.PlaneHit{Position: origin.Add(dir.Mul(t)), Plane: id}
	}
	return hit, !math.IsInf(best, 1)
}

// intersectPlane returns the ray distance to plane within its extent.
func intersectPlane(plane gesturepose.Plane, origin, dir r3.Vector) (float64, bool) {
	if plane.Pose == nil {
		return 0, false
	}
	o := toLocal(plane.Pose, origin)
	d := toLocal(plane.Pose, origin.Add(dir)).Sub(o)
	if math.Abs(d.Y) < 1e-12 {
		return 0, false
	}
	t := -o.Y / d.Y
	if t <= 0 {
		return 0, false
	}
	local := o.Add(d.Mul(t))
	if math.Abs(local.X-plane.Center.X) > plane.Extent.X/2 || math.Abs(local.Z-plane.Center.Z) > plane.Extent.Z/2 {
		return 0, false
	}
	return t, true
}

// HitTestFeatures returns feature points inside the query cone around the ray
// through pt, closest to the ray first.
func (s *Scene) HitTestFeatures(pt r2.Point, q gesturepose.FeatureQuery) []r3.Vector {
	if s.camera == nil || s.features == nil || s.features.Size() == 0 {
		return nil
	}
	origin, dir := s.camera.Eye, s.camera.Ray(pt)
	halfCone := utils.DegToRad(q.ConeAngleDeg / 2)

	type candidate struct {
		p   r3.Vector
		off float64
	}
	var hits []candidate
	s.features.Iterate(0, 0, func(p r3.Vector, _ pointcloud.Data) bool {
		v := p.Sub(origin)
		dist := v.Norm()
		if dist < 1e-9 || dist < q.MinDistance || (q.MaxDistance > 0 && dist > q.MaxDistance) {
			return true
		}
		angle := v.Angle(dir).Radians()
		if angle > halfCone {
			return true
		}
		hits = append(hits, candidate{p: p, off: dist * math.Sin(angle)})
		return true
	})

	sort.Slice(hits, func(i, j int) bool { return hits[i].off < hits[j].off })
	out := make([]r3.Vector, len(hits))
	for i, h := range hits {
		out[i] = h.p
	}
	return out
}

// HitTestInfinitePlane intersects the ray through pt with the horizontal plane
// at the height of ref.
func (s *Scene) HitTestInfinitePlane(pt r2.Point, ref r3.Vector) (r3.Vector, bool) {
	if s.camera == nil {
		return r3.Vector{}, false
	}
	origin, dir := s.camera.Eye, s.camera.Ray(pt)
	if math.Abs(dir.Y) < 1e-12 {
		return r3.Vector{}, false
	}
	t := (ref.Y - origin.Y) / dir.Y
	if t <= 0 {
		return r3.Vector{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// ProjectToScreen maps p to screen coordinates. Points behind the camera
// project to the viewport centre.
func (s *Scene) ProjectToScreen(p r3.Vector) r2.Point {
	if s.camera == nil {
		return r2.Point{}
	}
	pt, ok := s.camera.Project(p)
	if !ok {
		return s.camera.Viewport.Center()
	}
	return pt
}

// HitTestObject reports whether the ray through pt hits obj's box.
func (s *Scene) HitTestObject(pt r2.Point, obj gesturepose.ObjectHandle) bool {
	o, ok := s.objects[obj]
	if !ok || s.camera == nil || o.scale <= 0 {
		return false
	}
	origin, dir := s.camera.Eye, s.camera.Ray(pt)
	pose := o.Pose()
	lo := toLocal(pose, origin).Mul(1 / o.scale)
	ld := toLocal(pose, origin.Add(dir)).Mul(1 / o.scale).Sub(lo)
	return rayHitsBox(lo, ld, o.HalfExtents)
}

// rayHitsBox is the slab test against an origin-centred box.
func rayHitsBox(origin, dir, half r3.Vector) bool {
	tmin, tmax := 0.0, math.Inf(1)
	axes := [3][3]float64{
		{origin.X, dir.X, half.X},
		{origin.Y, dir.Y, half.Y},
		{origin.Z, dir.Z, half.Z},
	}
	for _, a := range axes {
		o, d, h := a[0], a[1], a[2]
		if math.Abs(d) < 1e-12 {
			if o < -h || o > h {
				return false
			}
			continue
		}
		t1, t2 := (-h-o)/d, (h-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// NearestScaleReactor walks from obj up its ancestors to the first reactor.
func (s *Scene) NearestScaleReactor(obj gesturepose.ObjectHandle) (gesturepose.ScaleReactor, bool) {
	o, ok := s.objects[obj]
	if !ok {
		return nil, false
	}
	if o.Reactor != nil {
		return o.Reactor, true
	}
	for n := o.Parent; n != nil; n = n.Parent {
		if n.Reactor != nil {
			return n.Reactor, true
		}
	}
	return nil, false
}

// CameraPosition returns the eye position when a frame is available.
func (s *Scene) CameraPosition() (r3.Vector, bool) {
	if s.camera == nil {
		return r3.Vector{}, false
	}
	return s.camera.Eye, true
}

// Viewport returns the screen bounds, empty when there is no frame.
func (s *Scene) Viewport() r2.Rect {
	if s.camera == nil {
		return r2.EmptyRect()
	}
	return s.camera.Viewport
}

// Attach marks obj as part of the scene.
func (s *Scene) Attach(obj gesturepose.ObjectHandle) {
	o, ok := obj.(*Object)
	if !ok {
		return
	}
	if _, known := s.objects[obj]; !known {
		s.objects[obj] = o
	}
	o.attached = true
	s.logger.Debugf("attached object %s (%s)", o.Name, o.ID)
}

// Detach removes obj from the scene if it is there.
func (s *Scene) Detach(obj gesturepose.ObjectHandle) {
	if o, ok := s.objects[obj]; ok {
		s.RemoveObject(o)
	}
}

// toLocal expresses a world point in the frame of pose.
func toLocal(pose spatialmath.Pose, p r3.Vector) r3.Vector {
	return spatialmath.Compose(spatialmath.PoseInverse(pose), spatialmath.NewPoseFromPoint(p)).Point()
}
