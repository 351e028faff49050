package gesturepose

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/spatialmath"
)

// TouchID identifies a finger for the lifetime of its contact with the screen.
type TouchID uint64

// Touch is a snapshot of one finger on the screen.
type Touch struct {
	ID  TouchID
	Pos r2.Point
}

// Phase is the lifecycle stage reported with a set of touches.
type Phase int

const (
	PhaseBegan Phase = iota
	PhaseMoved
	PhaseEnded
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseBegan:
		return "began"
	case PhaseMoved:
		return "moved"
	case PhaseEnded:
		return "ended"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SessionKind is the class of gesture being interpreted.
type SessionKind int

const (
	SessionNone SessionKind = iota
	SessionSingle
	SessionTwo
)

func (k SessionKind) String() string {
	switch k {
	case SessionNone:
		return "none"
	case SessionSingle:
		return "single"
	case SessionTwo:
		return "two"
	default:
		return "unknown"
	}
}

// KindForCount maps a tracked touch count to the session kind it supports.
func KindForCount(n int) SessionKind {
	switch n {
	case 1:
		return SessionSingle
	case 2:
		return SessionTwo
	default:
		return SessionNone
	}
}

// HitKind classifies where a placement came from.
type HitKind int

const (
	HitNone HitKind = iota
	HitPlane
	HitFeature
	HitInfinitePlane
)

func (h HitKind) String() string {
	switch h {
	case HitNone:
		return "none"
	case HitPlane:
		return "plane"
	case HitFeature:
		return "feature"
	case HitInfinitePlane:
		return "infinite_plane"
	default:
		return "unknown"
	}
}

// PlaneID names a detected plane. It is a lookup key only.
type PlaneID string

// Plane is a detected horizontal surface. Pose is the anchor transform in world
// space; Center and Extent are expressed in the anchor's local frame and only
// their X and Z components are meaningful.
type Plane struct {
	ID     PlaneID
	Pose   spatialmath.Pose
	Center r3.Vector
	Extent r3.Vector
}

// PlaneHit is a ray hit against a bounded plane.
type PlaneHit struct {
	Position r3.Vector
	Plane    PlaneID
}

// PlacementResult is the outcome of resolving a screen point into the world.
type PlacementResult struct {
	Position r3.Vector
	Found    bool
	Kind     HitKind
	Anchor   PlaneID
}

// OnPlane reports whether the result lies on a real or infinite plane. Such
// results are applied without distance filtering.
func (r PlacementResult) OnPlane() bool {
	return r.Kind == HitPlane || r.Kind == HitInfinitePlane
}

// FeatureQuery restricts a feature cloud hit test to a cone around the touch
// ray. A MaxDistance of zero means unbounded.
type FeatureQuery struct {
	ConeAngleDeg float64 `mapstructure:"cone_angle_deg"`
	MinDistance  float64 `mapstructure:"min_distance"`
	MaxDistance  float64 `mapstructure:"max_distance"`
}

// ObjectHandle is the manipulated virtual object. Its lifetime is owned elsewhere.
type ObjectHandle interface {
	Position() r3.Vector
	SetPosition(r3.Vector)
	YRotation() float64
	SetYRotation(float64)
	Scale() float64
	SetScale(float64)
	IsAttached() bool
}

// ScaleReactor is implemented by scene elements that follow the object's scale.
type ScaleReactor interface {
	ReactToScale()
}

// Sensing is the spatial sensing collaborator: hit tests against the tracked
// environment and the object, plus screen projection.
type Sensing interface {
	// HitTestPlanes tests against detected planes within their extents.
	HitTestPlanes(pt r2.Point) (PlaneHit, bool)
	// HitTestFeatures returns feature points inside the query cone, nearest first.
	HitTestFeatures(pt r2.Point, q FeatureQuery) []r3.Vector
	// HitTestInfinitePlane intersects the touch ray with the horizontal plane through ref.
	HitTestInfinitePlane(pt r2.Point, ref r3.Vector) (r3.Vector, bool)
	ProjectToScreen(p r3.Vector) r2.Point
	// HitTestObject reports whether pt lies over obj's bounding volume.
	HitTestObject(pt r2.Point, obj ObjectHandle) bool
	// NearestScaleReactor walks obj's containment chain, obj first.
	NearestScaleReactor(obj ObjectHandle) (ScaleReactor, bool)
	// CameraPosition is false while no camera frame is available.
	CameraPosition() (r3.Vector, bool)
	Viewport() r2.Rect
}

// Attacher adds an object to the scene the first time it is placed.
type Attacher interface {
	Attach(obj ObjectHandle)
}
