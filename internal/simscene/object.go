package simscene

import (
	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"go.viam.com/rdk/spatialmath"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// Node is a scene graph ancestor. A node with a Reactor is notified when an
// object below it is rescaled.
type Node struct {
	Name    string
	Reactor gesturepose.ScaleReactor
	Parent  *Node
}

// Object is a box-shaped virtual object. Its geometry is HalfExtents in the
// object frame, scaled uniformly and rotated about Y.
type Object struct {
	ID          string
	Name        string
	HalfExtents r3.Vector
	Parent      *Node
	Reactor     gesturepose.ScaleReactor

	pos      r3.Vector
	rot      float64
	scale    float64
	attached bool
}

// NewObject creates a detached object of unit scale at the origin.
func NewObject(name string, halfExtents r3.Vector) *Object {
	return &Object{
		ID:          uuid.NewString(),
		Name:        name,
		HalfExtents: halfExtents,
		scale:       1,
	}
}

func (o *Object) Position() r3.Vector { return o.pos }
func (o *Object) SetPosition(p r3.Vector) { o.pos = p }
func (o *Object) YRotation() float64 { return o.rot }
func (o *Object) SetYRotation(a float64) { o.rot = a }
func (o *Object) Scale() float64 { return o.scale }
func (o *Object) SetScale(s float64) { o.scale = s }
func (o *Object) IsAttached() bool { return o.attached }

// Pose is the object's rigid transform without scale.
func (o *Object) Pose() spatialmath.Pose {
	return spatialmath.NewPose(o.pos, &spatialmath.R4AA{Theta: o.rot, RY: 1})
}

// Shadow is a contact shadow under an object that resizes when the object is scaled.
type Shadow struct {
	Updates int
}

// ReactToScale records a resize.
func (s *Shadow) ReactToScale() {
	s.Updates++
}
