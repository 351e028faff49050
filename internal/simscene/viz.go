package simscene

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// Millimetres per scene meter. Geometry for viewers is built in millimetres.
const Millimetres = 1000

// planeThickness is how thick a plane is drawn, in millimetres.
const planeThickness = 2

// Scaled copies cloud with every point multiplied by factor.
func Scaled(cloud pointcloud.PointCloud, factor float64) (pointcloud.PointCloud, error) {
	scaled := pointcloud.NewBasicPointCloud(cloud.Size())
	var setErr error
	cloud.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		setErr = scaled.Set(p.Mul(factor), d)
		return setErr == nil
	})
	if setErr != nil {
		return nil, setErr
	}
	return scaled, nil
}

// inMillimetres rescales a pose's translation from meters.
func inMillimetres(p spatialmath.Pose) spatialmath.Pose {
	return spatialmath.NewPose(p.Point().Mul(Millimetres), p.Orientation())
}

// PlaneGeometry is the plane's extent as a thin box, in millimetres.
func PlaneGeometry(p gesturepose.Plane) (spatialmath.Geometry, error) {
	anchor := p.Pose
	if anchor == nil {
		anchor = spatialmath.NewZeroPose()
	}
	center := spatialmath.Compose(anchor, spatialmath.NewPoseFromPoint(p.Center))
	dims := r3.Vector{X: p.Extent.X * Millimetres, Y: planeThickness, Z: p.Extent.Z * Millimetres}
	return spatialmath.NewBox(inMillimetres(center), dims, "plane_"+string(p.ID))
}

// PoseMM is the object's pose with its position in millimetres.
func (o *Object) PoseMM() spatialmath.Pose {
	return inMillimetres(o.Pose())
}

// Geometry is the object's scaled bounding box, in millimetres.
func (o *Object) Geometry() (spatialmath.Geometry, error) {
	dims := o.HalfExtents.Mul(2 * o.scale * Millimetres)
	return spatialmath.NewBox(o.PoseMM(), dims, o.Name)
}
