// Package simscene is an in-memory spatial scene: a pinhole camera, anchored
// planes, a feature point cloud and box-shaped objects. It answers the hit
// tests the gesture engine asks of a tracked camera session.
package simscene

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/utils"
)

var worldUp = r3.Vector{Y: 1}

// Camera is a pinhole camera. Screen X grows right and screen Y grows down.
type Camera struct {
	Eye      r3.Vector
	Forward  r3.Vector
	Right    r3.Vector
	Up       r3.Vector
	Focal    float64 // Focal length in screen units
	Viewport r2.Rect
}

// NewCamera points a camera at eye toward target with the given horizontal
// field of view in degrees.
func NewCamera(eye, target r3.Vector, viewport r2.Rect, fovDeg float64) *Camera {
	c := &Camera{Viewport: viewport}
	c.Focal = (viewport.Size().X / 2) / math.Tan(utils.DegToRad(fovDeg/2))
	c.LookAt(eye, target)
	return c
}

// LookAt re-aims the camera. Looking straight up or down keeps the previous
// right axis.
func (c *Camera) LookAt(eye, target r3.Vector) {
	c.Eye = eye
	c.Forward = target.Sub(eye).Normalize()
	right := c.Forward.Cross(worldUp)
	if right.Norm() < 1e-9 {
		right = c.Right
		if right.Norm() < 1e-9 {
			right = r3.Vector{X: 1}
		}
	}
	c.Right = right.Normalize()
	c.Up = c.Right.Cross(c.Forward).Normalize()
}

// Project maps a world point to the screen. The bool is false for points
// behind the camera.
func (c *Camera) Project(p r3.Vector) (r2.Point, bool) {
	v := p.Sub(c.Eye)
	depth := v.Dot(c.Forward)
	if depth <= 1e-9 {
		return r2.Point{}, false
	}
	center := c.Viewport.Center()
	return r2.Point{
		X: center.X + c.Focal*v.Dot(c.Right)/depth,
		Y: center.Y - c.Focal*v.Dot(c.Up)/depth,
	}, true
}

// Ray returns the unit direction from the eye through a screen point.
func (c *Camera) Ray(pt r2.Point) r3.Vector {
	center := c.Viewport.Center()
	return c.Forward.Mul(c.Focal).
		Add(c.Right.Mul(pt.X - center.X)).
		Add(c.Up.Mul(center.Y - pt.Y)).
		Normalize()
}
