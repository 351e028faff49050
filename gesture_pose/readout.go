package gesturepose

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/utils"
)

// TransformReadout summarizes the object's transform relative to the camera.
type TransformReadout struct {
	Distance     float64
	AngleDegrees int // Rotation about Y, wrapped into [0, 360)
	Scale        float64
}

// Readout describes obj as seen from camera.
func Readout(obj ObjectHandle, camera r3.Vector) TransformReadout {
	deg := int(math.Round(utils.RadToDeg(obj.YRotation()))) % 360
	if deg < 0 {
		deg += 360
	}
	return TransformReadout{
		Distance:     camera.Sub(obj.Position()).Norm(),
		AngleDegrees: deg,
		Scale:        obj.Scale(),
	}
}

func (r TransformReadout) String() string {
	return fmt.Sprintf("Distance: %.2f m\nRotation: %d°\nScale: %.2fx", r.Distance, r.AngleDegrees, r.Scale)
}
