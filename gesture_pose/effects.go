package gesturepose

import "github.com/golang/geo/r2"

// Effect is a change a manipulator asks the controller to make to the object.
type Effect interface {
	effect()
}

// TranslateEffect moves the object to whatever lies under Screen.
type TranslateEffect struct {
	Screen        r2.Point
	Instantly     bool
	InfinitePlane bool
}

// RotateEffect sets the object's rotation about the vertical axis.
type RotateEffect struct {
	Angle float64
}

// ScaleEffect sets the object's uniform scale.
type ScaleEffect struct {
	Scale float64
}

func (TranslateEffect) effect() {}
func (RotateEffect) effect()    {}
func (ScaleEffect) effect()     {}
