package gesturepose

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat"
)

// Smoother damps camera-to-object distance jitter. Only the depth along the
// current camera-to-target direction is averaged, so lateral motion never lags.
type Smoother struct {
	maxReach float64
	size     int
	history  []float64
}

// NewSmoother creates a Smoother with an empty distance history.
func NewSmoother(cfg PlacementConfig) *Smoother {
	size := cfg.HistorySize
	if size < 1 {
		size = 1
	}
	return &Smoother{
		maxReach: cfg.MaxReach,
		size:     size,
		history:  make([]float64, 0, size),
	}
}

// Instant clears the history and returns the target clamped to max reach.
func (s *Smoother) Instant(camera, target r3.Vector) r3.Vector {
	s.Reset()
	return camera.Add(clampLength(target.Sub(camera), s.maxReach))
}

// Filtered records the clamped distance to target and returns the new object
// position. With filter set, the distance is replaced by the history mean.
func (s *Smoother) Filtered(camera, target r3.Vector, filter bool) r3.Vector {
	toTarget := clampLength(target.Sub(camera), s.maxReach)

	s.history = append(s.history, toTarget.Norm())
	if len(s.history) > s.size {
		s.history = append(s.history[:0], s.history[len(s.history)-s.size:]...)
	}

	if !filter {
		return camera.Add(toTarget)
	}
	mean := stat.Mean(s.history, nil)
	return camera.Add(toTarget.Normalize().Mul(mean))
}

// History returns a copy of the recorded distances, oldest first.
func (s *Smoother) History() []float64 {
	out := make([]float64, len(s.history))
	copy(out, s.history)
	return out
}

// Reset drops all recorded distances.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}

// clampLength shortens v to at most maxLen, keeping its direction.
func clampLength(v r3.Vector, maxLen float64) r3.Vector {
	n := v.Norm()
	if n <= maxLen || n == 0 {
		return v
	}
	return v.Mul(maxLen / n)
}
