// Package trace reads recorded interaction sessions: YAML trace files and
// one-line text commands typed at a terminal.
package trace

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"

	"go.viam.com/rdk/spatialmath"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// ErrBadStep is returned for steps and commands that cannot be understood.
var ErrBadStep = errors.New("bad trace step")

// Trace is a recorded session.
type Trace struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one action. Exactly one field is set.
type Step struct {
	Touch  *TouchStep    `yaml:"touch,omitempty"`
	Load   *LoadStep     `yaml:"load,omitempty"`
	Plane  *PlaneStep    `yaml:"plane,omitempty"`
	Camera *CameraStep   `yaml:"camera,omitempty"`
	Wait   time.Duration `yaml:"wait,omitempty"`
}

// TouchStep reports touches entering a phase.
type TouchStep struct {
	Phase   string       `yaml:"phase"`
	Touches []TouchPoint `yaml:"touches"`
}

// TouchPoint is one finger on screen.
type TouchPoint struct {
	ID uint64  `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

// LoadStep adds a box object with the given edge length in meters.
type LoadStep struct {
	Name string  `yaml:"name"`
	Size float64 `yaml:"size"`
}

// PlaneStep adds, updates or removes a horizontal plane anchored at Anchor.
type PlaneStep struct {
	ID      string     `yaml:"id"`
	Anchor  [3]float64 `yaml:"anchor"`
	Width   float64    `yaml:"width"`
	Depth   float64    `yaml:"depth"`
	Removed bool       `yaml:"removed,omitempty"`
}

// CameraStep moves the camera.
type CameraStep struct {
	Eye    [3]float64 `yaml:"eye"`
	Target [3]float64 `yaml:"target"`
}

// Load decodes and checks a YAML trace.
func Load(r io.Reader) (*Trace, error) {
	var t Trace
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding trace: %w", err)
	}
	for i, s := range t.Steps {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &t, nil
}

// Validate checks that exactly one action is set and that it is well formed.
func (s Step) Validate() error {
	set := 0
	if s.Touch != nil {
		set++
		if _, err := ParsePhase(s.Touch.Phase); err != nil {
			return err
		}
		if len(s.Touch.Touches) == 0 {
			return fmt.Errorf("%w: touch step without touches", ErrBadStep)
		}
	}
	if s.Load != nil {
		set++
		if s.Load.Size <= 0 {
			return fmt.Errorf("%w: load %q needs a positive size", ErrBadStep, s.Load.Name)
		}
	}
	if s.Plane != nil {
		set++
		if s.Plane.ID == "" {
			return fmt.Errorf("%w: plane without id", ErrBadStep)
		}
	}
	if s.Camera != nil {
		set++
	}
	if s.Wait > 0 {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: expected exactly one action, got %d", ErrBadStep, set)
	}
	return nil
}

// ParsePhase maps a phase name to its value.
func ParsePhase(name string) (gesturepose.Phase, error) {
	switch strings.ToLower(name) {
	case "began", "begin":
		return gesturepose.PhaseBegan, nil
	case "moved", "move":
		return gesturepose.PhaseMoved, nil
	case "ended", "end":
		return gesturepose.PhaseEnded, nil
	case "cancelled", "cancel":
		return gesturepose.PhaseCancelled, nil
	default:
		return 0, fmt.Errorf("%w: unknown phase %q", ErrBadStep, name)
	}
}

// GestureTouches converts the step's touches.
func (t TouchStep) GestureTouches() []gesturepose.Touch {
	out := make([]gesturepose.Touch, len(t.Touches))
	for i, p := range t.Touches {
		out[i] = gesturepose.Touch{ID: gesturepose.TouchID(p.ID), Pos: r2.Point{X: p.X, Y: p.Y}}
	}
	return out
}

// GesturePlane converts the step into a plane centred on its anchor.
func (p PlaneStep) GesturePlane() gesturepose.Plane {
	return gesturepose.Plane{
		ID:     gesturepose.PlaneID(p.ID),
		Pose:   spatialmath.NewPoseFromPoint(vec(p.Anchor)),
		Extent: r3.Vector{X: p.Width, Z: p.Depth},
	}
}

// EyeTarget returns the camera placement as vectors.
func (c CameraStep) EyeTarget() (r3.Vector, r3.Vector) {
	return vec(c.Eye), vec(c.Target)
}

func vec(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}

// ParseLine reads one text command:
//
//	began|moved|ended|cancelled ID X Y [ID X Y ...]
//	load NAME [SIZE]
//	plane ID X Y Z WIDTH DEPTH
//	unplane ID
//	camera EX EY EZ TX TY TZ
//	wait DURATION
func ParseLine(line string) (Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Step{}, fmt.Errorf("%w: empty command", ErrBadStep)
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var s Step
	switch cmd {
	case "began", "begin", "moved", "move", "ended", "end", "cancelled", "cancel":
		if len(args) == 0 || len(args)%3 != 0 {
			return Step{}, fmt.Errorf("%w: %s needs ID X Y triples", ErrBadStep, cmd)
		}
		touch := &TouchStep{Phase: cmd}
		for i := 0; i < len(args); i += 3 {
			id, err := strconv.ParseUint(args[i], 10, 64)
			if err != nil {
				return Step{}, fmt.Errorf("%w: touch id %q", ErrBadStep, args[i])
			}
			xy, err := floats(args[i+1 : i+3])
			if err != nil {
				return Step{}, err
			}
			touch.Touches = append(touch.Touches, TouchPoint{ID: id, X: xy[0], Y: xy[1]})
		}
		s.Touch = touch
	case "load":
		if len(args) < 1 || len(args) > 2 {
			return Step{}, fmt.Errorf("%w: load NAME [SIZE]", ErrBadStep)
		}
		load := &LoadStep{Name: args[0], Size: 0.2}
		if len(args) == 2 {
			v, err := floats(args[1:])
			if err != nil {
				return Step{}, err
			}
			load.Size = v[0]
		}
		s.Load = load
	case "plane":
		if len(args) != 6 {
			return Step{}, fmt.Errorf("%w: plane ID X Y Z WIDTH DEPTH", ErrBadStep)
		}
		v, err := floats(args[1:])
		if err != nil {
			return Step{}, err
		}
		s.Plane = &PlaneStep{ID: args[0], Anchor: [3]float64{v[0], v[1], v[2]}, Width: v[3], Depth: v[4]}
	case "unplane":
		if len(args) != 1 {
			return Step{}, fmt.Errorf("%w: unplane ID", ErrBadStep)
		}
		s.Plane = &PlaneStep{ID: args[0], Removed: true}
	case "camera":
		if len(args) != 6 {
			return Step{}, fmt.Errorf("%w: camera EX EY EZ TX TY TZ", ErrBadStep)
		}
		v, err := floats(args)
		if err != nil {
			return Step{}, err
		}
		s.Camera = &CameraStep{Eye: [3]float64{v[0], v[1], v[2]}, Target: [3]float64{v[3], v[4], v[5]}}
	case "wait":
		if len(args) != 1 {
			return Step{}, fmt.Errorf("%w: wait DURATION", ErrBadStep)
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d <= 0 {
			return Step{}, fmt.Errorf("%w: wait %q", ErrBadStep, args[0])
		}
		s.Wait = d
	default:
		return Step{}, fmt.Errorf("%w: unknown command %q", ErrBadStep, cmd)
	}
	return s, s.Validate()
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrBadStep, a)
		}
		out[i] = v
	}
	return out, nil
}
