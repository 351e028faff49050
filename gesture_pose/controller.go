package gesturepose

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"go.viam.com/rdk/logging"
)

// session is one continuous gesture tied to a touch count class. Exactly one
// of single and two is set, matching kind.
type session struct {
	id     string
	kind   SessionKind
	single *singleTouch
	two    *twoTouch
}

// Controller owns the active gesture session for one object and routes touch
// lifecycle events and refresh ticks to it. It must be driven from a single
// goroutine.
type Controller struct {
	obj     ObjectHandle
	sensing Sensing
	placer  *Placer
	cfg     GestureConfig
	logger  logging.Logger

	tracked []Touch
	session *session
}

// NewController creates a Controller manipulating obj.
func NewController(obj ObjectHandle, sensing Sensing, placer *Placer, cfg GestureConfig, logger logging.Logger) *Controller {
	return &Controller{
		obj:     obj,
		sensing: sensing,
		placer:  placer,
		cfg:     cfg,
		logger:  logger,
	}
}

// Object returns the manipulated object.
func (c *Controller) Object() ObjectHandle {
	return c.obj
}

// Kind returns the kind of the active session, or SessionNone.
func (c *Controller) Kind() SessionKind {
	if c.session == nil {
		return SessionNone
	}
	return c.session.kind
}

// Active reports whether a session is running.
func (c *Controller) Active() bool {
	return c.session != nil
}

// SessionID returns the active session's ID, or "" when idle.
func (c *Controller) SessionID() string {
	if c.session == nil {
		return ""
	}
	return c.session.id
}

// Tracked returns a copy of the tracked touches in arrival order.
func (c *Controller) Tracked() []Touch {
	out := make([]Touch, len(c.tracked))
	copy(out, c.tracked)
	return out
}

// Begin handles touches going down. Without a session it starts one from
// exactly these touches; otherwise they are merged into the active session.
func (c *Controller) Begin(touches []Touch) error {
	if c.session != nil {
		return c.Update(touches, PhaseBegan)
	}
	if len(touches) == 0 {
		return nil
	}
	c.tracked = c.tracked[:0]
	c.merge(touches)
	c.start()
	return nil
}

// Update handles a touch lifecycle event for the given touches.
func (c *Controller) Update(touches []Touch, phase Phase) error {
	if len(touches) == 0 {
		return nil
	}

	switch phase {
	case PhaseBegan:
		if c.session == nil {
			return c.Begin(touches)
		}
		c.merge(touches)
	case PhaseMoved:
		if c.session == nil {
			return nil
		}
		c.merge(touches)
	case PhaseEnded, PhaseCancelled:
		if c.session == nil {
			return nil
		}
		c.remove(touches)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownPhase, phase)
	}

	s := c.session
	switch s.kind {
	case SessionSingle:
		if len(c.tracked) == 1 {
			return c.refresh()
		}
		// Finish and hand the remaining fingers to a fresh session.
		err := c.finish()
		c.start()
		return err
	case SessionTwo:
		if len(c.tracked) == 2 {
			return c.refresh()
		}
		// Two-finger gestures end outright: every finger has to lift before a
		// new gesture can start.
		err := c.finish()
		c.tracked = c.tracked[:0]
		return err
	}
	return nil
}

// Tick re-runs the active session against the current touches so that a
// held finger keeps tracking while the camera moves. It is a no-op when idle.
func (c *Controller) Tick() error {
	if c.session == nil {
		return nil
	}
	return c.refresh()
}

// Cancel drops the active session without running its finish step.
func (c *Controller) Cancel() {
	if c.session != nil {
		c.logger.Debugf("gesture %s cancelled", c.session.id)
	}
	c.session = nil
	c.tracked = c.tracked[:0]
}

// start creates a session for the tracked touches, or none for other counts.
func (c *Controller) start() {
	kind := KindForCount(len(c.tracked))
	switch kind {
	case SessionSingle:
		c.session = &session{
			id:     uuid.NewString(),
			kind:   kind,
			single: newSingleTouch(c.tracked[0], c.cfg.DragThreshold, c.probe()),
		}
	case SessionTwo:
		c.session = &session{
			id:   uuid.NewString(),
			kind: kind,
			two:  newTwoTouch(c.tracked[0], c.tracked[1], c.obj, c.cfg, c.probe()),
		}
	default:
		c.session = nil
		return
	}
	c.logger.Debugf("gesture %s started: %s with %d touch(es)", c.session.id, kind, len(c.tracked))
}

func (c *Controller) refresh() error {
	s := c.session
	objectScreen := c.sensing.ProjectToScreen(c.obj.Position())

	var effects []Effect
	switch s.kind {
	case SessionSingle:
		effects = s.single.update(c.tracked[0], objectScreen)
	case SessionTwo:
		effects = s.two.update(c.tracked, objectScreen)
	}
	return c.apply(effects)
}

func (c *Controller) finish() error {
	s := c.session
	c.session = nil

	var effects []Effect
	if s.kind == SessionSingle {
		effects = s.single.finish(len(c.tracked), c.probe(), c.cfg.CoverageTeleportMin)
	}
	c.logger.Debugf("gesture %s finished with %d touch(es) left", s.id, len(c.tracked))
	return c.apply(effects)
}

func (c *Controller) apply(effects []Effect) error {
	var errs []error
	for _, e := range effects {
		switch e := e.(type) {
		case TranslateEffect:
			res, err := c.placer.MoveToScreenPoint(c.obj, e.Screen, e.Instantly, e.InfinitePlane)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			c.logger.Debugf("object moved to %v via %s", res.Position, res.Kind)
		case RotateEffect:
			c.obj.SetYRotation(e.Angle)
		case ScaleEffect:
			c.obj.SetScale(e.Scale)
			if reactor, ok := c.sensing.NearestScaleReactor(c.obj); ok {
				reactor.ReactToScale()
			}
		}
	}
	return errors.Join(errs...)
}

// merge adds touches or refreshes the positions of ones already tracked.
func (c *Controller) merge(touches []Touch) {
	for _, t := range touches {
		found := false
		for i := range c.tracked {
			if c.tracked[i].ID == t.ID {
				c.tracked[i].Pos = t.Pos
				found = true
				break
			}
		}
		if !found {
			c.tracked = append(c.tracked, t)
		}
	}
}

func (c *Controller) remove(touches []Touch) {
	kept := c.tracked[:0]
	for _, t := range c.tracked {
		lifted := false
		for _, u := range touches {
			if u.ID == t.ID {
				lifted = true
				break
			}
		}
		if !lifted {
			kept = append(kept, t)
		}
	}
	c.tracked = kept
}

func (c *Controller) probe() objectProbe {
	return sensingProbe{sensing: c.sensing, obj: c.obj, cfg: c.cfg}
}

// sensingProbe answers object footprint questions through the collaborator.
type sensingProbe struct {
	sensing Sensing
	obj     ObjectHandle
	cfg     GestureConfig
}

func (p sensingProbe) hitsObject(pt r2.Point) bool {
	return p.sensing.HitTestObject(pt, p.obj)
}

func (p sensingProbe) coverage() float64 {
	return estimateCoverage(p.sensing.Viewport(), p.cfg.CoverageSamples, p.cfg.CoverageField, p.hitsObject)
}
