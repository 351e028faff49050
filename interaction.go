// Package arplace places and manipulates virtual objects in a camera-tracked
// scene from touch input.
package arplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// World is the tracked scene the interaction runs against.
type World interface {
	gesturepose.Sensing
	gesturepose.Attacher
	Detach(obj gesturepose.ObjectHandle)
	UpsertPlane(p gesturepose.Plane) bool
	RemovePlane(id gesturepose.PlaneID)
}

// Event is something the interaction loop reacts to.
type Event interface {
	event()
}

// TouchEvent reports touches entering a lifecycle phase.
type TouchEvent struct {
	Phase   gesturepose.Phase
	Touches []gesturepose.Touch
}

// PlaneEvent reports a detected plane being added, updated or removed. A
// snap it triggers starts at At, or at the wall clock when At is zero.
type PlaneEvent struct {
	Plane   gesturepose.Plane
	Removed bool
	At      time.Time
}

// FrameEvent reports a new camera frame. Apply, when set, runs on the loop
// before anything reads the scene and is where tracking updates belong.
type FrameEvent struct {
	At    time.Time
	Apply func()
}

// ObjectLoaded reports that an object finished loading and should be placed.
type ObjectLoaded struct {
	Object gesturepose.ObjectHandle
}

func (TouchEvent) event() {}
func (PlaneEvent) event() {}
func (FrameEvent) event() {}
func (ObjectLoaded) event() {}

// Interaction wires touches, frames and plane updates to the gesture engine
// for the selected object. Handlers must be called from one goroutine; Run
// provides that goroutine.
type Interaction struct {
	logger  logging.Logger
	cfg     Config
	world   World
	objects *ObjectManager

	placer     *gesturepose.Placer
	snap       *gesturepose.SnapEngine
	animator   *Animator
	focus      *FocusTracker
	controller *gesturepose.Controller

	// OnChooseObject is called when the screen is tapped with nothing placed.
	OnChooseObject func()
	// OnReadout receives the selected object's transform after touches.
	OnReadout func(gesturepose.TransformReadout)

	now func() time.Time
	// onTicker, when set, observes the refresh ticker starting and stopping.
	onTicker func(running bool)
}

// NewInteraction creates an Interaction over world.
func NewInteraction(world World, cfg Config, logger logging.Logger) (*Interaction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	placer := gesturepose.NewPlacer(world, cfg.Placement, world, logger)
	return &Interaction{
		logger:   logger,
		cfg:      cfg,
		world:    world,
		objects:  NewObjectManager(world.Detach),
		placer:   placer,
		snap:     gesturepose.NewSnapEngine(cfg.Snap),
		animator: &Animator{},
		focus:    NewFocusTracker(world, placer.Resolver()),
		now:      time.Now,
	}, nil
}

// Objects returns the object container.
func (i *Interaction) Objects() *ObjectManager {
	return i.objects
}

// Focus returns the focus point tracker.
func (i *Interaction) Focus() *FocusTracker {
	return i.focus
}

// Animator returns the snap animator.
func (i *Interaction) Animator() *Animator {
	return i.animator
}

// SessionID returns the active gesture session's ID, or "" when idle.
func (i *Interaction) SessionID() string {
	if i.controller == nil {
		return ""
	}
	return i.controller.SessionID()
}

// Kind returns the active gesture session kind.
func (i *Interaction) Kind() gesturepose.SessionKind {
	if i.controller == nil {
		return gesturepose.SessionNone
	}
	return i.controller.Kind()
}

// Handle dispatches one event.
func (i *Interaction) Handle(ev Event) error {
	switch ev := ev.(type) {
	case TouchEvent:
		return i.HandleTouches(ev.Phase, ev.Touches)
	case PlaneEvent:
		if ev.Removed {
			i.world.RemovePlane(ev.Plane.ID)
			return nil
		}
		at := ev.At
		if at.IsZero() {
			at = i.now()
		}
		i.HandlePlane(ev.Plane, at)
		return nil
	case FrameEvent:
		if ev.Apply != nil {
			ev.Apply()
		}
		i.HandleFrame(ev.At)
		return nil
	case ObjectLoaded:
		return i.PlaceNew(ev.Object)
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
}

// HandleTouches routes touches to the selected object's gesture. Without a
// placed object, touches are ignored except that lifting a finger asks for
// an object to be chosen.
func (i *Interaction) HandleTouches(phase gesturepose.Phase, touches []gesturepose.Touch) error {
	obj, ok := i.objects.Selected()
	if !ok {
		if phase == gesturepose.PhaseEnded && i.OnChooseObject != nil {
			i.OnChooseObject()
		}
		return nil
	}
	c := i.controllerFor(obj)

	var err error
	switch phase {
	case gesturepose.PhaseBegan:
		// Touching the object takes over from a pending snap.
		i.animator.Cancel()
		err = c.Begin(touches)
	default:
		err = c.Update(touches, phase)
	}
	if phase == gesturepose.PhaseBegan || phase == gesturepose.PhaseMoved {
		i.readout(obj)
	}
	return i.placementError(err)
}

// Tick refreshes the active gesture and steps any pending snap.
func (i *Interaction) Tick(now time.Time) error {
	var err error
	if i.controller != nil {
		err = i.placementError(i.controller.Tick())
	}
	i.animator.Step(now)
	return err
}

// HandlePlane records a new or updated plane and snaps the selected object
// onto it when it hovers just above or below. The snap starts at now.
func (i *Interaction) HandlePlane(p gesturepose.Plane, now time.Time) {
	if i.world.UpsertPlane(p) {
		pos := r3.Vector{}
		if p.Pose != nil {
			pos = p.Pose.Point()
		}
		i.logger.Infof("surface %s detected at (%.2f, %.2f, %.2f)", p.ID, pos.X, pos.Y, pos.Z)
	}

	obj, ok := i.objects.Selected()
	if !ok {
		return
	}
	tr, ok := i.snap.Check(obj, p)
	if !ok {
		return
	}
	i.logger.Debugf("object moved onto surface %s nearby", p.ID)
	i.animator.Start(obj, tr, now)
}

// HandleFrame updates the focus point and steps any pending snap.
func (i *Interaction) HandleFrame(at time.Time) {
	i.focus.Update()
	i.animator.Step(at)
}

// PlaceNew adds obj, selects it and drops it at the focus point, or at the
// origin when no focus point is known yet.
func (i *Interaction) PlaceNew(obj gesturepose.ObjectHandle) error {
	i.objects.Add(obj)
	if err := i.objects.Select(obj); err != nil {
		return err
	}
	i.dropController()

	pos, ok := i.focus.Last()
	if !ok {
		pos = r3.Vector{}
	}
	i.placer.PlaceAt(obj, pos)
	i.logger.Infof("placed new object at (%.2f, %.2f, %.2f)", obj.Position().X, obj.Position().Y, obj.Position().Z)
	return nil
}

// Reset removes every object and ends any gesture.
func (i *Interaction) Reset() {
	i.dropController()
	i.animator.Cancel()
	i.objects.Reset()
}

// Run is the interaction loop. It serializes events and, while a gesture or
// snap is active, ticks at the configured refresh interval.
func (i *Interaction) Run(ctx context.Context, events <-chan Event) error {
	i.logger.Info("Starting interaction loop")

	var ticker *time.Ticker
	var tick <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			if i.onTicker != nil {
				i.onTicker(false)
			}
		}
		// Ticks already buffered for a stopped ticker are never read.
		tick = nil
	}
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			i.logger.Info("Shutting down")
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := i.Handle(ev); err != nil {
				i.logger.Warnf("event %T: %v", ev, err)
			}
		case now := <-tick:
			if err := i.Tick(now); err != nil {
				i.logger.Warnf("tick: %v", err)
			}
		}

		busy := i.SessionID() != "" || i.animator.Pending()
		switch {
		case busy && ticker == nil:
			ticker = time.NewTicker(i.cfg.Gesture.RefreshInterval)
			tick = ticker.C
			if i.onTicker != nil {
				i.onTicker(true)
			}
		case !busy && ticker != nil:
			stopTicker()
		}
	}
}

func (i *Interaction) controllerFor(obj gesturepose.ObjectHandle) *gesturepose.Controller {
	if i.controller == nil || i.controller.Object() != obj {
		i.dropController()
		i.controller = gesturepose.NewController(obj, i.world, i.placer, i.cfg.Gesture, i.logger)
	}
	return i.controller
}

func (i *Interaction) dropController() {
	if i.controller != nil {
		i.controller.Cancel()
		i.controller = nil
	}
}

// placementError reports placement misses and swallows them. Other errors pass through.
func (i *Interaction) placementError(err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, gesturepose.ErrCannotPlace) {
		return err
	}
	i.logger.Warnf("cannot place object here; try moving left or right (%v)", err)
	if !i.objects.IsPlaced() {
		i.objects.Reset()
	}
	return nil
}

func (i *Interaction) readout(obj gesturepose.ObjectHandle) {
	camera, ok := i.world.CameraPosition()
	if !ok {
		return
	}
	r := gesturepose.Readout(obj, camera)
	i.logger.Debugf("%s", r)
	if i.OnReadout != nil {
		i.OnReadout(r)
	}
}
