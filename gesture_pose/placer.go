package gesturepose

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"
)

// Placer moves an object to resolved world positions, smoothing depth for
// noisy feature hits and attaching the object on its first instant placement.
type Placer struct {
	sensing  Sensing
	resolver *Resolver
	smoother *Smoother
	attacher Attacher
	logger   logging.Logger
}

// NewPlacer creates a Placer. attacher may be nil when objects are always attached.
func NewPlacer(sensing Sensing, cfg PlacementConfig, attacher Attacher, logger logging.Logger) *Placer {
	return &Placer{
		sensing:  sensing,
		resolver: NewResolver(sensing, cfg),
		smoother: NewSmoother(cfg),
		attacher: attacher,
		logger:   logger,
	}
}

// Resolver returns the resolver used for screen lookups.
func (p *Placer) Resolver() *Resolver {
	return p.resolver
}

// Smoother returns the distance smoother.
func (p *Placer) Smoother() *Smoother {
	return p.smoother
}

// MoveToScreenPoint resolves pt relative to the object's current position and
// moves the object there. Results on feature points are distance filtered.
func (p *Placer) MoveToScreenPoint(obj ObjectHandle, pt r2.Point, instantly, infinitePlane bool) (PlacementResult, error) {
	ref := obj.Position()
	res := p.resolver.Resolve(pt, &ref, infinitePlane)
	if err := p.Move(obj, res, instantly, !res.OnPlane()); err != nil {
		return res, fmt.Errorf("screen point (%.1f, %.1f): %w", pt.X, pt.Y, err)
	}
	return res, nil
}

// Move applies a placement result. A result without a position yields ErrCannotPlace.
func (p *Placer) Move(obj ObjectHandle, res PlacementResult, instantly, filter bool) error {
	if !res.Found {
		return ErrCannotPlace
	}
	if instantly {
		p.PlaceAt(obj, res.Position)
		return nil
	}

	camera, ok := p.sensing.CameraPosition()
	if !ok {
		p.logger.Debug("no camera frame; skipping object update")
		return nil
	}
	obj.SetPosition(p.smoother.Filtered(camera, res.Position, filter))
	return nil
}

// PlaceAt puts the object at pos immediately, resetting the distance history.
func (p *Placer) PlaceAt(obj ObjectHandle, pos r3.Vector) {
	camera, ok := p.sensing.CameraPosition()
	if !ok {
		p.logger.Debug("no camera frame; skipping object placement")
		return
	}
	obj.SetPosition(p.smoother.Instant(camera, pos))

	if !obj.IsAttached() && p.attacher != nil {
		p.attacher.Attach(obj)
	}
}
