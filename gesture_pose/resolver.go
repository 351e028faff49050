package gesturepose

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Resolver turns a screen point into a world position by trying sensing
// sources from most to least trustworthy.
type Resolver struct {
	sensing Sensing
	cfg     PlacementConfig
}

// NewResolver creates a Resolver over the given sensing collaborator.
func NewResolver(sensing Sensing, cfg PlacementConfig) *Resolver {
	return &Resolver{sensing: sensing, cfg: cfg}
}

// Resolve finds the world position under pt. ref anchors the infinite plane
// fallback; a nil ref uses the world origin. infinitePlane asks for the infinite
// plane to be preferred over feature points when it is enabled in config.
func (r *Resolver) Resolve(pt r2.Point, ref *r3.Vector, infinitePlane bool) PlacementResult {
	// 1. Detected planes within their extents. Best possible outcome.
	if hit, ok := r.sensing.HitTestPlanes(pt); ok {
		return PlacementResult{Position: hit.Position, Found: true, Kind: HitPlane, Anchor: hit.Plane}
	}

	// 2. High quality feature points. Keep the result for later.
	var candidate r3.Vector
	haveCandidate := false
	if hits := r.sensing.HitTestFeatures(pt, r.cfg.Features); len(hits) > 0 {
		candidate = hits[0]
		haveCandidate = true
	}

	// 3. Infinite horizontal plane, when asked for or when nothing better exists.
	if (infinitePlane && r.cfg.DragOnInfinitePlanes) || !haveCandidate {
		var through r3.Vector
		if ref != nil {
			through = *ref
		}
		if pos, ok := r.sensing.HitTestInfinitePlane(pt, through); ok {
			return PlacementResult{Position: pos, Found: true, Kind: HitInfinitePlane}
		}
	}

	// 4. The high quality feature hit, if the infinite plane was skipped or missed.
	if haveCandidate {
		return PlacementResult{Position: candidate, Found: true, Kind: HitFeature}
	}

	// 5. Anything at all from the unfiltered feature cloud.
	if hits := r.sensing.HitTestFeatures(pt, r.cfg.FallbackFeatures); len(hits) > 0 {
		return PlacementResult{Position: hits[0], Found: true, Kind: HitFeature}
	}
	return PlacementResult{Kind: HitNone}
}
