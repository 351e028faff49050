package gesturepose

import (
	"fmt"
	"math"
	"time"
)

// Config holds all configuration for gesture interpretation and placement.
type Config struct {
	Gesture   GestureConfig   `mapstructure:"gesture"`
	Placement PlacementConfig `mapstructure:"placement"`
	Snap      SnapConfig      `mapstructure:"snap"`
}

// Thresholds is a pair of activation limits for one two-finger channel. Harder
// applies once any other channel has latched.
type Thresholds struct {
	Baseline float64 `mapstructure:"baseline"`
	Harder   float64 `mapstructure:"harder"`
}

// GestureConfig holds parameters for the touch state machines.
type GestureConfig struct {
	AllowPinchScale     bool          `mapstructure:"allow_pinch_scale"`     // Read-only user setting
	RefreshInterval     time.Duration `mapstructure:"refresh_interval"`      // Tick period while a session is active
	DragThreshold       float64       `mapstructure:"drag_threshold"`        // Single-finger drag latch in screen units
	Translate           Thresholds    `mapstructure:"translate"`             // Midpoint travel in screen units
	Rotate              Thresholds    `mapstructure:"rotate"`                // Finger angle change in radians
	Scale               Thresholds    `mapstructure:"scale"`                 // Finger spread change in screen units
	RescueScale         float64       `mapstructure:"rescue_scale"`          // Below this scale pinch works off-object
	CoverageSamples     int           `mapstructure:"coverage_samples"`      // Grid samples per axis
	CoverageField       float64       `mapstructure:"coverage_field"`        // Fraction of the viewport sampled per axis
	CoverageTeleportMin float64       `mapstructure:"coverage_teleport_min"` // Coverage above which a tap on the object teleports it
}

// PlacementConfig holds parameters for resolving and smoothing positions.
type PlacementConfig struct {
	DragOnInfinitePlanes bool         `mapstructure:"drag_on_infinite_planes"` // Read-only user setting
	Features             FeatureQuery `mapstructure:"features"`                // High quality feature query
	FallbackFeatures     FeatureQuery `mapstructure:"fallback_features"`       // Last resort feature query
	MaxReach             float64      `mapstructure:"max_reach"`               // Max camera-to-object distance
	HistorySize          int          `mapstructure:"history_size"`            // Distances averaged by the smoother
}

// SnapConfig holds parameters for settling an object onto a newly confirmed plane.
type SnapConfig struct {
	ExtentTolerance   float64       `mapstructure:"extent_tolerance"`   // Fraction of the extent added on each side
	VerticalAllowance float64       `mapstructure:"vertical_allowance"` // Max |y| in plane space to snap
	Duration          time.Duration `mapstructure:"duration"`
}

// DefaultConfig returns a Config with the stock thresholds.
func DefaultConfig() Config {
	return Config{
		Gesture: GestureConfig{
			AllowPinchScale:     true,
			RefreshInterval:     16667 * time.Microsecond,
			DragThreshold:       30,
			Translate:           Thresholds{Baseline: 40, Harder: 70},
			Rotate:              Thresholds{Baseline: math.Pi / 15, Harder: math.Pi / 10},
			Scale:               Thresholds{Baseline: 50, Harder: 90},
			RescueScale:         0.1,
			CoverageSamples:     6,
			CoverageField:       0.8,
			CoverageTeleportMin: 0.5,
		},
		Placement: PlacementConfig{
			DragOnInfinitePlanes: true,
			Features:             FeatureQuery{ConeAngleDeg: 18, MinDistance: 0.2, MaxDistance: 2.0},
			FallbackFeatures:     FeatureQuery{ConeAngleDeg: 90},
			MaxReach:             10,
			HistorySize:          10,
		},
		Snap: SnapConfig{
			ExtentTolerance:   0.1,
			VerticalAllowance: 0.03,
			Duration:          500 * time.Millisecond,
		},
	}
}

// Validate checks that every threshold is usable.
func (c Config) Validate() error {
	g := c.Gesture
	if g.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh_interval must be positive", ErrInvalidConfig)
	}
	if g.DragThreshold < 0 {
		return fmt.Errorf("%w: drag_threshold must not be negative", ErrInvalidConfig)
	}
	for name, th := range map[string]Thresholds{"translate": g.Translate, "rotate": g.Rotate, "scale": g.Scale} {
		if th.Baseline < 0 || th.Harder < th.Baseline {
			return fmt.Errorf("%w: %s thresholds need 0 <= baseline <= harder", ErrInvalidConfig, name)
		}
	}
	if g.CoverageSamples < 1 {
		return fmt.Errorf("%w: coverage_samples must be at least 1", ErrInvalidConfig)
	}
	if g.CoverageField <= 0 || g.CoverageField > 1 {
		return fmt.Errorf("%w: coverage_field must be in (0, 1]", ErrInvalidConfig)
	}

	p := c.Placement
	if p.MaxReach <= 0 {
		return fmt.Errorf("%w: max_reach must be positive", ErrInvalidConfig)
	}
	if p.HistorySize < 1 {
		return fmt.Errorf("%w: history_size must be at least 1", ErrInvalidConfig)
	}
	if p.Features.MaxDistance > 0 && p.Features.MaxDistance < p.Features.MinDistance {
		return fmt.Errorf("%w: features max_distance below min_distance", ErrInvalidConfig)
	}

	if c.Snap.ExtentTolerance < 0 || c.Snap.VerticalAllowance < 0 {
		return fmt.Errorf("%w: snap tolerances must not be negative", ErrInvalidConfig)
	}
	return nil
}
