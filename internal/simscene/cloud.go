package simscene

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"
	"go.viam.com/rdk/vision/segmentation"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

// CloudConfig controls how a camera point cloud becomes scene features.
type CloudConfig struct {
	UnitsPerMeter   float64   `mapstructure:"units_per_meter"`   // Cloud units per scene meter (mm clouds use 1000)
	FeatureVoxel    float64   `mapstructure:"feature_voxel"`     // Feature spacing in cloud units; 0 disables
	MaxPoints       int       `mapstructure:"max_points"`        // Feature cap after thinning; 0 keeps every point
	OutlierMeanK    int       `mapstructure:"outlier_mean_k"`    // Neighbours for statistical outlier removal; 0 disables
	OutlierStdDev   float64   `mapstructure:"outlier_std_dev"`   // Std dev multiplier for outlier removal
	PlaneIterations int       `mapstructure:"plane_iterations"`  // RANSAC iterations for floor segmentation
	PlaneAngleDeg   float64   `mapstructure:"plane_angle_deg"`   // Allowed tilt from GroundNormal
	PlaneDist       float64   `mapstructure:"plane_dist"`        // Inlier distance in cloud units
	GroundNormal    r3.Vector `mapstructure:"ground_normal"`     // Expected floor normal in the cloud frame
}

// DefaultCloudConfig suits millimetre clouds with Y up.
func DefaultCloudConfig() CloudConfig {
	return CloudConfig{
		UnitsPerMeter:   1000,
		FeatureVoxel:    10,
		MaxPoints:       20000,
		OutlierMeanK:    20,
		OutlierStdDev:   2.0,
		PlaneIterations: 2000,
		PlaneAngleDeg:   10,
		PlaneDist:       10,
		GroundNormal:    r3.Vector{Y: 1},
	}
}

// Thin evens out feature density. It keeps the first point seen in each voxel
// of edge voxel, so dense near surfaces do not crowd out far ones, and then
// strides over the survivors until at most maxPoints remain. A non-positive
// voxel or maxPoints skips that stage.
func Thin(cloud pointcloud.PointCloud, voxel float64, maxPoints int, logger logging.Logger) pointcloud.PointCloud {
	type cell struct{ x, y, z int64 }
	type point struct {
		p r3.Vector
		d pointcloud.Data
	}

	seen := map[cell]struct{}{}
	kept := make([]point, 0, cloud.Size())
	cloud.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		if voxel > 0 {
			c := cell{int64(math.Floor(p.X / voxel)), int64(math.Floor(p.Y / voxel)), int64(math.Floor(p.Z / voxel))}
			if _, ok := seen[c]; ok {
				return true
			}
			seen[c] = struct{}{}
		}
		kept = append(kept, point{p, d})
		return true
	})

	step := 1
	if maxPoints > 0 && len(kept) > maxPoints {
		step = (len(kept) + maxPoints - 1) / maxPoints
	}
	if voxel <= 0 && step == 1 {
		return cloud
	}

	thinned := pointcloud.NewBasicPointCloud(len(kept)/step + 1)
	for i := 0; i < len(kept); i += step {
		if err := thinned.Set(kept[i].p, kept[i].d); err != nil {
			logger.Warnf("Failed to add point: %v", err)
		}
	}
	logger.Infof("Thinned %d points to %d (voxel %.1f, cap %d)", cloud.Size(), thinned.Size(), voxel, maxPoints)
	return thinned
}

// LoadCloud ingests a camera cloud: outliers are removed, the cloud is
// downsampled and rescaled to meters, and the dominant floor is segmented out
// as a plane. The remaining points become features. The bool is false when no
// floor was found.
func LoadCloud(ctx context.Context, cloud pointcloud.PointCloud, cfg CloudConfig, logger logging.Logger) (pointcloud.PointCloud, gesturepose.Plane, bool, error) {
	if cloud.Size() == 0 {
		return pointcloud.NewBasicEmpty(), gesturepose.Plane{}, false, nil
	}
	if cfg.UnitsPerMeter <= 0 {
		return nil, gesturepose.Plane{}, false, fmt.Errorf("units_per_meter must be positive, got %v", cfg.UnitsPerMeter)
	}

	current := cloud
	if cfg.OutlierMeanK > 0 {
		filtered := pointcloud.NewBasicEmpty()
		filterFn, err := pointcloud.StatisticalOutlierFilter(cfg.OutlierMeanK, cfg.OutlierStdDev)
		if err != nil {
			return nil, gesturepose.Plane{}, false, err
		}
		if err := filterFn(current, filtered); err != nil {
			return nil, gesturepose.Plane{}, false, fmt.Errorf("outlier filter: %w", err)
		}
		current = filtered
	}
	current = Thin(current, cfg.FeatureVoxel, cfg.MaxPoints, logger)

	// Floor detection is a soft failure: without it the whole cloud is features.
	var floor gesturepose.Plane
	found := false
	rest := current
	plane, remaining, err := segmentation.SegmentPlaneWRTGround(
		ctx, current, cfg.PlaneIterations, cfg.PlaneAngleDeg, cfg.PlaneDist, cfg.GroundNormal)
	if err != nil {
		logger.Debugf("no floor plane found: %v", err)
	} else {
		inliers, err := plane.PointCloud()
		if err == nil && inliers.Size() > 0 {
			floor = planeFromInliers(inliers, cfg.UnitsPerMeter)
			found = true
			rest = remaining
		}
	}

	features, err := Scaled(rest, 1/cfg.UnitsPerMeter)
	if err != nil {
		return nil, gesturepose.Plane{}, false, err
	}
	logger.Infof("Loaded %d feature points (floor found: %v)", features.Size(), found)
	return features, floor, found, nil
}

// planeFromInliers builds a horizontal plane anchored at the inliers' centroid
// and sized to their X/Z bounds.
func planeFromInliers(inliers pointcloud.PointCloud, unitsPerMeter float64) gesturepose.Plane {
	var sum r3.Vector
	lo := r3.Vector{X: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vector{X: math.Inf(-1), Z: math.Inf(-1)}
	inliers.Iterate(0, 0, func(p r3.Vector, _ pointcloud.Data) bool {
		p = p.Mul(1 / unitsPerMeter)
		sum = sum.Add(p)
		lo.X, lo.Z = math.Min(lo.X, p.X), math.Min(lo.Z, p.Z)
		hi.X, hi.Z = math.Max(hi.X, p.X), math.Max(hi.Z, p.Z)
		return true
	})
	center := sum.Mul(1 / float64(inliers.Size()))
	return gesturepose.Plane{
		ID:     "floor",
		Pose:   spatialmath.NewPoseFromPoint(center),
		Extent: r3.Vector{X: hi.X - lo.X, Z: hi.Z - lo.Z},
		Center: r3.Vector{X: (lo.X+hi.X)/2 - center.X, Z: (lo.Z+hi.Z)/2 - center.Z},
	}
}

// SavePCD writes scene features to a binary PCD file scaled back into cloud
// units, so LoadPCD followed by LoadCloud with the same units restores them.
func SavePCD(features pointcloud.PointCloud, path string, unitsPerMeter float64) error {
	if unitsPerMeter <= 0 {
		return fmt.Errorf("units_per_meter must be positive, got %v", unitsPerMeter)
	}
	scaled, err := Scaled(features, unitsPerMeter)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := pointcloud.ToPCD(scaled, file, pointcloud.PCDBinary); err != nil {
		file.Close()
		return fmt.Errorf("write PCD: %w", err)
	}
	return file.Close()
}

// LoadPCD reads a point cloud from a PCD file.
func LoadPCD(path string) (pointcloud.PointCloud, error) {
	cloud, err := pointcloud.NewFromFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return cloud, nil
}
