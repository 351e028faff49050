package arplace

import (
	"context"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"

	"github.com/biotinker/arplace/internal/simscene"
)

// NewScene builds a simulated world from cfg's camera with no planes and a
// sparse grid of floor features, which is what a session sees before any
// surface is confirmed.
func NewScene(cfg Config, logger logging.Logger) (*simscene.Scene, error) {
	viewport := r2.RectFromPoints(r2.Point{}, r2.Point{X: cfg.Camera.Width, Y: cfg.Camera.Height})
	scene := simscene.New(simscene.NewCamera(cfg.Camera.Eye, cfg.Camera.Target, viewport, cfg.Camera.FOVDeg), logger)

	var grid []r3.Vector
	for x := -2.0; x <= 2.0; x += 0.25 {
		for z := -2.0; z <= 2.0; z += 0.25 {
			grid = append(grid, r3.Vector{X: x, Z: z})
		}
	}
	if err := scene.AddFeatures(grid...); err != nil {
		return nil, err
	}
	return scene, nil
}

// LoadFeatures replaces scene's features with a camera cloud and adds the
// floor found in it, if any.
func LoadFeatures(ctx context.Context, scene *simscene.Scene, cloud pointcloud.PointCloud, cfg simscene.CloudConfig, logger logging.Logger) error {
	features, floor, found, err := simscene.LoadCloud(ctx, cloud, cfg, logger)
	if err != nil {
		return err
	}
	scene.SetFeatures(features)
	if found {
		scene.UpsertPlane(floor)
		logger.Infof("floor plane %s with extent %.2f x %.2f m", floor.ID, floor.Extent.X, floor.Extent.Z)
	}
	return nil
}
