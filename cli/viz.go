package main

import (
	"fmt"

	viz "github.com/viam-labs/motion-tools/client/client"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
	"github.com/biotinker/arplace/internal/simscene"
)

// drawScene draws the feature cloud, the detected planes and the objects in
// the motion-tools visualizer, in millimetres.
func drawScene(scene *simscene.Scene, objects []gesturepose.ObjectHandle, logger logging.Logger) error {
	if err := viz.RemoveAllSpatialObjects(); err != nil {
		return fmt.Errorf("clear scene (is motion-tools running?): %w", err)
	}

	if features := scene.Features(); features != nil && features.Size() > 0 {
		cloud, err := simscene.Scaled(features, simscene.Millimetres)
		if err != nil {
			return err
		}
		if err := viz.DrawPointCloud("features", cloud, nil); err != nil {
			return fmt.Errorf("draw features: %w", err)
		}
		logger.Infof("viz: drew %d feature points", cloud.Size())
	}

	for _, plane := range scene.Planes() {
		geom, err := simscene.PlaneGeometry(plane)
		if err != nil {
			logger.Warnf("viz: plane %s: %v", plane.ID, err)
			continue
		}
		if err := viz.DrawGeometry(geom, "blue"); err != nil {
			return fmt.Errorf("draw plane %s: %w", plane.ID, err)
		}
	}

	var poses []spatialmath.Pose
	var names []string
	for _, obj := range objects {
		o, ok := obj.(*simscene.Object)
		if !ok {
			continue
		}
		geom, err := o.Geometry()
		if err != nil {
			logger.Warnf("viz: object %s: %v", o.Name, err)
			continue
		}
		if err := viz.DrawGeometry(geom, "red"); err != nil {
			return fmt.Errorf("draw object %s: %w", o.Name, err)
		}
		poses = append(poses, o.PoseMM())
		names = append(names, o.Name)
	}
	if len(poses) > 0 {
		if err := viz.DrawPoses(poses, names, true); err != nil {
			return fmt.Errorf("draw object poses: %w", err)
		}
	}
	logger.Infof("viz: drew %d planes and %d objects", len(scene.Planes()), len(poses))
	return nil
}
