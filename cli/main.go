package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biotinker/arplace"
	gesturepose "github.com/biotinker/arplace/gesture_pose"
	"github.com/biotinker/arplace/internal/creds"
	"github.com/biotinker/arplace/internal/simscene"
	"github.com/biotinker/arplace/internal/trace"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/utils"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	tracePath := flag.String("trace", "", "path to YAML gesture trace")
	featuresPath := flag.String("features", "", "PCD file to use as the feature cloud (optional)")
	credsPath := flag.String("creds", "", "robot credentials JSON file for a live feature cloud (optional)")
	cameraName := flag.String("camera", "", "camera resource to pull the feature cloud from (with -creds)")
	dumpPath := flag.String("dump-features", "", "write the feature cloud to this PCD file (optional)")
	debug := flag.Bool("debug", false, "log every gesture update")
	draw := flag.Bool("viz", false, "draw the final scene in a running motion-tools visualizer")
	flag.Parse()

	logger := logging.NewLogger("arplace-cli")
	if *debug {
		logger = logging.NewDebugLogger("arplace-cli")
	}

	if *tracePath == "" {
		logger.Fatal("-trace flag is required")
	}

	cfg := arplace.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = arplace.LoadConfig(*configPath); err != nil {
			logger.Fatal(err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scene, err := arplace.NewScene(cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}

	cloud, err := featureCloud(ctx, *featuresPath, *credsPath, *cameraName, logger)
	if err != nil {
		logger.Fatal(err)
	}
	if cloud != nil {
		if err := arplace.LoadFeatures(ctx, scene, cloud, cfg.Cloud, logger); err != nil {
			logger.Fatal(err)
		}
	}

	if *dumpPath != "" {
		if err := simscene.SavePCD(scene.Features(), *dumpPath, cfg.Cloud.UnitsPerMeter); err != nil {
			logger.Warnf("Failed to save feature cloud: %v", err)
		} else {
			logger.Infof("Saved %d feature points to %s", scene.Features().Size(), *dumpPath)
		}
	}

	f, err := os.Open(*tracePath)
	if err != nil {
		logger.Fatal(err)
	}
	tr, err := trace.Load(f)
	f.Close()
	if err != nil {
		logger.Fatal(err)
	}

	interaction, err := arplace.NewInteraction(scene, cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	interaction.OnChooseObject = func() { logger.Info("Nothing placed; choose an object to load") }
	interaction.OnReadout = func(r gesturepose.TransformReadout) {
		logger.Infof("Distance %.2f m, rotation %d°, scale %.2fx", r.Distance, r.AngleDegrees, r.Scale)
	}

	if err := replay(ctx, interaction, scene, tr, cfg.Gesture.RefreshInterval, logger); err != nil {
		logger.Fatal(err)
	}

	for i, obj := range interaction.Objects().All() {
		o := obj.(*simscene.Object)
		p := o.Position()
		logger.Infof("Object %d (%s): position=(%.3f, %.3f, %.3f) rotation=%.1f° scale=%.2f",
			i, o.Name, p.X, p.Y, p.Z, utils.RadToDeg(o.YRotation()), o.Scale())
	}

	if *draw {
		if err := drawScene(scene, interaction.Objects().All(), logger); err != nil {
			logger.Warnf("Failed to draw scene: %v", err)
		}
	}
}

// replay runs a trace on a virtual clock. Waits advance the clock one refresh
// interval at a time so held gestures and snaps see every tick.
func replay(ctx context.Context, interaction *arplace.Interaction, scene *simscene.Scene, tr *trace.Trace, interval time.Duration, logger logging.Logger) error {
	logger.Infof("Replaying %q (%d steps)", tr.Name, len(tr.Steps))
	clock := time.Unix(0, 0)

	for n, step := range tr.Steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if step.Wait > 0 {
			for end := clock.Add(step.Wait); clock.Before(end); {
				clock = clock.Add(interval)
				interaction.HandleFrame(clock)
				if err := interaction.Tick(clock); err != nil {
					logger.Warnf("step %d tick: %v", n, err)
				}
			}
			continue
		}

		for _, ev := range step.Events(scene, clock) {
			if err := interaction.Handle(ev); err != nil {
				return fmt.Errorf("step %d: %w", n, err)
			}
		}
		interaction.HandleFrame(clock)
	}
	return nil
}

// featureCloud loads the feature cloud from a PCD file or a robot camera.
// It returns nil when neither is configured.
func featureCloud(ctx context.Context, pcdPath, credsPath, cameraName string, logger logging.Logger) (pointcloud.PointCloud, error) {
	if pcdPath != "" {
		return simscene.LoadPCD(pcdPath)
	}
	if credsPath == "" {
		return nil, nil
	}
	if cameraName == "" {
		return nil, fmt.Errorf("-camera flag is required with -creds")
	}

	robotCreds, err := creds.Load(credsPath)
	if err != nil {
		return nil, err
	}
	machine, err := robotCreds.Dial(ctx, logger)
	if err != nil {
		return nil, err
	}
	defer machine.Close(context.Background())
	logger.Info("Connected to robot")

	cam, err := camera.FromProvider(machine, cameraName)
	if err != nil {
		return nil, fmt.Errorf("camera %s: %w", cameraName, err)
	}
	cloud, err := cam.NextPointCloud(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("camera %s point cloud: %w", cameraName, err)
	}
	logger.Infof("Pulled %d points from %s", cloud.Size(), cameraName)
	return cloud, nil
}
