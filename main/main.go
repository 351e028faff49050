package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/biotinker/arplace"
	gesturepose "github.com/biotinker/arplace/gesture_pose"
	"github.com/biotinker/arplace/internal/simscene"
	"github.com/biotinker/arplace/internal/trace"

	"go.viam.com/rdk/logging"
)

// frameInterval is how often the simulated camera delivers a frame.
const frameInterval = 33 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	logger := logging.NewDebugLogger("arplace")

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
	interaction, err := arplace.NewInteraction(scene, cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	interaction.OnChooseObject = func() { logger.Info("Nothing placed; type `load NAME` to add an object") }
	interaction.OnReadout = func(r gesturepose.TransformReadout) { logger.Info(r.String()) }

	events := make(chan arplace.Event, 64)
	go readCommands(ctx, cancel, scene, events, logger)
	go frames(ctx, events)

	logger.Info("Reading commands from stdin (began/moved/ended/cancelled, load, plane, unplane, camera, wait)")
	if err := interaction.Run(ctx, events); err != nil {
		logger.Fatal(err)
	}
}

// readCommands parses stdin lines into events and stops the session at EOF.
func readCommands(ctx context.Context, stop context.CancelFunc, scene *simscene.Scene, events chan<- arplace.Event, logger logging.Logger) {
	defer stop()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		step, err := trace.ParseLine(line)
		if err != nil {
			logger.Warn(err)
			continue
		}
		if step.Wait > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(step.Wait):
			}
			continue
		}
		for _, ev := range step.Events(scene, time.Now()) {
			select {
			case <-ctx.Done():
				return
			case events <- ev:
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warnf("reading stdin: %v", err)
	}
}

// frames posts a frame event at the camera rate until ctx is done. Frames are
// dropped while the loop is behind.
func frames(ctx context.Context, events chan<- arplace.Event) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			select {
			case events <- arplace.FrameEvent{At: now}:
			default:
			}
		}
	}
}
