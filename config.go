package arplace

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
	"github.com/biotinker/arplace/internal/simscene"
)

// Config is the full application configuration. Engine settings sit at the
// top level of the file.
type Config struct {
	gesturepose.Config `mapstructure:",squash"`

	Camera CameraConfig         `mapstructure:"camera"`
	Cloud  simscene.CloudConfig `mapstructure:"cloud"`
}

// CameraConfig describes the simulated camera.
type CameraConfig struct {
	Eye    r3.Vector `mapstructure:"eye"`
	Target r3.Vector `mapstructure:"target"`
	Width  float64   `mapstructure:"width"`
	Height float64   `mapstructure:"height"`
	FOVDeg float64   `mapstructure:"fov_deg"`
}

// DefaultConfig returns the stock configuration: a phone-sized viewport
// looking down at the floor from standing height.
func DefaultConfig() Config {
	return Config{
		Config: gesturepose.DefaultConfig(),
		Camera: CameraConfig{
			Eye:    r3.Vector{Y: 1.5, Z: 1.5},
			Target: r3.Vector{},
			Width:  750,
			Height: 1334,
			FOVDeg: 60,
		},
		Cloud: simscene.DefaultCloudConfig(),
	}
}

// Validate checks the engine and camera settings.
func (c Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("%w: camera viewport must be positive", gesturepose.ErrInvalidConfig)
	}
	if c.Camera.FOVDeg <= 0 || c.Camera.FOVDeg >= 180 {
		return fmt.Errorf("%w: camera fov_deg must be in (0, 180)", gesturepose.ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a YAML file and overlays it onto DefaultConfig. Unknown
// keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig overlays YAML data onto DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if len(raw) == 0 {
		return cfg, cfg.Validate()
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", gesturepose.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
