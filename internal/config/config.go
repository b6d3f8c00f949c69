package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/aquarium/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGravity            = 50.0
	DefaultPixelsPerMeter     = 50.0
	DefaultTimestep           = 1.0 / 60.0
	DefaultVelocityIterations = 8
	DefaultPositionIterations = 3
	DefaultWallThickness      = 20.0
	DefaultCellWidth          = 10.0
	DefaultCellHeight         = 20.0
	DefaultFPS                = 60
	DefaultAddr               = ":8080"
	DefaultDataDir            = ".aquarium"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	DataDir string        `yaml:"data_dir"`
	Physics PhysicsConfig `yaml:"physics"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Server  ServerConfig  `yaml:"server"`
}

type PhysicsConfig struct {
	// Gravity is the downward acceleration in px/s².
	Gravity            float64       `yaml:"gravity"`
	PixelsPerMeter     float64       `yaml:"pixels_per_meter"`
	Timestep           float64       `yaml:"timestep"`
	VelocityIterations int           `yaml:"velocity_iterations"`
	PositionIterations int           `yaml:"position_iterations"`
	WallThickness      float64       `yaml:"wall_thickness"`
	Restitution        float64       `yaml:"restitution"`
	AirFriction        float64       `yaml:"air_friction"`
	Friction           float64       `yaml:"friction"`
	SpawnJitterX       float64       `yaml:"spawn_jitter_x"`
	SpawnJitterY       float64       `yaml:"spawn_jitter_y"`
	Density            DensityConfig `yaml:"density"`
	Seed               int64         `yaml:"seed"`
}

type DensityConfig struct {
	Incomplete float64 `yaml:"incomplete"`
	Completed  float64 `yaml:"completed"`
}

type ViewerConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	FPS        int     `yaml:"fps"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Physics: DefaultPhysics(),
		Viewer: ViewerConfig{
			CellWidth:  DefaultCellWidth,
			CellHeight: DefaultCellHeight,
			FPS:        DefaultFPS,
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Gravity:            DefaultGravity,
		PixelsPerMeter:     DefaultPixelsPerMeter,
		Timestep:           DefaultTimestep,
		VelocityIterations: DefaultVelocityIterations,
		PositionIterations: DefaultPositionIterations,
		WallThickness:      DefaultWallThickness,
		Restitution:        physics.DefaultRestitution,
		AirFriction:        physics.DefaultAirFriction,
		Friction:           physics.DefaultFriction,
		SpawnJitterX:       physics.DefaultJitterX,
		SpawnJitterY:       physics.DefaultJitterY,
		Density: DensityConfig{
			Incomplete: physics.DefaultIncompleteDensity,
			Completed:  physics.DefaultCompletedDensity,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	if c.Viewer.CellWidth <= 0 || c.Viewer.CellHeight <= 0 {
		return fmt.Errorf("%w: viewer cell size must be positive", ErrInvalidConfig)
	}
	if c.Viewer.FPS <= 0 {
		return fmt.Errorf("%w: viewer fps must be positive, got %d", ErrInvalidConfig, c.Viewer.FPS)
	}
	return nil
}

func (p PhysicsConfig) Validate() error {
	switch {
	case p.Timestep <= 0:
		return fmt.Errorf("%w: timestep must be positive, got %f", ErrInvalidConfig, p.Timestep)
	case p.PixelsPerMeter <= 0:
		return fmt.Errorf("%w: pixels_per_meter must be positive, got %f", ErrInvalidConfig, p.PixelsPerMeter)
	case p.VelocityIterations <= 0 || p.PositionIterations <= 0:
		return fmt.Errorf("%w: solver iterations must be positive", ErrInvalidConfig)
	case p.WallThickness <= 0:
		return fmt.Errorf("%w: wall_thickness must be positive", ErrInvalidConfig)
	case p.AirFriction < 0 || p.AirFriction >= 1:
		return fmt.Errorf("%w: air_friction must be in [0, 1), got %f", ErrInvalidConfig, p.AirFriction)
	case p.Density.Incomplete <= 0 || p.Density.Completed <= 0:
		return fmt.Errorf("%w: densities must be positive", ErrInvalidConfig)
	}
	return nil
}

// Params extracts the body factory constants.
func (p PhysicsConfig) Params() physics.Params {
	return physics.Params{
		Restitution:       p.Restitution,
		AirFriction:       p.AirFriction,
		Friction:          p.Friction,
		JitterX:           p.SpawnJitterX,
		JitterY:           p.SpawnJitterY,
		IncompleteDensity: p.Density.Incomplete,
		CompletedDensity:  p.Density.Completed,
	}
}
