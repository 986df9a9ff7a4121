package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dpsim/internal/pendulum"
)

const (
	DefaultDt          = 0.01
	DefaultDuration    = 10.0
	DefaultTimeScale   = 8.0
	DefaultSampleEvery = 1
	DefaultTheta1      = 15.0
	DefaultTheta2      = 45.0
	DefaultLength1     = 100.0
	DefaultLength2     = 80.0
	DefaultMass        = 5.0
)

// MaxTicks caps duration/|dt| for a single run.
const MaxTicks = math.MaxInt32

// ErrInvalid marks a configuration that cannot drive a simulation.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Pendulum    PendulumConfig `yaml:"pendulum" json:"pendulum"`
	Dt          float64        `yaml:"dt" json:"dt"`
	Duration    float64        `yaml:"duration" json:"duration"`
	TimeScale   float64        `yaml:"time_scale" json:"time_scale"`
	SampleEvery int            `yaml:"sample_every" json:"sample_every"`
	Frame       string         `yaml:"frame" json:"frame"`
}

// PendulumConfig holds initial conditions and physical parameters. Angles are
// in degrees, angular velocities in radians per unit time.
type PendulumConfig struct {
	Theta1  float64 `yaml:"theta1" json:"theta1"`
	Theta2  float64 `yaml:"theta2" json:"theta2"`
	Omega1  float64 `yaml:"omega1" json:"omega1"`
	Omega2  float64 `yaml:"omega2" json:"omega2"`
	Length1 float64 `yaml:"length1" json:"length1"`
	Length2 float64 `yaml:"length2" json:"length2"`
	Mass1   float64 `yaml:"mass1" json:"mass1"`
	Mass2   float64 `yaml:"mass2" json:"mass2"`
	Gravity float64 `yaml:"gravity" json:"gravity"`
}

func DefaultConfig() *Config {
	return &Config{
		Pendulum: PendulumConfig{
			Theta1:  DefaultTheta1,
			Theta2:  DefaultTheta2,
			Length1: DefaultLength1,
			Length2: DefaultLength2,
			Mass1:   DefaultMass,
			Mass2:   DefaultMass,
			Gravity: pendulum.DefaultGravity,
		},
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		TimeScale:   DefaultTimeScale,
		SampleEvery: DefaultSampleEvery,
		Frame:       pendulum.FrameDisplay.String(),
	}
}

// Load reads a YAML file on top of DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks run settings and the physical parameters.
func (c *Config) Validate() error {
	if c.Dt == 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be finite and non-zero, got %g", ErrInvalid, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalid, c.Duration)
	}
	if n := c.Duration / math.Abs(c.Dt); !(n <= MaxTicks) {
		return fmt.Errorf("%w: duration/dt gives %g ticks, limit is %d", ErrInvalid, n, MaxTicks)
	}
	if !(c.TimeScale > 0) {
		return fmt.Errorf("%w: time_scale must be positive, got %g", ErrInvalid, c.TimeScale)
	}
	if c.SampleEvery < 1 {
		return fmt.Errorf("%w: sample_every must be at least 1, got %d", ErrInvalid, c.SampleEvery)
	}
	if _, err := pendulum.ParseFrame(c.Frame); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	return p.Validate()
}

// Params converts the configuration to physical parameters. It does not
// validate lengths or masses.
func (c *Config) Params() (pendulum.Params, error) {
	frame, err := pendulum.ParseFrame(c.Frame)
	if err != nil {
		return pendulum.Params{}, err
	}
	pc := c.Pendulum
	return pendulum.Params{
		Length1: pc.Length1,
		Length2: pc.Length2,
		Mass1:   pc.Mass1,
		Mass2:   pc.Mass2,
		Gravity: pc.Gravity,
		Frame:   frame,
	}, nil
}

// InitialAngles returns θ1 and θ2 in radians.
func (c *Config) InitialAngles() (theta1, theta2 float64) {
	return c.Pendulum.Theta1 * math.Pi / 180, c.Pendulum.Theta2 * math.Pi / 180
}

// NewPendulum builds the configured pendulum.
func (c *Config) NewPendulum() (*pendulum.Pendulum, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	theta1, theta2 := c.InitialAngles()
	return pendulum.New(theta1, theta2, p, pendulum.WithVelocities(c.Pendulum.Omega1, c.Pendulum.Omega2))
}

// Step is the simulated time advanced per tick.
func (c *Config) Step() float64 {
	return c.Dt * c.TimeScale
}

// SetParam updates one named pendulum field. Angles are in degrees.
func (c *Config) SetParam(name string, value float64) error {
	pc := &c.Pendulum
	switch name {
	case "theta1":
		pc.Theta1 = value
	case "theta2":
		pc.Theta2 = value
	case "omega1":
		pc.Omega1 = value
	case "omega2":
		pc.Omega2 = value
	case "length1":
		pc.Length1 = value
	case "length2":
		pc.Length2 = value
	case "mass1":
		pc.Mass1 = value
	case "mass2":
		pc.Mass2 = value
	case "gravity":
		pc.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
