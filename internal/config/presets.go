package config

import "sort"

func preset(theta1, theta2, duration float64, mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Pendulum.Theta1 = theta1
	cfg.Pendulum.Theta2 = theta2
	cfg.Duration = duration
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

var Presets = map[string]*Config{
	"classic":   preset(DefaultTheta1, DefaultTheta2, 30.0, nil),
	"gentle":    preset(5, 5, 30.0, nil),
	"symmetric": preset(90, 90, 30.0, nil),
	"chaos": preset(170, 175, 60.0, func(c *Config) {
		c.Dt = 0.005
	}),
	"heavy-lower": preset(60, 0, 30.0, func(c *Config) {
		c.Pendulum.Mass2 = 50
	}),
	"rest": preset(0, 0, 10.0, nil),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
