package config

import "sort"

// Presets override the physics section of the default config.
var Presets = map[string]func(*PhysicsConfig){
	"calm": func(p *PhysicsConfig) {
		p.Gravity = 30
		p.AirFriction = 0.05
		p.Restitution = 0.5
	},
	"lively": func(p *PhysicsConfig) {
		p.Gravity = 50
		p.AirFriction = 0.005
		p.Restitution = 0.95
		p.SpawnJitterY = 120
	},
	"heavy": func(p *PhysicsConfig) {
		p.Gravity = 120
		p.Density.Completed = 0.2
	},
	"zero-g": func(p *PhysicsConfig) {
		p.Gravity = 0
		p.AirFriction = 0.01
	},
}

// GetPreset returns the default config with a preset applied, or nil if the
// preset does not exist.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(&cfg.Physics)
	return cfg
}

// Apply layers a named preset onto an existing config.
func (c *Config) Apply(name string) bool {
	apply, ok := Presets[name]
	if !ok {
		return false
	}
	apply(&c.Physics)
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
