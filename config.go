package cubesim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PhysicsParameters is the immutable per-tick parameter set. It is installed
// as an app resource and passed by value into every engine entry point;
// nothing in the core mutates it.
type PhysicsParameters struct {
	CubeSize          float32
	CubeMass          float32
	Restitution       float32
	VolumeHalfExtent  float32
	FormAggregates    bool
	Dt                float32
	LinearSpeedLimit  float32
	AngularSpeedLimit float32
	LinearDamping     float32
	AngularDamping    float32
	AggregateBlend    float32
	LeashStrength     float32
}

func DefaultParameters() PhysicsParameters {
	return PhysicsParameters{
		CubeSize:          1.0,
		CubeMass:          1.0,
		Restitution:       0.6,
		VolumeHalfExtent:  12.0,
		FormAggregates:    true,
		Dt:                1.0 / 60.0,
		LinearSpeedLimit:  8.0,
		AngularSpeedLimit: 4.0,
		LinearDamping:     0.98,
		AngularDamping:    0.95,
		AggregateBlend:    0.35,
		LeashStrength:     0.5,
	}
}

// ScenarioConfig is the external scenario file. The loader owns validation;
// the physics core assumes well-formed parameters.
type ScenarioConfig struct {
	CubeSize         float32 `yaml:"cube_size"`
	CubeMass         float32 `yaml:"cube_mass"`
	Restitution      float32 `yaml:"restitution"`
	VolumeHalfExtent float32 `yaml:"volume_half_extent"`
	FormAggregates   *bool   `yaml:"form_aggregates"`
	Particles        int     `yaml:"particles"`
	Seed             int64   `yaml:"seed"`
	MaxStartSpeed    float32 `yaml:"max_start_speed"`
	MaxStartSpin     float32 `yaml:"max_start_spin"`
	BroadPhase       string  `yaml:"broad_phase"`
}

func DefaultScenario() ScenarioConfig {
	form := true
	return ScenarioConfig{
		CubeSize:         1.0,
		CubeMass:         1.0,
		Restitution:      0.6,
		VolumeHalfExtent: 12.0,
		FormAggregates:   &form,
		Particles:        64,
		Seed:             1,
		MaxStartSpeed:    3.0,
		MaxStartSpin:     1.5,
		BroadPhase:       BroadPhaseGrid,
	}
}

// LoadScenario reads a YAML scenario file, filling every omitted field from
// the defaults.
func LoadScenario(path string) (ScenarioConfig, error) {
	cfg := DefaultScenario()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("scenario %s: %w", path, err)
	}
	return cfg, nil
}

func (c ScenarioConfig) Validate() error {
	if c.CubeSize <= 0 {
		return fmt.Errorf("cube_size must be positive, got %v", c.CubeSize)
	}
	if c.CubeMass <= 0 {
		return fmt.Errorf("cube_mass must be positive, got %v", c.CubeMass)
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		return fmt.Errorf("restitution must be in [0,1], got %v", c.Restitution)
	}
	if c.VolumeHalfExtent <= c.CubeSize {
		return fmt.Errorf("volume_half_extent %v too small for cube_size %v", c.VolumeHalfExtent, c.CubeSize)
	}
	if c.Particles < 0 {
		return fmt.Errorf("particles must be non-negative, got %d", c.Particles)
	}
	switch c.BroadPhase {
	case BroadPhaseGrid, BroadPhaseSweep:
	default:
		return fmt.Errorf("broad_phase must be %q or %q, got %q", BroadPhaseGrid, BroadPhaseSweep, c.BroadPhase)
	}
	return nil
}

// Parameters maps the scenario onto the engine's parameter set.
func (c ScenarioConfig) Parameters() PhysicsParameters {
	params := DefaultParameters()
	params.CubeSize = c.CubeSize
	params.CubeMass = c.CubeMass
	params.Restitution = c.Restitution
	params.VolumeHalfExtent = c.VolumeHalfExtent
	if c.FormAggregates != nil {
		params.FormAggregates = *c.FormAggregates
	}
	return params
}
