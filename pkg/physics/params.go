package physics

import (
	"fmt"
	"time"
)

// Default simulation parameters.
const (
	DefaultCoulomb         = 8.987e9
	DefaultCharge          = 0.001
	DefaultSpring          = 0.00185
	DefaultDamping         = 0.92
	DefaultBounceDamping   = 0.25
	DefaultMinX            = 25 + 38 // margin + half a thumbnail
	DefaultMinY            = 25 + 38
	DefaultEnergyThreshold = 1.2
	DefaultSpeedThreshold  = 1.0
	DefaultTickInterval    = time.Millisecond
)

// Params configures the force model and the convergence test.
type Params struct {
	Coulomb float64 `toml:"coulomb"` // repulsion constant k_r
	Charge  float64 `toml:"charge"`  // charge q carried by every node
	Spring  float64 `toml:"spring"`  // spring constant k_s

	Damping       float64 `toml:"damping"`        // velocity multiplier per tick
	BounceDamping float64 `toml:"bounce_damping"` // velocity multiplier on a wall bounce

	MinX float64 `toml:"min_x"`
	MinY float64 `toml:"min_y"`

	EnergyThreshold float64 `toml:"energy_threshold"`
	SpeedThreshold  float64 `toml:"speed_threshold"`

	// TickInterval is the pause between ticks. Zero yields the processor
	// without sleeping.
	TickInterval time.Duration `toml:"tick_interval"`

	// MaxTicks aborts a phase with ErrNotConverged. Zero means no limit.
	MaxTicks int `toml:"max_ticks"`
}

// DefaultParams returns the standard parameters.
func DefaultParams() Params {
	return Params{
		Coulomb:         DefaultCoulomb,
		Charge:          DefaultCharge,
		Spring:          DefaultSpring,
		Damping:         DefaultDamping,
		BounceDamping:   DefaultBounceDamping,
		MinX:            DefaultMinX,
		MinY:            DefaultMinY,
		EnergyThreshold: DefaultEnergyThreshold,
		SpeedThreshold:  DefaultSpeedThreshold,
		TickInterval:    DefaultTickInterval,
	}
}

// Repulsion returns k_r*q², the numerator of the inverse-square force.
func (p Params) Repulsion() float64 { return p.Coulomb * p.Charge * p.Charge }

// Validate rejects parameters that cannot settle.
func (p Params) Validate() error {
	switch {
	case p.Coulomb < 0 || p.Charge < 0 || p.Spring < 0:
		return fmt.Errorf("force constants must not be negative")
	case p.Damping <= 0 || p.Damping >= 1:
		return fmt.Errorf("damping %v must be in (0, 1)", p.Damping)
	case p.BounceDamping < 0 || p.BounceDamping > 1:
		return fmt.Errorf("bounce damping %v must be in [0, 1]", p.BounceDamping)
	case p.EnergyThreshold <= 0 && p.SpeedThreshold <= 0:
		return fmt.Errorf("at least one convergence threshold must be positive")
	case p.TickInterval < 0 || p.MaxTicks < 0:
		return fmt.Errorf("tick interval and max ticks must not be negative")
	}
	return nil
}
