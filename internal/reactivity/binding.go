// Package reactivity maps named audio channels through easing curves into
// arbitrary downstream parameter values.
package reactivity

import (
	"github.com/rotisserie/eris"

	"github.com/kajovka/beatwave/internal/tempo"
)

// Mode selects how a binding turns its smoothed, eased source level into
// an output value. The variant is fixed at configuration time, never
// inferred per tick.
type Mode int

const (
	// ModeAdditive maps the eased level into start + eased·(target−start).
	ModeAdditive Mode = iota
	// ModeAdditiveLegacy is the backward-compatible min/max/base variant.
	ModeAdditiveLegacy
	// ModeInterpolation outputs the eased 0..1 level itself.
	ModeInterpolation
	// ModeSpeed integrates the eased level into a monotonically
	// non-decreasing accumulator.
	ModeSpeed
)

// String returns the mode's configuration name.
func (m Mode) String() string {
	switch m {
	case ModeAdditive:
		return "additive"
	case ModeAdditiveLegacy:
		return "additive-legacy"
	case ModeInterpolation:
		return "interpolation"
	case ModeSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// Binding is the read-only configuration for one mapped parameter. One
// binding drives exactly one smoothed channel, keyed by Name.
type Binding struct {
	// Name is the output parameter key and the smoothed-channel id.
	Name string
	// Source names the audio channel consumed (raw or smoothed scalar).
	Source string

	Attack  tempo.Note
	Release tempo.Note
	Curve   Curve
	Mode    Mode

	// Start/Target bound the output for ModeAdditive and ModeSpeed.
	Start  float64
	Target float64

	// Legacy fields, used only by ModeAdditiveLegacy: the eased level
	// scaled into (Max−Min) is added to Base, or subtracted from it when
	// Invert is set (Base then acts as the maximum).
	Min    float64
	Max    float64
	Base   float64
	Invert bool
}

// Validate checks a binding at registration time so configuration errors
// never surface per tick.
func (b Binding) Validate() error {
	if b.Name == "" {
		return eris.New("reactivity: binding name is empty")
	}
	if b.Source == "" {
		return eris.Errorf("reactivity: binding %q has no source channel", b.Name)
	}
	if b.Attack <= 0 || b.Release <= 0 {
		return eris.Errorf("reactivity: binding %q has non-positive note fraction", b.Name)
	}
	if !b.Curve.valid() {
		return eris.Errorf("reactivity: binding %q has degenerate curve control points", b.Name)
	}
	switch b.Mode {
	case ModeAdditive, ModeAdditiveLegacy, ModeInterpolation, ModeSpeed:
	default:
		return eris.Errorf("reactivity: binding %q has unknown mode %d", b.Name, b.Mode)
	}
	if b.Mode == ModeAdditiveLegacy && b.Max < b.Min {
		return eris.Errorf("reactivity: binding %q has max < min", b.Name)
	}
	return nil
}
