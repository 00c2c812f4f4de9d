package tempo

import "math"

// Note is a musical-note fraction of a whole bar used to express smoothing
// time constants relative to the current tempo.
type Note float64

// Common note fractions.
const (
	NoteWhole        Note = 1.0
	NoteHalf         Note = 1.0 / 2
	NoteQuarter      Note = 1.0 / 4
	NoteEighth       Note = 1.0 / 8
	NoteSixteenth    Note = 1.0 / 16
	NoteThirtySecond Note = 1.0 / 32
)

// fallbackTauMs is the time constant used when no tempo estimate exists
// yet. It is denominated in milliseconds and converted at the point of use.
const fallbackTauMs = 150.0

// Tau converts a note fraction plus a BPM estimate into an absolute time
// constant in seconds. With no estimate (bpm <= 0) a fixed fallback is
// used so smoothing never degenerates.
func Tau(note Note, bpm float64) float64 {
	if bpm > 0 {
		return (60.0 / bpm) * 4 * float64(note)
	}
	return fallbackTauMs / 1000.0
}

// Smoother is a generic asymmetric attack/release one-pole exponential
// smoother over a set of named channels. Each channel holds one scalar
// decayed toward its target every tick; channels live for the lifetime of
// the engine.
type Smoother struct {
	channels map[string]float64
}

// NewSmoother returns an empty smoother.
func NewSmoother() *Smoother {
	return &Smoother{channels: make(map[string]float64)}
}

// Smooth advances the named channel toward target over deltaSeconds using
// tempo-relative constants: attack applies while rising, release while
// falling. It returns the updated value.
func (s *Smoother) Smooth(name string, target float64, attack, release Note, bpm, deltaSeconds float64) float64 {
	current := s.channels[name]
	note := release
	if target > current {
		note = attack
	}
	tau := Tau(note, bpm)
	current += (target - current) * alpha(deltaSeconds, tau)
	s.channels[name] = current
	return current
}

// SmoothTau advances the named channel using explicit attack/release time
// constants in seconds.
func (s *Smoother) SmoothTau(name string, target, attackTau, releaseTau, deltaSeconds float64) float64 {
	current := s.channels[name]
	tau := releaseTau
	if target > current {
		tau = attackTau
	}
	current += (target - current) * alpha(deltaSeconds, tau)
	s.channels[name] = current
	return current
}

// Value returns the channel's current value without advancing it.
func (s *Smoother) Value(name string) float64 {
	return s.channels[name]
}

// Set overwrites a channel's value directly.
func (s *Smoother) Set(name string, v float64) {
	s.channels[name] = v
}

// alpha is the one-pole smoothing coefficient for a step of dt seconds
// against a time constant of tau seconds.
func alpha(dt, tau float64) float64 {
	if tau <= 0 {
		return 1
	}
	if dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-dt/tau)
}
