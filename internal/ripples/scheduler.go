// Package ripples schedules the transient expanding-ring events spawned
// from detected beats, bounded by a fixed capacity and a rolling-window
// creation rate.
package ripples

import (
	"github.com/kajovka/beatwave/internal/beats"
)

const (
	// Capacity is the maximum number of concurrent ripples. The oldest is
	// evicted when a new ripple is accepted at capacity.
	Capacity = 12

	// rate limiting: at most maxPerWindow creations inside windowMs,
	// after which cooldownMs blocks all creation.
	maxPerWindow = 9
	windowMs     = 500.0
	cooldownMs   = 300.0

	// Speed is the ring expansion rate in radius units per second.
	Speed = 0.3
	// fadeBufferSeconds pads the lifetime so the ring finishes fading
	// after reaching its target radius.
	fadeBufferSeconds = 0.1
)

// Ripple is one active ring. It is written once on spawn and only read
// afterward; the expiry sweep is the sole mutation of the registry.
type Ripple struct {
	StartTimeMs         float64
	CenterX             float64
	CenterY             float64
	Intensity           float64
	Width               float64
	MinRadius           float64
	MaxRadius           float64
	IntensityMultiplier float64
	LifetimeSeconds     float64
}

// spawnPolicy is the per-band placement and sizing table.
type spawnPolicy struct {
	centerYBase      float64
	centerYIntensity float64
	width            float64
	minRadius        float64
	baseMaxRadius    float64
	multiplier       float64
}

var spawnPolicies = [beats.BandCount]spawnPolicy{
	beats.Bass:   {centerYBase: -0.15, centerYIntensity: -0.25, width: 0.15, baseMaxRadius: 0.88, multiplier: 0.65},
	beats.Mid:    {width: 0.05, baseMaxRadius: 1.3, multiplier: 0.8},
	beats.Treble: {centerYBase: 0.25, width: 0.07, baseMaxRadius: 0.5, multiplier: 0.55},
}

// Lifetime returns how long a ring with the given radii lives: the time to
// expand from min to max radius plus a short fade buffer.
func Lifetime(minRadius, maxRadius float64) float64 {
	return (maxRadius-minRadius)/Speed + fadeBufferSeconds
}

// Scheduler is the capacity- and rate-limited ripple registry. All state
// is owned by the single-threaded tick.
type Scheduler struct {
	active []Ripple

	creationTimes   []float64
	cooldownUntilMs float64

	arrays Arrays
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		active:        make([]Ripple, 0, Capacity),
		creationTimes: make([]float64, 0, maxPerWindow+1),
	}
}

// Spawn creates a ripple from a beat event, subject to admission control.
// It reports whether the ripple was accepted.
func (s *Scheduler) Spawn(event beats.Event) bool {
	now := event.TimestampMs
	if now < s.cooldownUntilMs {
		return false
	}

	s.pruneWindow(now)
	if len(s.creationTimes) >= maxPerWindow {
		s.cooldownUntilMs = now + cooldownMs
		return false
	}

	policy := spawnPolicies[event.Band]
	maxRadius := policy.baseMaxRadius * (0.5 + 0.5*event.Intensity)
	ripple := Ripple{
		StartTimeMs:         now,
		CenterX:             event.StereoPosition,
		CenterY:             policy.centerYBase + policy.centerYIntensity*event.Intensity,
		Intensity:           event.Intensity,
		Width:               policy.width,
		MinRadius:           policy.minRadius,
		MaxRadius:           maxRadius,
		IntensityMultiplier: policy.multiplier,
		LifetimeSeconds:     Lifetime(policy.minRadius, maxRadius),
	}

	if len(s.active) >= Capacity {
		copy(s.active, s.active[1:])
		s.active = s.active[:Capacity-1]
	}
	s.active = append(s.active, ripple)
	s.creationTimes = append(s.creationTimes, now)
	return true
}

func (s *Scheduler) pruneWindow(nowMs float64) {
	cutoff := nowMs - windowMs
	idx := 0
	for _, t := range s.creationTimes {
		if t > cutoff {
			s.creationTimes[idx] = t
			idx++
		}
	}
	s.creationTimes = s.creationTimes[:idx]
}

// sweep drops ripples whose age exceeds their lifetime.
func (s *Scheduler) sweep(nowMs float64) {
	idx := 0
	for _, r := range s.active {
		age := (nowMs - r.StartTimeMs) / 1000.0
		if age <= r.LifetimeSeconds {
			s.active[idx] = r
			idx++
		}
	}
	s.active = s.active[:idx]
}

// ActiveCount sweeps expired ripples and returns how many remain.
func (s *Scheduler) ActiveCount(nowMs float64) int {
	s.sweep(nowMs)
	return len(s.active)
}

// Arrays is the constant-shape output consumed by the renderer every tick:
// fixed-length parallel arrays sized to Capacity and zero-padded beyond
// the active count.
type Arrays struct {
	// Positions holds x,y pairs: ripple i occupies indices 2i and 2i+1.
	Positions   [Capacity * 2]float64
	AgesSeconds [Capacity]float64
	Intensities [Capacity]float64
	Widths      [Capacity]float64
	MinRadii    [Capacity]float64
	MaxRadii    [Capacity]float64
	Multipliers [Capacity]float64
	// Active is 1 for live slots, 0 for padding.
	Active [Capacity]float64
	Count  int
}

// Snapshot sweeps expired ripples and fills the parallel arrays. The
// returned pointer aliases a buffer reused across ticks.
func (s *Scheduler) Snapshot(nowMs float64) *Arrays {
	s.sweep(nowMs)

	a := &s.arrays
	*a = Arrays{Count: len(s.active)}
	for i, r := range s.active {
		a.Positions[i*2] = r.CenterX
		a.Positions[i*2+1] = r.CenterY
		a.AgesSeconds[i] = (nowMs - r.StartTimeMs) / 1000.0
		a.Intensities[i] = r.Intensity
		a.Widths[i] = r.Width
		a.MinRadii[i] = r.MinRadius
		a.MaxRadii[i] = r.MaxRadius
		a.Multipliers[i] = r.IntensityMultiplier
		a.Active[i] = 1
	}
	return a
}
