package beats

import "math"

const (
	// adaptiveRatio scales the decaying peak into the adaptive threshold.
	adaptiveRatio = 0.85
	// minIntervalMs is the refractory period between beats on one band.
	minIntervalMs = 160.0
	// expiryMs treats a beat as stale after this long, clearing the
	// refractory state entirely.
	expiryMs = 2000.0
	// minDelta is the minimum rise over the previous tick's raw level.
	// The comparison is against the immediately preceding tick, which
	// makes it frame-rate dependent; inherited behavior, keep as is.
	minDelta = 0.07
	// intensityGain scales a firing level into event intensity.
	intensityGain = 1.5
)

// Event is a detected beat. Events are created transiently on detection
// and consumed once; they are never retained by the detector.
type Event struct {
	Band        Band
	TimestampMs float64
	// Intensity is the firing level boosted and clamped to [0,1].
	Intensity float64
	// StereoPosition is the band's balance frozen at detection time.
	StereoPosition float64
}

// Detector is the per-band onset state machine: idle until a candidate
// clears every gate, then refractory until the minimum interval elapses.
type Detector struct {
	band   Band
	policy Policy

	lastBeatMs float64
	hasBeat    bool
	prevLevel  float64
}

// NewDetector creates a detector for one band using its table policy.
func NewDetector(band Band) *Detector {
	return &Detector{band: band, policy: PolicyFor(band)}
}

// Band returns the band this detector watches.
func (d *Detector) Band() Band { return d.band }

// TimeSinceBeatMs returns the elapsed time since the last fired beat, or 0
// when no beat is pending.
func (d *Detector) TimeSinceBeatMs(nowMs float64) float64 {
	if !d.hasBeat {
		return 0
	}
	return nowMs - d.lastBeatMs
}

// Step evaluates one tick. level is the band's current normalized value,
// decayingPeak its per-band peak envelope, balance the band's current
// stereo balance. It returns the emitted event, if any.
func (d *Detector) Step(nowMs, level, decayingPeak, balance float64) (Event, bool) {
	if d.hasBeat && nowMs-d.lastBeatMs > expiryMs {
		d.hasBeat = false
		d.lastBeatMs = 0
	}

	prev := d.prevLevel
	d.prevLevel = level

	threshold := math.Max(decayingPeak*adaptiveRatio, d.policy.MinThreshold)
	if level <= threshold {
		return Event{}, false
	}
	if level <= d.policy.MinThreshold {
		return Event{}, false
	}
	if d.hasBeat && nowMs-d.lastBeatMs < minIntervalMs {
		return Event{}, false
	}
	if level-prev <= minDelta {
		return Event{}, false
	}

	d.lastBeatMs = nowMs
	d.hasBeat = true

	return Event{
		Band:           d.band,
		TimestampMs:    nowMs,
		Intensity:      math.Min(level*intensityGain, 1.0),
		StereoPosition: balance,
	}, true
}
