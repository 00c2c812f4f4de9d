// Package tempo maintains the running BPM estimate and the tempo-relative
// exponential smoothing built on top of it.
package tempo

const (
	// MinBeatIntervalSeconds/MaxBeatIntervalSeconds bound the plausible
	// inter-beat intervals (600 down to 30 BPM). Intervals outside the
	// range never move the estimate.
	MinBeatIntervalSeconds = 0.1
	MaxBeatIntervalSeconds = 2.0

	// bpmBlend weights the previous estimate against the instantaneous BPM
	// of a newly accepted interval.
	bpmBlend = 0.7
)

// Clock tracks a BPM estimate from accepted beat intervals. The zero value
// has no estimate (BPM 0) and is ready to use.
type Clock struct {
	bpm float64
}

// Accept folds one inter-beat interval into the estimate. Intervals outside
// the plausible range are ignored and the previous estimate is kept.
func (c *Clock) Accept(intervalSeconds float64) {
	if intervalSeconds < MinBeatIntervalSeconds || intervalSeconds > MaxBeatIntervalSeconds {
		return
	}
	instant := 60.0 / intervalSeconds
	if c.bpm == 0 {
		c.bpm = instant
		return
	}
	c.bpm = c.bpm*bpmBlend + instant*(1-bpmBlend)
}

// BPM returns the current estimate, 0 if no interval was ever accepted.
func (c *Clock) BPM() float64 { return c.bpm }

// Reset clears the estimate.
func (c *Clock) Reset() { c.bpm = 0 }
