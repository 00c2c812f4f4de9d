package dsp

import "math"

const (
	byteHalfScale = 128.0
	// peakDecayFactor shrinks a decaying peak once per tick. It is applied
	// per tick rather than per unit time, an inherited behavior the rest of
	// the pipeline is tuned around.
	peakDecayFactor = 0.92
)

// RMS returns the root-mean-square level of byte waveform samples,
// normalized so full-scale deflection yields 1.0.
func RMS(samples []byte) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		v := (float64(s) - byteHalfScale) / byteHalfScale
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// Peak returns the maximum absolute normalized sample in the frame.
func Peak(samples []byte) float64 {
	var peak float64
	for _, s := range samples {
		v := math.Abs((float64(s) - byteHalfScale) / byteHalfScale)
		if v > peak {
			peak = v
		}
	}
	return peak
}

// DecayingPeak tracks a running maximum that shrinks by a fixed factor
// every tick and jumps back up whenever exceeded.
type DecayingPeak struct {
	value float64
}

// Update applies one tick of decay against the current level and returns
// the resulting peak.
func (p *DecayingPeak) Update(level float64) float64 {
	p.value = math.Max(p.value*peakDecayFactor, level)
	return p.value
}

// Value returns the current peak without advancing it.
func (p *DecayingPeak) Value() float64 { return p.value }

// Reset clears the peak.
func (p *DecayingPeak) Reset() { p.value = 0 }

// VolumeMeter bundles the frame-wide RMS/peak reductions with one decaying
// peak per tracked slot (the beat detector keys slots by band).
type VolumeMeter struct {
	peaks []DecayingPeak

	rms  float64
	peak float64
}

// NewVolumeMeter creates a meter tracking the given number of decaying
// peak slots.
func NewVolumeMeter(slots int) *VolumeMeter {
	if slots <= 0 {
		panic("dsp: slots must be > 0")
	}
	return &VolumeMeter{peaks: make([]DecayingPeak, slots)}
}

// Measure computes the frame RMS and instantaneous peak.
func (m *VolumeMeter) Measure(samples []byte) (rms, peak float64) {
	m.rms = RMS(samples)
	m.peak = Peak(samples)
	return m.rms, m.peak
}

// UpdatePeak advances the decaying peak for slot against level.
func (m *VolumeMeter) UpdatePeak(slot int, level float64) float64 {
	return m.peaks[slot].Update(level)
}

// PeakValue returns the decaying peak for slot without advancing it.
func (m *VolumeMeter) PeakValue(slot int) float64 {
	return m.peaks[slot].Value()
}

// RMSValue returns the last measured RMS.
func (m *VolumeMeter) RMSValue() float64 { return m.rms }

// PeakSample returns the last measured instantaneous peak.
func (m *VolumeMeter) PeakSample() float64 { return m.peak }
