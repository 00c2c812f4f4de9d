package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMSOfSilenceIsZero(t *testing.T) {
	samples := make([]byte, 256)
	for i := range samples {
		samples[i] = 128
	}
	assert.Zero(t, RMS(samples))
	assert.Zero(t, RMS(nil))
}

func TestRMSOfFullScaleSquareWave(t *testing.T) {
	samples := make([]byte, 64)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 0
		} else {
			samples[i] = 255 // (255-128)/128 ≈ 0.992
		}
	}
	rms := RMS(samples)
	assert.Greater(t, rms, 0.9)
	assert.LessOrEqual(t, rms, 1.0)
}

func TestPeakPicksLargestDeflection(t *testing.T) {
	samples := []byte{128, 128, 192, 128, 64}
	assert.InDelta(t, 0.5, Peak(samples), 1e-9)
}

func TestDecayingPeakShrinksPerTick(t *testing.T) {
	var p DecayingPeak
	p.Update(1.0)
	assert.InDelta(t, 1.0, p.Value(), 1e-9)

	p.Update(0.0)
	assert.InDelta(t, 0.92, p.Value(), 1e-9)
	p.Update(0.0)
	assert.InDelta(t, 0.8464, p.Value(), 1e-9)
}

func TestDecayingPeakJumpsBackUp(t *testing.T) {
	var p DecayingPeak
	p.Update(0.4)
	p.Update(0.0)
	assert.Less(t, p.Value(), 0.4)

	p.Update(0.9)
	assert.InDelta(t, 0.9, p.Value(), 1e-9)
}

func TestVolumeMeterTracksSlotsIndependently(t *testing.T) {
	m := NewVolumeMeter(3)
	m.UpdatePeak(0, 0.8)
	m.UpdatePeak(1, 0.2)

	assert.InDelta(t, 0.8, m.PeakValue(0), 1e-9)
	assert.InDelta(t, 0.2, m.PeakValue(1), 1e-9)
	assert.Zero(t, m.PeakValue(2))
}
