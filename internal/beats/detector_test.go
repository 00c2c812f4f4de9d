package beats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fire drives a detector with a silent tick followed by a loud one so the
// dynamic-change gate passes.
func fire(d *Detector, nowMs, level float64) (Event, bool) {
	d.Step(nowMs-10, 0, 0, 0)
	return d.Step(nowMs, level, 0, 0)
}

func TestDetectorFiresAboveThresholds(t *testing.T) {
	d := NewDetector(Bass)
	event, fired := fire(d, 1000, 0.8)

	require.True(t, fired)
	assert.Equal(t, Bass, event.Band)
	assert.InDelta(t, 1000.0, event.TimestampMs, 1e-9)
	// intensity = min(0.8*1.5, 1.0)
	assert.InDelta(t, 1.0, event.Intensity, 1e-9)
}

func TestDetectorIntensityScalesWithLevel(t *testing.T) {
	d := NewDetector(Treble)
	event, fired := fire(d, 1000, 0.4)
	require.True(t, fired)
	assert.InDelta(t, 0.6, event.Intensity, 1e-9)
}

func TestDetectorRefractoryWindowEmitsOnce(t *testing.T) {
	d := NewDetector(Bass)
	_, fired := fire(d, 1000, 0.8)
	require.True(t, fired)

	// Second candidate 100ms later: inside the 160ms window.
	d.Step(1050, 0, 0, 0)
	_, fired = d.Step(1100, 0.9, 0, 0)
	assert.False(t, fired)

	// 200ms after the first: allowed again.
	d.Step(1150, 0, 0, 0)
	_, fired = d.Step(1200, 0.9, 0, 0)
	assert.True(t, fired)
}

func TestDetectorBelowMinThresholdNeverFires(t *testing.T) {
	d := NewDetector(Bass) // min threshold 0.30
	// Level clears the adaptive gate (decayingPeak*0.85 = 0.17) but not
	// the band minimum.
	d.Step(1000, 0, 0.2, 0)
	_, fired := d.Step(1010, 0.25, 0.2, 0)
	assert.False(t, fired)
}

func TestDetectorAdaptiveThresholdGate(t *testing.T) {
	d := NewDetector(Bass)
	// Level above the band minimum but under decayingPeak*0.85.
	d.Step(1000, 0, 0.9, 0)
	_, fired := d.Step(1010, 0.5, 0.9, 0)
	assert.False(t, fired)
}

func TestDetectorDynamicChangeGate(t *testing.T) {
	d := NewDetector(Bass)
	_, fired := fire(d, 1000, 0.8)
	require.True(t, fired)

	// Well past the refractory window, but the level holds steady: no
	// rise over the previous tick, no beat.
	_, fired = d.Step(1300, 0.8, 0, 0)
	assert.False(t, fired)
}

func TestDetectorBeatExpiryClearsRefractory(t *testing.T) {
	d := NewDetector(Bass)
	_, fired := fire(d, 1000, 0.8)
	require.True(t, fired)
	assert.Positive(t, d.TimeSinceBeatMs(1500))

	// Past the 2s expiry the stale beat is forgotten.
	d.Step(3500, 0, 0, 0)
	assert.Zero(t, d.TimeSinceBeatMs(3500))
}

func TestDetectorFreezesStereoPosition(t *testing.T) {
	d := NewDetector(Mid)
	d.Step(990, 0, 0, -0.9)
	event, fired := d.Step(1000, 0.7, 0, 0.33)
	require.True(t, fired)
	assert.InDelta(t, 0.33, event.StereoPosition, 1e-9)
}

func TestBandStringAndRange(t *testing.T) {
	assert.Equal(t, "bass", Bass.String())
	assert.Equal(t, "mid", Mid.String())
	assert.Equal(t, "treble", Treble.String())
	assert.InDelta(t, 20.0, Bass.Range().Low, 1e-9)
	assert.InDelta(t, 6000.0, Treble.Range().High, 1e-9)
}

func TestPolicyTableOrdering(t *testing.T) {
	assert.Greater(t, PolicyFor(Bass).MinThreshold, PolicyFor(Treble).MinThreshold)
	assert.Zero(t, PolicyFor(Band(99)).MinThreshold)
}
