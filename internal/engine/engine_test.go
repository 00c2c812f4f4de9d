package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kajovka/beatwave/internal/dsp"
	"github.com/kajovka/beatwave/internal/reactivity"
	"github.com/kajovka/beatwave/internal/tempo"
)

func silentFrame(tsMs float64) *dsp.SpectrumFrame {
	silence := make([]byte, 1024)
	for i := range silence {
		silence[i] = 128
	}
	return &dsp.SpectrumFrame{
		Frequency:    make([]byte, 1024),
		TimeDomain:   silence,
		SampleRate:   44100,
		TimestampMs:  tsMs,
		DeltaSeconds: 1.0 / 60,
	}
}

func loudBassFrame(tsMs float64) *dsp.SpectrumFrame {
	f := silentFrame(tsMs)
	for i := 0; i <= 9; i++ { // bass bins at 44.1kHz/1024
		f.Frequency[i] = 255
	}
	return f
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func TestFiveSilentTicksStayAllZero(t *testing.T) {
	e := newTestEngine(t, Config{})

	for i := 0; i < 5; i++ {
		snap := e.Tick(silentFrame(float64(i) * 16.7))

		assert.Zero(t, snap.Bass)
		assert.Zero(t, snap.Mid)
		assert.Zero(t, snap.Treble)
		assert.Zero(t, snap.RMS)
		assert.Zero(t, snap.Peak)
		assert.Zero(t, snap.BPM)
		assert.Empty(t, snap.Beats)
		assert.Equal(t, 0, snap.Ripples.Count)
		for _, v := range snap.FreqBands {
			assert.Zero(t, v)
		}
	}
}

func TestInvalidFrameShortCircuitsToZeroSnapshot(t *testing.T) {
	e := newTestEngine(t, Config{})

	// Prime some state first.
	e.Tick(loudBassFrame(0))

	snap := e.Tick(&dsp.SpectrumFrame{TimestampMs: 100})
	assert.Zero(t, snap.Bass)
	assert.Zero(t, snap.SmoothedBass)
	assert.Zero(t, snap.RMS)
	assert.Empty(t, snap.Beats)
	assert.Equal(t, 0, snap.Ripples.Count)

	var nilEngineFrame *dsp.SpectrumFrame
	snap = e.Tick(nilEngineFrame)
	assert.Zero(t, snap.Bass)
}

func TestBassOnsetFiresBeatAndRipple(t *testing.T) {
	e := newTestEngine(t, Config{})

	e.Tick(silentFrame(0))
	snap := e.Tick(loudBassFrame(16.7))

	require.Len(t, snap.Beats, 1)
	assert.Equal(t, "bass", snap.Beats[0].Band.String())
	assert.InDelta(t, 1.0, snap.Bass, 1e-9)
	assert.Equal(t, 1, snap.Ripples.Count)
	assert.InDelta(t, 1.0, snap.Ripples.Active[0], 1e-9)
}

func TestSteadyBeatsBuildTempoEstimate(t *testing.T) {
	e := newTestEngine(t, Config{})

	// 500ms apart → 120 BPM. Silence between onsets lets the decaying
	// peak and dynamic-change gate reset.
	for beat := 0; beat < 4; beat++ {
		base := float64(beat) * 500
		e.Tick(loudBassFrame(base))
		for i := 1; i < 30; i++ {
			e.Tick(silentFrame(base + float64(i)*16.7))
		}
	}

	assert.InDelta(t, 120.0, e.BPM(), 1.0)
}

func TestSmoothedChannelsTrailRawLevels(t *testing.T) {
	e := newTestEngine(t, Config{})

	e.Tick(silentFrame(0))
	snap := e.Tick(loudBassFrame(16.7))

	assert.Greater(t, snap.SmoothedBass, 0.0)
	assert.Less(t, snap.SmoothedBass, snap.Bass)
}

func TestReactivityBindingsFlowThroughSnapshot(t *testing.T) {
	e := newTestEngine(t, Config{
		Bindings: []reactivity.Binding{{
			Name:    "glowStrength",
			Source:  "bass",
			Attack:  tempo.NoteThirtySecond,
			Release: tempo.NoteEighth,
			Curve:   reactivity.LinearCurve,
			Mode:    reactivity.ModeAdditive,
			Start:   0,
			Target:  10,
		}},
	})

	var snap Snapshot
	tsMs := 0.0
	for i := 0; i < 100; i++ {
		snap = e.Tick(loudBassFrame(tsMs))
		tsMs += 16.7
	}
	assert.Greater(t, snap.Reactivity["glowStrength"], 5.0)
}

func TestBindingValidationFailsFast(t *testing.T) {
	_, err := New(Config{
		Bindings: []reactivity.Binding{{Name: "bad"}},
	})
	assert.Error(t, err)
}

func TestGateDisablesBinding(t *testing.T) {
	e := newTestEngine(t, Config{
		Bindings: []reactivity.Binding{{
			Name:    "pulseStrength",
			Source:  "bass",
			Attack:  tempo.NoteThirtySecond,
			Release: tempo.NoteEighth,
			Curve:   reactivity.LinearCurve,
			Mode:    reactivity.ModeInterpolation,
		}},
		Gates: reactivity.GateMap{"enablePulse": false},
	})

	snap := e.Tick(loudBassFrame(0))
	_, present := snap.Reactivity["pulseStrength"]
	assert.False(t, present)

	e.SetGate("enablePulse", true)
	snap = e.Tick(loudBassFrame(16.7))
	assert.Contains(t, snap.Reactivity, "pulseStrength")
}

func TestStereoBalancePropagates(t *testing.T) {
	e := newTestEngine(t, Config{})

	f := loudBassFrame(0)
	f.FrequencyLeft = make([]byte, 1024)
	f.FrequencyRight = make([]byte, 1024)
	for i := 0; i <= 9; i++ {
		f.FrequencyLeft[i] = 40
		f.FrequencyRight[i] = 200
	}

	snap := e.Tick(f)
	assert.Positive(t, snap.BassBalance)
	assert.Zero(t, snap.MidBalance)
}
