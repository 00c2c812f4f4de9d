// Package dsp holds the per-tick signal primitives: the SpectrumFrame
// input record and the reductions from raw byte-valued sample arrays to
// normalized band, volume, and stereo scalars.
package dsp

// ByteFullScale is the maximum representable magnitude of a frame sample.
const ByteFullScale = 255.0

// SpectrumFrame is the per-tick input from the host capture layer. It is
// created once per render tick, consumed synchronously, and discarded; the
// engine never retains a reference past the tick.
type SpectrumFrame struct {
	// Frequency holds spectral magnitudes, one byte per FFT bin (0..255).
	Frequency []byte
	// TimeDomain holds waveform samples centered on 128 (0..255).
	TimeDomain []byte
	// FrequencyLeft/FrequencyRight are optional per-channel spectra used
	// for stereo balance. Either both are set or both are nil.
	FrequencyLeft  []byte
	FrequencyRight []byte

	SampleRate float64
	// TimestampMs is the host wall clock for this tick, in milliseconds.
	TimestampMs float64
	// DeltaSeconds is the time elapsed since the previous tick.
	DeltaSeconds float64
}

// Valid reports whether the frame carries enough data to analyze. An
// invalid frame short-circuits the whole tick to a zeroed snapshot.
func (f *SpectrumFrame) Valid() bool {
	return f != nil && len(f.Frequency) > 0 && len(f.TimeDomain) > 0 && f.SampleRate > 0
}

// Stereo reports whether per-channel spectra are present.
func (f *SpectrumFrame) Stereo() bool {
	return len(f.FrequencyLeft) > 0 && len(f.FrequencyRight) > 0
}
