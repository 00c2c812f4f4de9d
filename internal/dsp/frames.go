package dsp

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"
)

// FrameBuilder converts captured float32 sample frames into byte-valued
// SpectrumFrames. It reuses scratch buffers to keep allocations predictable
// for real-time processing.
type FrameBuilder struct {
	sampleRate float64
	frameSize  int
	channels   int

	window   []float64
	mono     []float64
	left     []float64
	right    []float64
	scratch  []float64
	lastTick time.Time

	frequency      []byte
	timeDomain     []byte
	frequencyLeft  []byte
	frequencyRight []byte
}

// NewFrameBuilder constructs a builder for a given sample rate, frame size
// and captured channel count. Frames with two or more channels produce
// per-channel spectra for stereo balance.
func NewFrameBuilder(sampleRate float64, frameSize, channels int) *FrameBuilder {
	if frameSize <= 0 {
		panic("dsp: frameSize must be > 0")
	}
	if sampleRate <= 0 {
		panic("dsp: sampleRate must be > 0")
	}
	if channels <= 0 {
		channels = 1
	}

	binCount := frameSize / 2
	b := &FrameBuilder{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		channels:   channels,
		window:     HannWindow(frameSize),
		mono:       make([]float64, frameSize),
		scratch:    make([]float64, frameSize),
		frequency:  make([]byte, binCount),
		timeDomain: make([]byte, frameSize),
	}
	if channels >= 2 {
		b.left = make([]float64, frameSize)
		b.right = make([]float64, frameSize)
		b.frequencyLeft = make([]byte, binCount)
		b.frequencyRight = make([]byte, binCount)
	}
	return b
}

// Build analyzes one interleaved capture buffer and returns the resulting
// SpectrumFrame. The returned frame's slices alias the builder's scratch
// buffers and are only valid until the next Build call.
func (b *FrameBuilder) Build(samples []float32, now time.Time) SpectrumFrame {
	b.deinterleave(samples)

	for i, v := range b.mono {
		b.timeDomain[i] = toByteSample(v)
	}

	b.spectrumBytes(b.mono, b.frequency)
	if b.channels >= 2 {
		b.spectrumBytes(b.left, b.frequencyLeft)
		b.spectrumBytes(b.right, b.frequencyRight)
	}

	delta := 0.0
	if !b.lastTick.IsZero() {
		delta = now.Sub(b.lastTick).Seconds()
	}
	b.lastTick = now

	frame := SpectrumFrame{
		Frequency:    b.frequency,
		TimeDomain:   b.timeDomain,
		SampleRate:   b.sampleRate,
		TimestampMs:  float64(now.UnixNano()) / float64(time.Millisecond),
		DeltaSeconds: delta,
	}
	if b.channels >= 2 {
		frame.FrequencyLeft = b.frequencyLeft
		frame.FrequencyRight = b.frequencyRight
	}
	return frame
}

func (b *FrameBuilder) deinterleave(samples []float32) {
	frameLen := len(samples) / b.channels
	idx := 0
	for i := 0; i < b.frameSize; i++ {
		if i >= frameLen {
			b.mono[i] = 0
			if b.channels >= 2 {
				b.left[i], b.right[i] = 0, 0
			}
			continue
		}
		sum := 0.0
		for c := 0; c < b.channels; c++ {
			v := float64(samples[idx])
			idx++
			sum += v
			if b.channels >= 2 {
				switch c {
				case 0:
					b.left[i] = v
				case 1:
					b.right[i] = v
				}
			}
		}
		b.mono[i] = sum / float64(b.channels)
	}
}

// spectrumBytes windows the samples, runs a real FFT, and scales the bin
// magnitudes into dst as 0..255 values.
func (b *FrameBuilder) spectrumBytes(samples []float64, dst []byte) {
	copy(b.scratch, samples)
	ApplyWindowInPlace(b.scratch, b.window)

	spectrum := fft.FFTReal(b.scratch)
	scale := 2.0 / float64(len(samples))
	for i := range dst {
		mag := cmplx.Abs(spectrum[i]) * scale
		dst[i] = toByteMagnitude(mag)
	}
}

func toByteSample(v float64) byte {
	s := v*byteHalfScale + byteHalfScale
	if s < 0 {
		return 0
	}
	if s > ByteFullScale {
		return ByteFullScale
	}
	return byte(math.Round(s))
}

func toByteMagnitude(mag float64) byte {
	v := mag * ByteFullScale
	if v < 0 {
		return 0
	}
	if v > ByteFullScale {
		return ByteFullScale
	}
	return byte(math.Round(v))
}

// HannWindow returns a precomputed Hann window for the requested size.
func HannWindow(n int) []float64 {
	if n <= 0 {
		return nil
	}
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := 0; i < n; i++ {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return window
}

// ApplyWindowInPlace multiplies samples by a window function in-place.
func ApplyWindowInPlace(samples []float64, window []float64) {
	switch {
	case len(samples) == 0:
		return
	case len(samples) != len(window):
		panic("dsp: window length mismatch")
	}
	for i := range samples {
		samples[i] *= window[i]
	}
}
