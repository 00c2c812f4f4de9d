package main

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"

	"github.com/kajovka/beatwave/internal/reactivity"
	"github.com/kajovka/beatwave/internal/tempo"
	"github.com/kajovka/beatwave/internal/ui"
)

func selectDevice(
	devices []*portaudio.DeviceInfo,
	defaultDeviceIndex int,
	opts runtimeOptions,
) (*portaudio.DeviceInfo, error) {
	if len(devices) == 0 {
		return nil, eris.New("no input devices available")
	}

	if opts.deviceIndex >= 0 {
		if opts.deviceIndex >= len(devices) {
			return nil, eris.Errorf("invalid device index %d", opts.deviceIndex)
		}
		return devices[opts.deviceIndex], nil
	}

	initial := effectiveInitialDeviceIndex(opts.deviceIndex, defaultDeviceIndex, len(devices))

	index, err := ui.PickDevice(buildDeviceOptions(devices), initial)
	if err != nil {
		if eris.Is(err, ui.ErrNoInteractiveTTY) {
			return devices[initial], nil
		}
		return nil, err
	}

	return devices[index], nil
}

func buildDeviceOptions(devices []*portaudio.DeviceInfo) []ui.Option {
	options := make([]ui.Option, len(devices))
	for i, dev := range devices {
		options[i] = ui.Option{
			Label: fmt.Sprintf(
				"[%d] %s · %.0fHz · in:%d · latency:%.1fms",
				i,
				dev.Name,
				dev.DefaultSampleRate,
				dev.MaxInputChannels,
				dev.DefaultLowInputLatency.Seconds()*1000,
			),
		}
	}
	return options
}

func effectiveInitialDeviceIndex(requested, fallback, length int) int {
	if length == 0 {
		return 0
	}
	if requested >= 0 && requested < length {
		return requested
	}
	if fallback >= 0 && fallback < length {
		return fallback
	}
	return 0
}

func buildLoopConfig(device *portaudio.DeviceInfo, opts runtimeOptions) loopConfig {
	return loopConfig{
		Device:     device,
		SampleRate: effectiveSampleRate(opts.sampleRate, device.DefaultSampleRate),
		FrameSize:  effectiveFrameSize(opts.frameSize),
		Channels:   sanitizeChannelCount(opts.channels, int(device.MaxInputChannels)),
		Latency:    opts.latency,
		FreqBands:  effectiveBandCount(opts.freqBands),
		Visualize:  opts.visualize,
	}
}

func sanitizeChannelCount(requested, max int) int {
	if requested <= 0 {
		return 1
	}

	if max > 0 && requested > max {
		return max
	}

	return requested
}

func effectiveSampleRate(requested, deviceDefault float64) float64 {
	if requested > 0 {
		return requested
	}

	if deviceDefault > 0 {
		return deviceDefault
	}

	return 44100
}

func effectiveFrameSize(requested int) int {
	if requested > 0 {
		return requested
	}

	return 1024
}

func effectiveBandCount(requested int) int {
	if requested > 1 {
		return requested
	}

	return 16
}

// defaultBindings covers every mapping mode so the visual layer has
// something to react with out of the box.
func defaultBindings() []reactivity.Binding {
	easeOut := reactivity.Curve{X1: 0.0, Y1: 0.0, X2: 0.58, Y2: 1.0}
	easeInOut := reactivity.Curve{X1: 0.42, Y1: 0.0, X2: 0.58, Y2: 1.0}

	return []reactivity.Binding{
		{
			Name:    "glowStrength",
			Source:  "bass",
			Attack:  tempo.NoteThirtySecond,
			Release: tempo.NoteEighth,
			Curve:   easeOut,
			Mode:    reactivity.ModeAdditive,
			Start:   0.2,
			Target:  1.0,
		},
		{
			Name:    "hueShift",
			Source:  "treble",
			Attack:  tempo.NoteSixteenth,
			Release: tempo.NoteQuarter,
			Curve:   reactivity.LinearCurve,
			Mode:    reactivity.ModeSpeed,
			Start:   0.02,
			Target:  0.35,
		},
		{
			Name:    "zoomPulse",
			Source:  "rms",
			Attack:  tempo.NoteThirtySecond,
			Release: tempo.NoteQuarter,
			Curve:   easeInOut,
			Mode:    reactivity.ModeAdditiveLegacy,
			Min:     0,
			Max:     0.25,
			Base:    1.0,
		},
		{
			Name:    "blendMix",
			Source:  "mid",
			Attack:  tempo.NoteSixteenth,
			Release: tempo.NoteEighth,
			Curve:   easeInOut,
			Mode:    reactivity.ModeInterpolation,
		},
	}
}

func defaultGates() reactivity.GateMap {
	return reactivity.GateMap{
		"enableGlow":      true,
		"enableHueShift":  true,
		"enableZoomPulse": true,
		"enableBlendMix":  true,
	}
}
