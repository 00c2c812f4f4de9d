// Package engine runs the per-tick analysis pipeline: band extraction,
// volume and stereo reduction, beat detection, tempo tracking, smoothing,
// ripple scheduling, and reactivity mapping, in that order.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/kajovka/beatwave/internal/beats"
	"github.com/kajovka/beatwave/internal/dsp"
	"github.com/kajovka/beatwave/internal/reactivity"
	"github.com/kajovka/beatwave/internal/ripples"
	"github.com/kajovka/beatwave/internal/tempo"
)

// Built-in smoothed channels use these note fractions.
const (
	defaultAttackNote  = tempo.NoteThirtySecond
	defaultReleaseNote = tempo.NoteEighth
)

// Config tunes the engine. Zero values fall back to sensible defaults.
type Config struct {
	// FreqBandCount is the N for the configurable log-spaced band split.
	FreqBandCount int
	// Bindings is the declarative reactivity configuration.
	Bindings []reactivity.Binding
	// Gates holds the boolean companion parameters that enable/disable
	// bindings by naming convention. Nil means everything is enabled.
	Gates reactivity.GateMap

	Logger *slog.Logger
}

// Snapshot is the flat per-tick output record consumed by the rendering
// layer. Scalar fields are in [0,1] (balances in [-1,1]); the ripple
// arrays have constant shape every tick.
type Snapshot struct {
	TimestampMs  float64
	DeltaSeconds float64

	Bass   float64
	Mid    float64
	Treble float64

	SmoothedBass   float64
	SmoothedMid    float64
	SmoothedTreble float64

	ColorBands [dsp.ColorBandCount]float64
	FreqBands  []float64

	RMS  float64
	Peak float64

	BassBalance   float64
	MidBalance    float64
	TrebleBalance float64

	BPM float64

	// Beats holds the events fired this tick, bass/mid/treble order at
	// most one each.
	Beats []beats.Event

	Ripples ripples.Arrays

	Reactivity map[string]float64
}

// Engine owns all mutable analysis state. It is driven by exactly one
// Tick call per render tick; nothing in it is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	extractor  *dsp.BandExtractor
	sampleRate float64
	binCount   int

	meter      *dsp.VolumeMeter
	stereo     *dsp.StereoBalanceCalculator
	detectors  [beats.BandCount]*beats.Detector
	clock      tempo.Clock
	smoother   *tempo.Smoother
	scheduler  *ripples.Scheduler
	mapper     *reactivity.Mapper
	splitRange []dsp.FrequencyRange
	freqLevels []float64

	lastBassBeatMs float64

	channels   map[string]float64
	beatsTick  []beats.Event
	reactivity map[string]float64
}

// New builds an engine from configuration. Binding registration fails
// fast; a configuration error is returned before any tick runs.
func New(cfg Config) (*Engine, error) {
	if cfg.FreqBandCount <= 0 {
		cfg.FreqBandCount = 16
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	smoother := tempo.NewSmoother()
	mapper := reactivity.NewMapper(smoother)
	for _, b := range cfg.Bindings {
		if err := mapper.Register(b); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		meter:     dsp.NewVolumeMeter(beats.BandCount),
		smoother:  smoother,
		scheduler: ripples.NewScheduler(),
		mapper:    mapper,
		channels:  make(map[string]float64),
		beatsTick: make([]beats.Event, 0, beats.BandCount),
	}
	for b := beats.Bass; b < beats.BandCount; b++ {
		e.detectors[b] = beats.NewDetector(b)
	}
	return e, nil
}

// BPM returns the current tempo estimate.
func (e *Engine) BPM() float64 { return e.clock.BPM() }

// SetGate flips one enable flag at runtime.
func (e *Engine) SetGate(name string, enabled bool) {
	if e.cfg.Gates == nil {
		e.cfg.Gates = make(reactivity.GateMap)
	}
	e.cfg.Gates[name] = enabled
}

// Channel implements reactivity.ChannelSource over the values computed so
// far in the current tick.
func (e *Engine) Channel(name string) (float64, bool) {
	v, ok := e.channels[name]
	return v, ok
}

// Tick runs the full pipeline for one frame and returns the snapshot. An
// invalid frame (missing arrays) yields a fully zeroed snapshot and leaves
// all state untouched.
func (e *Engine) Tick(frame *dsp.SpectrumFrame) Snapshot {
	if !frame.Valid() {
		return Snapshot{FreqBands: make([]float64, e.cfg.FreqBandCount)}
	}

	e.ensureGeometry(frame.SampleRate, len(frame.Frequency))

	nowMs := frame.TimestampMs
	dt := frame.DeltaSeconds

	// Smoothing constants derive from the estimate as it stood when the
	// tick began, not from mid-tick beat updates.
	bpmAtTickStart := e.clock.BPM()

	// Band, volume, and stereo reductions are independent of each other.
	bass := e.extractor.Level(frame.Frequency, dsp.BassRange)
	mid := e.extractor.Level(frame.Frequency, dsp.MidRange)
	treble := e.extractor.Level(frame.Frequency, dsp.TrebleRange)

	var colorBands [dsp.ColorBandCount]float64
	e.extractor.ColorBands(frame.Frequency, &colorBands)
	e.freqLevels = e.extractor.SplitLevels(frame.Frequency, e.splitRange, e.freqLevels)

	rms, peak := e.meter.Measure(frame.TimeDomain)

	var balances [beats.BandCount]float64
	if frame.Stereo() {
		for b := beats.Bass; b < beats.BandCount; b++ {
			balances[b] = e.stereo.Balance(frame.FrequencyLeft, frame.FrequencyRight, b.Range())
		}
	}

	// Beat detection consumes the bands and their decaying peaks.
	levels := [beats.BandCount]float64{bass, mid, treble}
	e.beatsTick = e.beatsTick[:0]
	for b := beats.Bass; b < beats.BandCount; b++ {
		decaying := e.meter.UpdatePeak(int(b), levels[b])
		event, fired := e.detectors[b].Step(nowMs, levels[b], decaying, balances[b])
		if !fired {
			continue
		}
		e.beatsTick = append(e.beatsTick, event)
		if event.Band == beats.Bass {
			e.feedTempo(event.TimestampMs)
		}
		if accepted := e.scheduler.Spawn(event); !accepted {
			e.logger.Debug("ripple rejected",
				slog.String("band", event.Band.String()),
				slog.Float64("intensity", event.Intensity))
		}
	}

	// Smoothed channels advance with the tick-start tempo.
	smoothedBass := e.smoother.Smooth("bass", bass, defaultAttackNote, defaultReleaseNote, bpmAtTickStart, dt)
	smoothedMid := e.smoother.Smooth("mid", mid, defaultAttackNote, defaultReleaseNote, bpmAtTickStart, dt)
	smoothedTreble := e.smoother.Smooth("treble", treble, defaultAttackNote, defaultReleaseNote, bpmAtTickStart, dt)

	e.publishChannels(bass, mid, treble, smoothedBass, smoothedMid, smoothedTreble, rms, peak)
	e.reactivity = e.mapper.Update(e, e.cfg.Gates, bpmAtTickStart, dt)

	snapshot := Snapshot{
		TimestampMs:    nowMs,
		DeltaSeconds:   dt,
		Bass:           bass,
		Mid:            mid,
		Treble:         treble,
		SmoothedBass:   smoothedBass,
		SmoothedMid:    smoothedMid,
		SmoothedTreble: smoothedTreble,
		ColorBands:     colorBands,
		FreqBands:      e.freqLevels,
		RMS:            rms,
		Peak:           peak,
		BassBalance:    balances[beats.Bass],
		MidBalance:     balances[beats.Mid],
		TrebleBalance:  balances[beats.Treble],
		BPM:            e.clock.BPM(),
		Beats:          e.beatsTick,
		Ripples:        *e.scheduler.Snapshot(nowMs),
		Reactivity:     e.reactivity,
	}
	return snapshot
}

// feedTempo folds the bass inter-beat interval into the clock. The clock
// itself rejects implausible intervals.
func (e *Engine) feedTempo(nowMs float64) {
	if e.lastBassBeatMs > 0 {
		e.clock.Accept((nowMs - e.lastBassBeatMs) / 1000.0)
	}
	e.lastBassBeatMs = nowMs
}

func (e *Engine) ensureGeometry(sampleRate float64, binCount int) {
	if e.extractor != nil && sampleRate == e.sampleRate && binCount == e.binCount {
		return
	}
	e.sampleRate = sampleRate
	e.binCount = binCount
	e.extractor = dsp.NewBandExtractor(sampleRate, binCount)
	e.stereo = dsp.NewStereoBalanceCalculator(e.extractor)
	e.splitRange = e.extractor.SplitBands(e.cfg.FreqBandCount)
}

func (e *Engine) publishChannels(bass, mid, treble, sBass, sMid, sTreble, rms, peak float64) {
	e.channels["bass"] = bass
	e.channels["mid"] = mid
	e.channels["treble"] = treble
	e.channels["bass.smoothed"] = sBass
	e.channels["mid.smoothed"] = sMid
	e.channels["treble.smoothed"] = sTreble
	e.channels["rms"] = rms
	e.channels["peak"] = peak
	for i, v := range e.freqLevels {
		e.channels[fmt.Sprintf("freq%d", i)] = v
	}
}
