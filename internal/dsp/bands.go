package dsp

import (
	"math"

	"github.com/kajovka/beatwave/internal/utils"
)

// FrequencyRange is an inclusive frequency span in Hz reduced to one scalar.
type FrequencyRange struct {
	Low  float64
	High float64
}

// Fixed analysis ranges for the three named bands.
var (
	BassRange   = FrequencyRange{Low: 20, High: 200}
	MidRange    = FrequencyRange{Low: 600, High: 2000}
	TrebleRange = FrequencyRange{Low: 3000, High: 6000}
)

// ColorBandCount is the number of fixed log-spaced color bands.
const ColorBandCount = 10

const (
	colorBandLowHz  = 20.0
	colorBandHighHz = 20000.0
)

// BandExtractor reduces a byte-valued magnitude spectrum into normalized
// [0,1] band levels using Hz→bin mapping. It is stateless apart from the
// sample-rate/bin-count geometry captured at construction.
type BandExtractor struct {
	sampleRate float64
	binCount   int
	binSize    float64
}

// NewBandExtractor configures an extractor for a spectrum of binCount bins
// covering DC..Nyquist at the given sample rate.
func NewBandExtractor(sampleRate float64, binCount int) *BandExtractor {
	if sampleRate <= 0 {
		panic("dsp: sampleRate must be > 0")
	}
	if binCount <= 0 {
		panic("dsp: binCount must be > 0")
	}
	return &BandExtractor{
		sampleRate: sampleRate,
		binCount:   binCount,
		binSize:    (sampleRate / 2) / float64(binCount),
	}
}

// BinSize returns the width of one FFT bin in Hz.
func (e *BandExtractor) BinSize() float64 { return e.binSize }

// HzToBin maps a frequency to its containing bin index.
func (e *BandExtractor) HzToBin(hz float64) int {
	return int(math.Floor(hz / e.binSize))
}

// Level returns the mean magnitude of the bins covering r, normalized to
// [0,1]. A degenerate range (no bins) yields 0.
func (e *BandExtractor) Level(bins []byte, r FrequencyRange) float64 {
	start := e.HzToBin(r.Low)
	end := e.HzToBin(r.High)
	return e.levelBins(bins, start, end)
}

func (e *BandExtractor) levelBins(bins []byte, start, end int) float64 {
	if start < 0 {
		start = 0
	}
	if end >= len(bins) {
		end = len(bins) - 1
	}
	count := end - start + 1
	if count <= 0 {
		return 0
	}
	var sum float64
	for i := start; i <= end; i++ {
		sum += float64(bins[i])
	}
	return utils.Clamp(sum/float64(count)/ByteFullScale, 0.0, 1.0)
}

// ColorBands fills dst with the ten fixed log-spaced band levels spanning
// 20Hz..20kHz, lowest band first. dst must have length ColorBandCount.
func (e *BandExtractor) ColorBands(bins []byte, dst *[ColorBandCount]float64) {
	ratio := colorBandHighHz / colorBandLowHz
	for i := 0; i < ColorBandCount; i++ {
		low := colorBandLowHz * math.Pow(ratio, float64(i)/ColorBandCount)
		high := colorBandLowHz * math.Pow(ratio, float64(i+1)/ColorBandCount)
		dst[i] = e.Level(bins, FrequencyRange{Low: low, High: high})
	}
}

// SplitBands distributes n band ranges logarithmically from 20Hz to the
// Nyquist frequency. The final band always ends exactly at Nyquist, and a
// band whose end bin falls short of its nominal end frequency is widened
// by one bin so the split covers the spectrum without gaps.
func (e *BandExtractor) SplitBands(n int) []FrequencyRange {
	if n <= 0 {
		return nil
	}
	nyquist := e.sampleRate / 2
	if n == 1 {
		return []FrequencyRange{{Low: 20, High: nyquist}}
	}
	ratio := nyquist / 20.0
	ranges := make([]FrequencyRange, n)
	for i := 0; i < n; i++ {
		low := 20.0 * math.Pow(ratio, float64(i)/float64(n-1))
		high := 20.0 * math.Pow(ratio, float64(i+1)/float64(n-1))
		if i == n-1 {
			high = nyquist
		}
		ranges[i] = FrequencyRange{Low: low, High: high}
	}
	return ranges
}

// SplitLevels computes the level of every range from SplitBands(n),
// applying the one-bin widening rule where bin resolution undershoots a
// range's nominal end frequency.
func (e *BandExtractor) SplitLevels(bins []byte, ranges []FrequencyRange, dst []float64) []float64 {
	if cap(dst) < len(ranges) {
		dst = make([]float64, len(ranges))
	} else {
		dst = dst[:len(ranges)]
	}
	for i, r := range ranges {
		start := e.HzToBin(r.Low)
		end := e.HzToBin(r.High)
		if float64(end+1)*e.binSize < r.High {
			end++
		}
		dst[i] = e.levelBins(bins, start, end)
	}
	return dst
}
