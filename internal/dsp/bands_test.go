package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHzToBinMatchesHandComputation(t *testing.T) {
	// 44.1kHz, 1024 bins: binSize = 22050/1024 ≈ 21.533Hz.
	e := NewBandExtractor(44100, 1024)

	assert.InDelta(t, 21.533, e.BinSize(), 0.001)
	assert.Equal(t, 0, e.HzToBin(20))
	assert.Equal(t, 9, e.HzToBin(200))
	assert.Equal(t, 27, e.HzToBin(600))
	assert.Equal(t, 92, e.HzToBin(2000))
}

func TestLevelAveragesAndNormalizes(t *testing.T) {
	e := NewBandExtractor(44100, 1024)
	bins := make([]byte, 1024)
	for i := 0; i <= 9; i++ {
		bins[i] = 255
	}

	// Bass covers bins 0..9 exactly, all full scale.
	assert.InDelta(t, 1.0, e.Level(bins, BassRange), 1e-9)
	// Mid bins are silent.
	assert.Zero(t, e.Level(bins, MidRange))
}

func TestLevelDegenerateRangeIsZero(t *testing.T) {
	e := NewBandExtractor(44100, 8)
	bins := []byte{255, 255, 255, 255, 255, 255, 255, 255}

	// Inverted range resolves to zero bins.
	assert.Zero(t, e.Level(bins, FrequencyRange{Low: 5000, High: 20}))
}

func TestLevelStaysInUnitRange(t *testing.T) {
	e := NewBandExtractor(48000, 512)
	bins := make([]byte, 512)
	for i := range bins {
		bins[i] = byte(i % 256)
	}

	for _, r := range []FrequencyRange{BassRange, MidRange, TrebleRange} {
		v := e.Level(bins, r)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestSplitBandsCoverSpectrumWithoutGaps(t *testing.T) {
	e := NewBandExtractor(44100, 1024)

	for _, n := range []int{2, 8, 16, 32} {
		ranges := e.SplitBands(n)
		require.Len(t, ranges, n)

		assert.InDelta(t, 20.0, ranges[0].Low, 1e-9)
		assert.InDelta(t, 22050.0, ranges[n-1].High, 1e-9)
		for i := 1; i < n; i++ {
			assert.InDelta(t, ranges[i-1].High, ranges[i].Low, 1e-9, "gap between band %d and %d", i-1, i)
		}
	}
}

func TestSplitBandsFinalBandReachesNyquist(t *testing.T) {
	e := NewBandExtractor(48000, 512)
	ranges := e.SplitBands(10)
	assert.InDelta(t, 24000.0, ranges[9].High, 1e-9)
}

func TestSplitBandsCountGrowsWithN(t *testing.T) {
	e := NewBandExtractor(44100, 1024)
	assert.Greater(t, len(e.SplitBands(12)), len(e.SplitBands(6)))
	assert.Nil(t, e.SplitBands(0))
}

func TestSplitLevelsZeroInput(t *testing.T) {
	e := NewBandExtractor(44100, 1024)
	ranges := e.SplitBands(8)
	levels := e.SplitLevels(make([]byte, 1024), ranges, nil)

	for _, v := range levels {
		assert.Zero(t, v)
	}
}

func TestColorBandsLowestPicksUpBass(t *testing.T) {
	e := NewBandExtractor(44100, 1024)
	bins := make([]byte, 1024)
	bins[1] = 255 // ~21.5Hz

	var out [ColorBandCount]float64
	e.ColorBands(bins, &out)

	assert.Greater(t, out[0], 0.0)
	for i := 2; i < ColorBandCount; i++ {
		assert.Zero(t, out[i], "band %d should be silent", i)
	}
}
