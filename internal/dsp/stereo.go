package dsp

import "math"

const (
	// stereoSilenceFloor is the combined energy below which balance is
	// treated as centered rather than amplified noise.
	stereoSilenceFloor = 0.01
	// stereoEmphasisExponent shapes the balance curve; values below 1
	// emphasize small imbalances.
	stereoEmphasisExponent = 0.7
)

// StereoBalance computes a signed balance in [-1,1] from per-channel band
// levels: negative leans left, positive leans right. Near-silent input
// returns 0.
func StereoBalance(left, right float64) float64 {
	return StereoBalanceExp(left, right, stereoEmphasisExponent)
}

// StereoBalanceExp is StereoBalance with an explicit emphasis exponent.
func StereoBalanceExp(left, right, exponent float64) float64 {
	total := left + right
	if total < stereoSilenceFloor {
		return 0
	}
	raw := (right - left) / total
	shaped := math.Pow(math.Abs(raw), exponent)
	if raw < 0 {
		return -shaped
	}
	return shaped
}

// StereoBalanceCalculator derives per-band balances from left/right
// spectra using a shared BandExtractor geometry.
type StereoBalanceCalculator struct {
	extractor *BandExtractor
	exponent  float64
}

// NewStereoBalanceCalculator builds a calculator over the extractor's
// bin geometry with the default emphasis exponent.
func NewStereoBalanceCalculator(extractor *BandExtractor) *StereoBalanceCalculator {
	return &StereoBalanceCalculator{extractor: extractor, exponent: stereoEmphasisExponent}
}

// Balance computes the signed balance for one frequency range. Missing
// channel data yields 0 (centered).
func (c *StereoBalanceCalculator) Balance(left, right []byte, r FrequencyRange) float64 {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	l := c.extractor.Level(left, r)
	rv := c.extractor.Level(right, r)
	return StereoBalanceExp(l, rv, c.exponent)
}
