package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStereoBalanceSilenceGuard(t *testing.T) {
	assert.Zero(t, StereoBalance(0.004, 0.005))
	assert.Zero(t, StereoBalance(0, 0))
}

func TestStereoBalanceSignFollowsLouderChannel(t *testing.T) {
	assert.Positive(t, StereoBalance(0.2, 0.6))
	assert.Negative(t, StereoBalance(0.6, 0.2))
	assert.Zero(t, StereoBalance(0.5, 0.5))
}

func TestStereoBalanceEmphasizesSmallImbalances(t *testing.T) {
	// |raw|^0.7 > |raw| for |raw| < 1.
	left, right := 0.45, 0.55
	raw := (right - left) / (right + left)
	got := StereoBalance(left, right)
	assert.Greater(t, got, raw)
	assert.InDelta(t, math.Pow(raw, 0.7), got, 1e-9)
}

func TestStereoBalanceStaysInRange(t *testing.T) {
	for _, pair := range [][2]float64{{0, 1}, {1, 0}, {0.01, 0.99}, {0.3, 0.7}} {
		v := StereoBalance(pair[0], pair[1])
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestCalculatorMissingChannelIsCentered(t *testing.T) {
	e := NewBandExtractor(44100, 1024)
	c := NewStereoBalanceCalculator(e)
	assert.Zero(t, c.Balance(nil, make([]byte, 1024), BassRange))
}

func TestCalculatorLeansTowardLoudChannel(t *testing.T) {
	e := NewBandExtractor(44100, 1024)
	c := NewStereoBalanceCalculator(e)

	left := make([]byte, 1024)
	right := make([]byte, 1024)
	for i := 0; i <= 9; i++ { // bass bins
		left[i] = 40
		right[i] = 200
	}

	assert.Positive(t, c.Balance(left, right, BassRange))
	assert.Negative(t, c.Balance(right, left, BassRange))
}
