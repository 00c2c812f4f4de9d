package tempo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTauFromNoteAndBPM(t *testing.T) {
	// 120 BPM: one beat is 0.5s, a bar 2s, a sixteenth of a bar 0.125s.
	assert.InDelta(t, 0.125, Tau(NoteSixteenth, 120), 1e-9)
	assert.InDelta(t, 2.0, Tau(NoteWhole, 120), 1e-9)
}

func TestTauFallbackWithoutTempo(t *testing.T) {
	got := Tau(NoteQuarter, 0)
	assert.InDelta(t, 0.15, got, 1e-9)
	assert.Positive(t, got)
}

func TestSmoothApproachesTargetMonotonically(t *testing.T) {
	s := NewSmoother()
	prev := 0.0
	for i := 0; i < 200; i++ {
		v := s.Smooth("ch", 1.0, NoteSixteenth, NoteQuarter, 120, 1.0/60)
		assert.GreaterOrEqual(t, v, prev, "tick %d", i)
		assert.LessOrEqual(t, v, 1.0, "tick %d", i)
		prev = v
	}
	assert.InDelta(t, 1.0, prev, 0.01)
}

func TestSmoothConstantFlipsWithDirection(t *testing.T) {
	attack, release := NoteThirtySecond, NoteWhole

	s := NewSmoother()
	rising := s.Smooth("ch", 1.0, attack, release, 120, 1.0/60)

	s2 := NewSmoother()
	s2.Set("ch", 1.0)
	after := s2.Smooth("ch", 0.0, attack, release, 120, 1.0/60)
	falling := 1.0 - after

	// Fast attack moves further up than the slow release moves down.
	assert.Greater(t, rising, falling)
}

func TestSmoothTauUsesExplicitConstants(t *testing.T) {
	s := NewSmoother()
	v := s.SmoothTau("ch", 1.0, 0.01, 1.0, 0.05)
	assert.Greater(t, v, 0.9) // dt five times the attack tau
}

func TestSmoothZeroDeltaHoldsValue(t *testing.T) {
	s := NewSmoother()
	s.Set("ch", 0.4)
	assert.InDelta(t, 0.4, s.Smooth("ch", 1.0, NoteSixteenth, NoteQuarter, 120, 0), 1e-9)
}
