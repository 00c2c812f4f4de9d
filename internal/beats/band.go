// Package beats detects per-band onsets from normalized band levels and
// their decaying peaks, emitting discrete beat events.
package beats

import "github.com/kajovka/beatwave/internal/dsp"

// Band identifies one of the three fixed analysis bands.
type Band int

const (
	Bass Band = iota
	Mid
	Treble

	// BandCount is the number of detector instances the engine runs.
	BandCount = 3
)

// String returns the band's lowercase name.
func (b Band) String() string {
	switch b {
	case Bass:
		return "bass"
	case Mid:
		return "mid"
	case Treble:
		return "treble"
	default:
		return "unknown"
	}
}

// Range returns the band's fixed frequency span.
func (b Band) Range() dsp.FrequencyRange {
	switch b {
	case Bass:
		return dsp.BassRange
	case Mid:
		return dsp.MidRange
	case Treble:
		return dsp.TrebleRange
	default:
		return dsp.FrequencyRange{}
	}
}

// Policy is the per-band detection tuning. The only per-band knob today is
// the minimum level a candidate must clear regardless of the adaptive
// threshold.
type Policy struct {
	MinThreshold float64
}

// policies is the table-driven per-band configuration, indexed by Band.
var policies = [BandCount]Policy{
	Bass:   {MinThreshold: 0.30},
	Mid:    {MinThreshold: 0.25},
	Treble: {MinThreshold: 0.22},
}

// PolicyFor returns the detection policy for a band.
func PolicyFor(b Band) Policy {
	if b < 0 || b >= BandCount {
		return Policy{}
	}
	return policies[b]
}
