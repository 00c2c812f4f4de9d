package reactivity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/kajovka/beatwave/internal/tempo"
	"github.com/kajovka/beatwave/internal/utils"
)

// ChannelSource resolves named audio channels for the current tick.
type ChannelSource interface {
	// Channel returns the current value of a named channel and whether
	// the name is known.
	Channel(name string) (float64, bool)
}

// GateSource answers whether a named boolean parameter is enabled. Missing
// gates default to enabled.
type GateSource interface {
	Gate(name string) (enabled, present bool)
}

// GateMap is a GateSource backed by a plain map. Reads on a nil map are
// valid and report the gate as absent.
type GateMap map[string]bool

// Gate implements GateSource.
func (g GateMap) Gate(name string) (enabled, present bool) {
	enabled, present = g[name]
	return enabled, present
}

// Mapper evaluates registered bindings against the tick's channel values.
// Smoothed per-binding state is keyed by binding name and persists across
// ticks; output values are written into a map reused across ticks.
type Mapper struct {
	bindings []Binding
	smoother *tempo.Smoother

	// speed accumulators, by binding name. Monotone non-decreasing.
	accumulators map[string]float64

	values map[string]float64
}

// NewMapper returns an empty mapper backed by the given smoother.
func NewMapper(smoother *tempo.Smoother) *Mapper {
	return &Mapper{
		smoother:     smoother,
		accumulators: make(map[string]float64),
		values:       make(map[string]float64),
	}
}

// Register validates and adds a binding. Duplicate names are rejected so
// one binding keeps exclusive ownership of its smoothed channel.
func (m *Mapper) Register(b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	for _, existing := range m.bindings {
		if existing.Name == b.Name {
			return eris.Errorf("reactivity: binding %q already registered", b.Name)
		}
	}
	m.bindings = append(m.bindings, b)
	return nil
}

// Bindings returns the registered bindings in registration order.
func (m *Mapper) Bindings() []Binding { return m.bindings }

// Update advances every enabled binding and returns the name→value map.
// The map is reused across ticks; callers must not retain it.
func (m *Mapper) Update(channels ChannelSource, gates GateSource, bpm, deltaSeconds float64) map[string]float64 {
	for _, b := range m.bindings {
		if gates != nil {
			if enabled, present := gates.Gate(GateName(b.Name)); present && !enabled {
				// A disabled binding is skipped entirely; its smoothed
				// state does not advance this tick.
				continue
			}
		}

		source, ok := channels.Channel(b.Source)
		if !ok {
			source = 0
		}
		source = utils.Clamp(source, 0.0, 1.0)

		smoothed := m.smoother.Smooth("reactivity."+b.Name, source, b.Attack, b.Release, bpm, deltaSeconds)
		eased := b.Curve.Ease(smoothed)

		m.values[b.Name] = m.output(b, eased, deltaSeconds)
	}
	return m.values
}

func (m *Mapper) output(b Binding, eased, deltaSeconds float64) float64 {
	switch b.Mode {
	case ModeAdditive:
		return utils.Lerp(b.Start, b.Target, eased)
	case ModeAdditiveLegacy:
		span := eased * (b.Max - b.Min)
		if b.Invert {
			return b.Base - span
		}
		return b.Base + span
	case ModeInterpolation:
		return eased
	case ModeSpeed:
		rate := utils.Lerp(b.Start, b.Target, eased)
		acc := m.accumulators[b.Name] + rate*deltaSeconds
		if acc < m.accumulators[b.Name] {
			acc = m.accumulators[b.Name]
		}
		m.accumulators[b.Name] = acc
		return acc
	default:
		return 0
	}
}

// GateName derives the companion enable-flag name for a binding by naming
// convention: a "...Strength" suffix pairs with an "enable..." flag, e.g.
// "rippleStrength" → "enableRipple". Names without the suffix map to
// "enable" plus the capitalized name.
func GateName(binding string) string {
	stem := strings.TrimSuffix(binding, "Strength")
	if stem == "" {
		stem = binding
	}
	r, size := utf8.DecodeRuneInString(stem)
	if r == utf8.RuneError {
		return "enable" + stem
	}
	return "enable" + string(unicode.ToUpper(r)) + stem[size:]
}
