package vm

// ShiftQuirk selects the behavior of the 8XY6 and 8XYE shift instructions,
// which differs between historical CHIP-8 interpreters.
type ShiftQuirk int

const (
	// ShiftInPlace shifts VX and ignores VY.
	ShiftInPlace ShiftQuirk = iota
	// ShiftFromVY stores VY shifted into VX, as the COSMAC VIP interpreter did.
	ShiftFromVY
)

func (q ShiftQuirk) String() string {
	switch q {
	case ShiftInPlace:
		return "in-place"
	case ShiftFromVY:
		return "from-vy"
	default:
		return "unknown"
	}
}

// Option configures a Machine.
type Option func(*Machine)

// WithRandomSource sets the source of random bytes for the CXNN instruction.
func WithRandomSource(source RandomSource) Option {
	return func(m *Machine) {
		m.random = source
	}
}

// WithShiftQuirk sets the shift instruction behavior.
func WithShiftQuirk(quirk ShiftQuirk) Option {
	return func(m *Machine) {
		m.shift = quirk
	}
}
