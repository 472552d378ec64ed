// Package vm implements the CHIP-8 virtual machine core.
//
// A Machine holds all machine state (memory, registers, call stack, timers,
// key latches and framebuffer) and advances it one instruction per Step call.
// Timing, input, rendering and audio are owned by the host: it calls Step at
// the emulated clock rate, TickTimers at 60 Hz, writes key latches with SetKey
// and reads the framebuffer and sound timer for presentation.
//
// A Machine is not safe for concurrent use, the host must serialize all calls.
package vm

import "fmt"

// CHIP-8 memory layout and machine dimensions.
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 4096
	// ProgramStart is the address that programs are loaded to and executed from.
	ProgramStart = 0x200
	// MaxProgramSize is the largest program that fits between ProgramStart and the end of memory.
	MaxProgramSize = MemorySize - ProgramStart

	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16
	// FlagRegister is the index of VF, the implicit carry/borrow/collision output.
	FlagRegister = 0xF
	// StackSize is the number of return addresses the call stack can hold.
	StackSize = 16
	// KeyCount is the number of keys on the hexadecimal keypad.
	KeyCount = 16

	opcodeSize = 2
)

// Machine is a CHIP-8 virtual machine.
type Machine struct {
	pc     uint16
	i      uint16
	v      [RegisterCount]uint8
	memory [MemorySize]byte

	stack [StackSize]uint16
	sp    uint8 // number of used stack entries

	keys [KeyCount]bool

	delayTimer uint8
	soundTimer uint8

	framebuffer Framebuffer
	redrawn     bool

	random RandomSource
	shift  ShiftQuirk
}

// State is a snapshot copy of the machine registers, stack, timers and key latches.
type State struct {
	PC         uint16
	I          uint16
	V          [RegisterCount]uint8
	Stack      [StackSize]uint16
	SP         uint8
	Keys       [KeyCount]bool
	DelayTimer uint8
	SoundTimer uint8
}

// New returns a new machine with the font loaded and the program counter
// set to ProgramStart. All other state is zeroed.
func New(opts ...Option) *Machine {
	m := &Machine{
		shift: ShiftInPlace,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.random == nil {
		m.random = NewRandomSource()
	}

	m.Reset()
	return m
}

// Reset reinitializes every field to its startup value in place.
// Options passed to New stay in effect.
func (m *Machine) Reset() {
	m.pc = ProgramStart
	m.i = 0
	m.v = [RegisterCount]uint8{}
	m.memory = [MemorySize]byte{}
	copy(m.memory[:], fontSet[:])

	m.stack = [StackSize]uint16{}
	m.sp = 0
	m.keys = [KeyCount]bool{}

	m.delayTimer = 0
	m.soundTimer = 0

	m.framebuffer.clear()
	m.redrawn = true
}

// LoadProgram copies the program to memory starting at ProgramStart.
// Memory outside the program area is not touched.
func (m *Machine) LoadProgram(data []byte) error {
	if len(data) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(data), MaxProgramSize)
	}
	copy(m.memory[ProgramStart:], data)
	return nil
}

// SetKey latches the pressed state of the keypad key with the given index 0x0-0xF.
func (m *Machine) SetKey(index uint8, pressed bool) error {
	if index >= KeyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, index)
	}
	m.keys[index] = pressed
	return nil
}

// Framebuffer returns a read-only view of the display.
// The returned value reflects all subsequent steps.
func (m *Machine) Framebuffer() *Framebuffer {
	return &m.framebuffer
}

// Redrawn reports whether the framebuffer was cleared or drawn to since the
// last call and resets the indicator.
func (m *Machine) Redrawn() bool {
	redrawn := m.redrawn
	m.redrawn = false
	return redrawn
}

// SoundTimer returns the current sound timer value.
func (m *Machine) SoundTimer() uint8 {
	return m.soundTimer
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.delayTimer
}

// SoundActive returns whether a tone should currently be audible.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// Memory returns the byte at the given address.
func (m *Machine) Memory(address uint16) (byte, error) {
	if int(address) >= MemorySize {
		return 0, fmt.Errorf("%w: address $%04X", ErrMemoryBounds, address)
	}
	return m.memory[address], nil
}

// State returns a snapshot of the machine state.
func (m *Machine) State() State {
	return State{
		PC:         m.pc,
		I:          m.i,
		V:          m.v,
		Stack:      m.stack,
		SP:         m.sp,
		Keys:       m.keys,
		DelayTimer: m.delayTimer,
		SoundTimer: m.soundTimer,
	}
}

func (m *Machine) push(address uint16) error {
	if m.sp >= StackSize {
		return ErrStackOverflow
	}
	m.stack[m.sp] = address
	m.sp++
	return nil
}

func (m *Machine) pop() (uint16, error) {
	if m.sp == 0 {
		return 0, ErrStackUnderflow
	}
	m.sp--
	return m.stack[m.sp], nil
}

// checkRange returns an error if the memory range starting at address with the
// given length is not fully inside memory.
func checkRange(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return fmt.Errorf("%w: $%04X-$%04X", ErrMemoryBounds, address, int(address)+length-1)
	}
	return nil
}
