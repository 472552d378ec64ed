// Package options contains the program options.
package options

import (
	"github.com/retroenv/retrochip8/internal/vm"
)

// Default emulation rates.
const (
	DefaultClockHz        = 700
	DefaultTimerHz        = 60
	DefaultHeadlessCycles = 10000
)

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output file for the final frame in headless mode (default: stdout)"`
	Batch  string `flag:"batch" usage:"batch run files matching pattern headless (e.g. *.ch8)"`
}

// Flags contains behavior options.
type Flags struct {
	Debug        bool `flag:"debug" usage:"enable debug logging"`
	Quiet        bool `flag:"q" usage:"quiet mode"`
	Trace        bool `flag:"trace" usage:"log every executed instruction, implies -debug"`
	Headless     bool `flag:"headless" usage:"run without terminal display and keypad, print the final frame"`
	ResetOnError bool `flag:"reset-on-error" usage:"reset and reload the ROM after a fatal error instead of stopping"`
	ShiftVY      bool `flag:"shift-vy" usage:"shift instructions shift VY into VX (COSMAC VIP behavior)"`
}

// TimingFlags contains emulation rate options.
type TimingFlags struct {
	ClockHz int    `flag:"hz" usage:"instructions executed per second" default:"700"`
	TimerHz int    `flag:"timer-hz" usage:"delay and sound timer rate" default:"60"`
	Cycles  uint64 `flag:"cycles" usage:"stop after this many instructions, 0 runs until quit"`
	Seed    uint64 `flag:"seed" usage:"seed of the random number generator, 0 seeds from the clock"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	TimingFlags
}

// Emulator defines options to control the machine and the host runner.
type Emulator struct {
	ClockHz int    // instructions per second
	TimerHz int    // timer ticks per second
	Cycles  uint64 // instruction limit, 0 for unlimited
	Seed    uint64 // random seed, 0 for a clock based seed

	ShiftQuirk   vm.ShiftQuirk
	Headless     bool
	ResetOnError bool
	Trace        bool
}

// NewEmulator returns a new options instance with default options.
func NewEmulator() Emulator {
	return Emulator{
		ClockHz:    DefaultClockHz,
		TimerHz:    DefaultTimerHz,
		ShiftQuirk: vm.ShiftInPlace,
	}
}

// StepsPerTick returns how many instructions are executed between two timer ticks.
func (e Emulator) StepsPerTick() int {
	if e.TimerHz <= 0 || e.ClockHz <= e.TimerHz {
		return 1
	}
	return e.ClockHz / e.TimerHz
}
