// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/vm"
)

// ParseFlags parses command line flags and returns program and emulator options
func ParseFlags() (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "" && opts.Batch == "") {
		return opts, options.Emulator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Emulator{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Emulator{}, err
	}

	if opts.Input == "" && opts.Batch == "" {
		opts.Input = args[0]
	}

	return opts, createEmulatorOptions(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.ClockHz <= 0 {
		return fmt.Errorf("invalid instruction rate %d, must be positive", opts.ClockHz)
	}
	if opts.TimerHz <= 0 {
		return fmt.Errorf("invalid timer rate %d, must be positive", opts.TimerHz)
	}
	if opts.Debug && opts.Quiet {
		return errors.New("debug and quiet options can not be combined")
	}

	if opts.Trace {
		opts.Debug = true
	}
	if opts.Batch != "" {
		opts.Headless = true
	}
	if opts.Headless && opts.Cycles == 0 {
		opts.Cycles = options.DefaultHeadlessCycles
	}
	return nil
}

// createEmulatorOptions creates emulator options based on program options
func createEmulatorOptions(opts options.Program) options.Emulator {
	emulatorOptions := options.NewEmulator()
	emulatorOptions.ClockHz = opts.ClockHz
	emulatorOptions.TimerHz = opts.TimerHz
	emulatorOptions.Cycles = opts.Cycles
	emulatorOptions.Seed = opts.Seed
	emulatorOptions.Headless = opts.Headless
	emulatorOptions.ResetOnError = opts.ResetOnError
	emulatorOptions.Trace = opts.Trace

	if opts.ShiftVY {
		emulatorOptions.ShiftQuirk = vm.ShiftFromVY
	}
	return emulatorOptions
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output file for the final frame in headless mode, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "run a batch of given path and file mask headless, for example *.ch8")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal display and keypad and print the final frame")
	flags.BoolVar(&opts.ResetOnError, "reset-on-error", false, "reset and reload the ROM after a fatal error instead of stopping")
	flags.BoolVar(&opts.ShiftVY, "shift-vy", false, "shift instructions shift VY into VX like the COSMAC VIP interpreter")
	flags.IntVar(&opts.ClockHz, "hz", options.DefaultClockHz, "instructions executed per second")
	flags.IntVar(&opts.TimerHz, "timer-hz", options.DefaultTimerHz, "delay and sound timer ticks per second")
	flags.Uint64Var(&opts.Cycles, "cycles", 0, "stop after this many instructions, 0 runs until quit (headless default 10000)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 seeds from the clock")
}
