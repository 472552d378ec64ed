// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateMachine creates a machine configured by the emulator options.
func CreateMachine(opts options.Emulator) *vm.Machine {
	source := vm.NewRandomSource()
	if opts.Seed != 0 {
		source = vm.NewSeededSource(opts.Seed)
	}

	return vm.New(
		vm.WithRandomSource(source),
		vm.WithShiftQuirk(opts.ShiftQuirk),
	)
}
