// Package fileprocessor handles ROM loading and running operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile handles the complete workflow of loading and running a ROM
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, emulatorOptions options.Emulator) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("processing %s: %w", opts.Input, err)
	}

	rom, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	machine := config.CreateMachine(emulatorOptions)
	if err := machine.LoadProgram(rom); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	logger.Info("Loaded ROM",
		log.String("file", opts.Input),
		log.String("size", strconv.Itoa(len(rom))),
		log.Hex("hash", xxhash.Sum64(rom)),
	)

	if emulatorOptions.Headless {
		writer, err := createWriter(opts)
		if err != nil {
			return fmt.Errorf("creating writer: %w", err)
		}
		defer func() {
			if closer, ok := writer.(io.Closer); ok && writer != os.Stdout {
				_ = closer.Close()
			}
		}()

		return RunHeadless(logger, machine, rom, emulatorOptions, writer)
	}

	return runTerminal(ctx, logger, machine, rom, emulatorOptions)
}

// RunHeadless executes the configured number of cycles without sleeping and
// writes the final framebuffer to the writer.
func RunHeadless(logger *log.Logger, machine *vm.Machine, rom []byte,
	emulatorOptions options.Emulator, writer io.Writer) error {

	runner := host.New(logger, machine, rom, emulatorOptions, nil, nil, nil)
	if err := runner.RunCycles(emulatorOptions.Cycles); err != nil {
		return fmt.Errorf("running headless: %w", err)
	}

	fb := machine.Framebuffer()
	logger.Info("Run finished",
		log.String("cycles", strconv.FormatUint(runner.Cycles(), 10)),
		log.String("halted", strconv.FormatBool(runner.Halted())),
		log.Hex("frame", fb.Hash()),
	)

	if _, err := io.WriteString(writer, fb.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func runTerminal(ctx context.Context, logger *log.Logger, machine *vm.Machine, rom []byte,
	emulatorOptions options.Emulator) error {

	terminal, err := host.EnterRawMode(os.Stdin)
	if err != nil {
		return fmt.Errorf("setting up terminal: %w", err)
	}
	defer func() {
		if err := terminal.Restore(); err != nil {
			logger.Error("Restoring terminal failed", log.Err(err))
		}
	}()

	runner := host.New(logger, machine, rom, emulatorOptions,
		host.NewTerminalDisplay(os.Stdout),
		host.NewTerminalKeypad(os.Stdin),
		host.NewBellSpeaker(os.Stdout),
	)
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("running ROM: %w", err)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates the frame output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".txt"
}

// OutputFilename returns the frame output file for the input file. Batch runs
// write one file per ROM, otherwise the configured output is used.
func OutputFilename(opts options.Program, inputFile string) string {
	if opts.Batch != "" {
		return GenerateOutputFilename(inputFile)
	}
	return opts.Output
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
