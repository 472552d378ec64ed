// Package host drives a CHIP-8 machine: it supplies the clock, feeds key
// input into the machine, presents the framebuffer and signals the tone.
package host

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// ErrQuit is returned by a Keypad when the user asked to quit.
var ErrQuit = errors.New("quit requested")

// Display presents the framebuffer.
type Display interface {
	Draw(fb *vm.Framebuffer) error
}

// Keypad supplies the current state of all keypad keys.
type Keypad interface {
	Poll() ([vm.KeyCount]bool, error)
}

// Speaker plays a tone while the sound timer is active.
type Speaker interface {
	SetTone(on bool)
}

// Runner drives a machine. All machine calls are made from the goroutine
// that calls Run or RunCycles.
type Runner struct {
	logger  *log.Logger
	machine *vm.Machine
	rom     []byte
	opts    options.Emulator

	display Display
	keypad  Keypad
	speaker Speaker

	cycles     uint64
	toneOn     bool
	halted     bool
	stopOnHalt bool
	resets     int
	// cycle count at the last reset, a failure without progress since then is fatal
	resetCycles uint64
}

// New returns a runner for the machine that has the ROM loaded. The ROM is
// kept to reload it on reset. Display, keypad and speaker are optional.
func New(logger *log.Logger, machine *vm.Machine, rom []byte, opts options.Emulator,
	display Display, keypad Keypad, speaker Speaker) *Runner {

	if speaker == nil {
		speaker = NopSpeaker{}
	}
	return &Runner{
		logger:  logger,
		machine: machine,
		rom:     rom,
		opts:    opts,
		display: display,
		keypad:  keypad,
		speaker: speaker,
	}
}

// Cycles returns the number of executed instructions.
func (r *Runner) Cycles() uint64 {
	return r.cycles
}

// Halted returns whether the program is parked in a jump to itself.
func (r *Runner) Halted() bool {
	return r.halted
}

// Resets returns how often the machine was reset after a fatal error.
func (r *Runner) Resets() int {
	return r.resets
}

// Run executes the machine in real time until the context is cancelled, the
// cycle limit is reached, the keypad requests to quit or a step fails.
// Each timer tick runs the instructions of one tick interval, then advances
// the timers and draws the framebuffer if it changed.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.opts.TimerHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.setTone(false)
			return fmt.Errorf("running machine: %w", ctx.Err())

		case <-ticker.C:
			done, err := r.frame()
			if errors.Is(err, ErrQuit) {
				r.setTone(false)
				return nil
			}
			if err != nil || done {
				r.setTone(false)
				return err
			}
		}
	}
}

// RunCycles executes the given number of instructions without sleeping,
// advancing the timers after every tick interval worth of instructions.
// It returns early if the program halts.
func (r *Runner) RunCycles(count uint64) error {
	if count == 0 {
		return nil
	}
	r.opts.Cycles = r.cycles + count
	r.stopOnHalt = true
	for {
		done, err := r.frame()
		if err != nil || done {
			return err
		}
	}
}

// frame executes one timer tick interval and returns true if the cycle limit
// was reached or the program halted while running headless.
func (r *Runner) frame() (bool, error) {
	for range r.opts.StepsPerTick() {
		if r.opts.Cycles > 0 && r.cycles >= r.opts.Cycles {
			return true, r.present()
		}
		if err := r.step(); err != nil {
			return false, err
		}
		if r.stopOnHalt && r.halted {
			return true, r.present()
		}
	}

	if r.machine.TickTimers() {
		r.setTone(false)
	}
	return false, r.present()
}

func (r *Runner) step() error {
	if err := r.pollKeys(); err != nil {
		return err
	}

	if r.opts.Trace {
		r.traceInstruction()
	}

	if err := r.machine.Step(); err != nil {
		return r.handleStepError(err)
	}
	r.cycles++

	if r.machine.SoundActive() {
		r.setTone(true)
	}
	r.detectHalt()
	return nil
}

func (r *Runner) pollKeys() error {
	if r.keypad == nil {
		return nil
	}

	keys, err := r.keypad.Poll()
	if err != nil {
		return err
	}
	for key, pressed := range keys {
		if err := r.machine.SetKey(uint8(key), pressed); err != nil {
			return fmt.Errorf("setting key: %w", err)
		}
	}
	return nil
}

func (r *Runner) handleStepError(err error) error {
	var stepErr *vm.StepError
	if !errors.As(err, &stepErr) {
		r.logger.Error("Executing instruction failed", log.Err(err))
	} else if instruction, ok := failedInstruction(stepErr); ok {
		r.logger.Error("Executing instruction failed",
			log.Err(stepErr.Err),
			log.Hex("address", stepErr.Address),
			log.Hex("opcode", stepErr.Opcode),
			log.String("instruction", instruction),
		)
	} else {
		r.logger.Error("Fetching instruction failed",
			log.Err(stepErr.Err),
			log.Hex("address", stepErr.Address),
		)
	}

	if !r.opts.ResetOnError {
		return fmt.Errorf("executing step %d: %w", r.cycles, err)
	}
	if r.resets > 0 && r.cycles == r.resetCycles {
		return fmt.Errorf("executing step %d: no instruction succeeded since the last reset: %w", r.cycles, err)
	}

	r.machine.Reset()
	if err := r.machine.LoadProgram(r.rom); err != nil {
		return fmt.Errorf("reloading program: %w", err)
	}
	r.halted = false
	r.resets++
	r.resetCycles = r.cycles
	r.setTone(false)
	r.logger.Warn("Machine reset after error", log.String("resets", strconv.Itoa(r.resets)))
	return nil
}

// failedInstruction returns the notation of the instruction that failed to
// execute, or false if the failure happened while fetching it.
func failedInstruction(stepErr *vm.StepError) (string, bool) {
	if stepErr.Opcode == 0 && errors.Is(stepErr.Err, vm.ErrMemoryBounds) {
		return "", false
	}
	ins, _ := opcode.Lookup(stepErr.Opcode)
	return ins.String(), true
}

func (r *Runner) traceInstruction() {
	pc := r.machine.PC()
	word, err := r.machine.PeekOpcode()
	if err != nil {
		return
	}
	ins, _ := opcode.Lookup(word)
	state := r.machine.State()
	r.logger.Debug("Step",
		log.Hex("pc", pc),
		log.Hex("opcode", ins.Word()),
		log.String("instruction", ins.String()),
		log.String("flow", controlFlow(ins)),
		log.Hex("i", state.I),
		log.Uint8("sp", state.SP),
	)
}

// controlFlow names how the instruction changes the program counter.
func controlFlow(ins opcode.Instruction) string {
	switch {
	case ins.IsCall():
		return "call"
	case ins.IsReturn():
		return "return"
	case ins.IsJump():
		return "jump"
	case ins.IsSkip():
		return "skip"
	default:
		return "next"
	}
}

// detectHalt logs once when the program reaches a jump to itself, the usual
// way for CHIP-8 programs to end.
func (r *Runner) detectHalt() {
	pc := r.machine.PC()
	word, err := r.machine.PeekOpcode()
	if err != nil {
		return
	}

	ins, _ := opcode.Lookup(word)
	halted := ins.IsSelfJump(pc)
	if halted && !r.halted {
		r.logger.Info("Program halted",
			log.Hex("address", pc),
			log.String("cycles", strconv.FormatUint(r.cycles, 10)),
		)
	}
	r.halted = halted
}

func (r *Runner) setTone(on bool) {
	if r.toneOn == on {
		return
	}
	r.toneOn = on
	r.speaker.SetTone(on)
}

func (r *Runner) present() error {
	if r.display == nil || !r.machine.Redrawn() {
		return nil
	}
	if err := r.display.Draw(r.machine.Framebuffer()); err != nil {
		return fmt.Errorf("drawing frame: %w", err)
	}
	return nil
}
