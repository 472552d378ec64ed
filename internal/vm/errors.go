package vm

import (
	"errors"
	"fmt"
)

// Errors reported by the machine. Step failures are wrapped in a StepError.
var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrMemoryBounds    = errors.New("memory access out of bounds")
	ErrStackBounds     = errors.New("call stack out of bounds")
	ErrStackOverflow   = fmt.Errorf("%w: overflow", ErrStackBounds)
	ErrStackUnderflow  = fmt.Errorf("%w: underflow", ErrStackBounds)
	ErrInvalidKey      = errors.New("invalid key index")
	ErrProgramTooLarge = errors.New("program too large")
)

// StepError describes an instruction that could not be executed.
// The machine state is left as it was before the failing step.
type StepError struct {
	Address uint16 // address of the failing instruction
	Opcode  uint16 // instruction word, 0 if the fetch itself failed
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("executing opcode $%04X at $%04X: %s", e.Opcode, e.Address, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
