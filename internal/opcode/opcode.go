// Package opcode identifies CHIP-8 instruction words using the retrogolib
// CHIP-8 opcode table. It is used for diagnostic output and control flow
// classification by the host, execution itself is done by the vm package.
package opcode

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is an identified instruction word.
type Instruction struct {
	ins  *chip8.Instruction
	word uint16
}

// Lookup identifies the instruction word by matching it against the masks of
// all opcodes that share its first nibble. It returns false for words that do
// not encode a known instruction.
func Lookup(word uint16) (Instruction, bool) {
	firstNibble := (word & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&word == op.Info.Value {
			return Instruction{
				ins:  op.Instruction,
				word: word,
			}, op.Instruction != nil
		}
	}
	return Instruction{word: word}, false
}

// Word returns the instruction word.
func (i Instruction) Word() uint16 {
	return i.word
}

// Name returns the instruction mnemonic, or an empty string for unknown words.
func (i Instruction) Name() string {
	if i.ins == nil {
		return ""
	}
	return i.ins.Name
}

// IsCall returns true if the instruction is a subroutine call.
func (i Instruction) IsCall() bool {
	return i.ins != nil && i.ins == chip8.Call
}

// IsJump returns true if the instruction is a jump, absolute or V0 relative.
func (i Instruction) IsJump() bool {
	return i.ins != nil && i.ins == chip8.Jp
}

// IsReturn returns true if the instruction returns from a subroutine.
func (i Instruction) IsReturn() bool {
	return i.ins != nil && i.ins == chip8.Ret
}

// IsSkip returns true if the instruction conditionally skips the next instruction.
func (i Instruction) IsSkip() bool {
	if i.ins == nil {
		return false
	}
	return chip8.SkipInstructions.Contains(i.ins.Name)
}

// Target returns the absolute address of JP NNN, CALL NNN and LD I, NNN.
func (i Instruction) Target() (uint16, bool) {
	switch i.word & 0xF000 {
	case 0x1000, 0x2000, 0xA000:
		return i.word & 0x0FFF, true
	default:
		return 0, false
	}
}

// IsSelfJump returns true if the instruction at the given address jumps to
// itself. Programs commonly end in such a loop.
func (i Instruction) IsSelfJump(address uint16) bool {
	if i.word&0xF000 != 0x1000 {
		return false
	}
	target, _ := i.Target()
	return target == address
}

// String returns the instruction in assembly notation, for example "ld V1, $23".
// Unknown words are shown as a data word.
func (i Instruction) String() string {
	name := i.Name()
	if name == "" {
		return fmt.Sprintf("dw $%04X", i.word)
	}
	if params := formatParams(name, i.word); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}
