package vm

import "fmt"

// instruction is a decoded instruction word.
type instruction struct {
	op   uint16
	kind uint8 // digit 1, the instruction family
	x    uint8 // digit 2
	y    uint8 // digit 3
	n    uint8 // digit 4
	nn   uint8
	nnn  uint16
}

func decode(op uint16) instruction {
	return instruction{
		op:   op,
		kind: uint8(op >> 12),
		x:    uint8(op>>8) & 0xF,
		y:    uint8(op>>4) & 0xF,
		n:    uint8(op) & 0xF,
		nn:   uint8(op),
		nnn:  op & 0x0FFF,
	}
}

// Step fetches, decodes and executes one instruction.
// On error the machine state is unchanged and the error is a *StepError.
func (m *Machine) Step() error {
	address := m.pc

	op, err := m.fetch()
	if err != nil {
		return &StepError{Address: address, Err: err}
	}

	if err := m.execute(decode(op)); err != nil {
		m.pc = address
		return &StepError{Address: address, Opcode: op, Err: err}
	}
	return nil
}

// PeekOpcode returns the instruction word at the program counter without
// executing it.
func (m *Machine) PeekOpcode() (uint16, error) {
	if int(m.pc)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: fetch at $%04X", ErrMemoryBounds, m.pc)
	}
	return uint16(m.memory[m.pc])<<8 | uint16(m.memory[m.pc+1]), nil
}

func (m *Machine) fetch() (uint16, error) {
	op, err := m.PeekOpcode()
	if err != nil {
		return 0, err
	}
	m.pc += opcodeSize
	return op, nil
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += opcodeSize
	}
}

func (m *Machine) execute(ins instruction) error {
	switch ins.kind {
	case 0x0:
		return m.executeSystem(ins)

	case 0x1: // JP NNN
		m.pc = ins.nnn

	case 0x2: // CALL NNN
		if err := m.push(m.pc); err != nil {
			return err
		}
		m.pc = ins.nnn

	case 0x3: // SE VX, NN
		m.skipIf(m.v[ins.x] == ins.nn)

	case 0x4: // SNE VX, NN
		m.skipIf(m.v[ins.x] != ins.nn)

	case 0x5: // SE VX, VY
		if ins.n != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.v[ins.x] == m.v[ins.y])

	case 0x6: // LD VX, NN
		m.v[ins.x] = ins.nn

	case 0x7: // ADD VX, NN
		m.v[ins.x] += ins.nn

	case 0x8:
		return m.executeArithmetic(ins)

	case 0x9: // SNE VX, VY
		if ins.n != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.v[ins.x] != m.v[ins.y])

	case 0xA: // LD I, NNN
		m.i = ins.nnn

	case 0xB: // JP V0, NNN
		m.pc = uint16(m.v[0]) + ins.nnn

	case 0xC: // RND VX, NN
		m.v[ins.x] = m.random.Byte() & ins.nn

	case 0xD: // DRW VX, VY, N
		return m.draw(ins)

	case 0xE:
		return m.executeKey(ins)

	case 0xF:
		return m.executeMisc(ins)
	}
	return nil
}

func (m *Machine) executeSystem(ins instruction) error {
	switch ins.op {
	case 0x0000: // no operation

	case 0x00E0: // CLS
		m.framebuffer.clear()
		m.redrawn = true

	case 0x00EE: // RET
		address, err := m.pop()
		if err != nil {
			return err
		}
		m.pc = address

	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (m *Machine) executeKey(ins instruction) error {
	if ins.nn != 0x9E && ins.nn != 0xA1 {
		return ErrUnknownOpcode
	}

	key := m.v[ins.x]
	if key >= KeyCount {
		return fmt.Errorf("%w: V%X=%d", ErrInvalidKey, ins.x, key)
	}

	if ins.nn == 0x9E { // SKP VX
		m.skipIf(m.keys[key])
	} else { // SKNP VX
		m.skipIf(!m.keys[key])
	}
	return nil
}
