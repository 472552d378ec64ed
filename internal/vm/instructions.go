package vm

// executeArithmetic executes the 8XYN register to register instructions.
// Instructions with a flag effect write VF last so that the flag wins
// when X is F.
func (m *Machine) executeArithmetic(ins instruction) error {
	vx, vy := m.v[ins.x], m.v[ins.y]

	switch ins.n {
	case 0x0: // LD VX, VY
		m.v[ins.x] = vy

	case 0x1: // OR VX, VY
		m.v[ins.x] = vx | vy

	case 0x2: // AND VX, VY
		m.v[ins.x] = vx & vy

	case 0x3: // XOR VX, VY
		m.v[ins.x] = vx ^ vy

	case 0x4: // ADD VX, VY
		sum := uint16(vx) + uint16(vy)
		m.v[ins.x] = uint8(sum)
		m.v[FlagRegister] = boolToFlag(sum > 0xFF)

	case 0x5: // SUB VX, VY
		m.v[ins.x] = vx - vy
		m.v[FlagRegister] = boolToFlag(vx >= vy)

	case 0x6: // SHR VX
		src := m.shiftSource(vx, vy)
		m.v[ins.x] = src >> 1
		m.v[FlagRegister] = src & 0x01

	case 0x7: // SUBN VX, VY
		m.v[ins.x] = vy - vx
		m.v[FlagRegister] = boolToFlag(vy >= vx)

	case 0xE: // SHL VX
		src := m.shiftSource(vx, vy)
		m.v[ins.x] = src << 1
		m.v[FlagRegister] = src >> 7

	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (m *Machine) shiftSource(vx, vy uint8) uint8 {
	if m.shift == ShiftFromVY {
		return vy
	}
	return vx
}

// draw XORs an N rows high sprite read from memory at I into the framebuffer
// at (VX, VY). VF is set if any pixel of the whole sprite was switched off.
func (m *Machine) draw(ins instruction) error {
	rows := int(ins.n)
	if err := checkRange(m.i, rows); err != nil {
		return err
	}

	x, y := int(m.v[ins.x]), int(m.v[ins.y])
	collision := false

	for row := range rows {
		data := m.memory[int(m.i)+row]
		for column := range 8 {
			if data&(0x80>>column) == 0 {
				continue
			}
			if m.framebuffer.toggle(x+column, y+row) {
				collision = true
			}
		}
	}

	m.v[FlagRegister] = boolToFlag(collision)
	m.redrawn = true
	return nil
}

// executeMisc executes the FXNN timer, keypad, index and memory instructions.
func (m *Machine) executeMisc(ins instruction) error {
	x := ins.x

	switch ins.nn {
	case 0x07: // LD VX, DT
		m.v[x] = m.delayTimer

	case 0x0A: // LD VX, K
		m.waitForKey(x)

	case 0x15: // LD DT, VX
		m.delayTimer = m.v[x]

	case 0x18: // LD ST, VX
		m.soundTimer = m.v[x]

	case 0x1E: // ADD I, VX
		m.i += uint16(m.v[x])

	case 0x29: // LD F, VX
		m.i = FontAddress + fontGlyphSize*uint16(m.v[x])

	case 0x33: // LD B, VX
		if err := checkRange(m.i, 3); err != nil {
			return err
		}
		value := m.v[x]
		m.memory[m.i] = value / 100
		m.memory[m.i+1] = value / 10 % 10
		m.memory[m.i+2] = value % 10

	case 0x55: // LD [I], VX
		count := int(x) + 1
		if err := checkRange(m.i, count); err != nil {
			return err
		}
		copy(m.memory[m.i:], m.v[:count])

	case 0x65: // LD VX, [I]
		count := int(x) + 1
		if err := checkRange(m.i, count); err != nil {
			return err
		}
		copy(m.v[:count], m.memory[m.i:])

	default:
		return ErrUnknownOpcode
	}
	return nil
}

// waitForKey stores the lowest pressed key in VX. If no key is pressed the
// program counter is rewound so that the instruction is executed again on
// the next step, which keeps the host loop running while the program waits.
func (m *Machine) waitForKey(x uint8) {
	for key, pressed := range m.keys {
		if pressed {
			m.v[x] = uint8(key)
			return
		}
	}
	m.pc -= opcodeSize
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
