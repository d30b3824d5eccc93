package chip8

import "fmt"

// Fetch reads and decodes the instruction at the program counter.
func (m *Machine) Fetch() (uint16, Instruction, error) {
	opcode, err := m.Memory.Opcode(m.PC)
	if err != nil {
		return 0, nil, fmt.Errorf("fetching instruction at $%04X: %w", m.PC, err)
	}
	ins, err := Decode(opcode)
	if err != nil {
		return opcode, nil, fmt.Errorf("decoding instruction at $%04X: %w", m.PC, err)
	}
	return opcode, ins, nil
}

// Step fetches, decodes and executes one instruction.
func (m *Machine) Step() error {
	_, ins, err := m.Fetch()
	if err != nil {
		return err
	}
	return m.Execute(ins)
}

// Execute applies one instruction and advances the program counter. An
// instruction either applies all of its effects or, when it returns an error,
// none of them.
func (m *Machine) Execute(ins Instruction) error {
	m.waiting = false
	next := m.PC + InstructionSize

	switch i := ins.(type) {
	case ClearDisplay:
		m.display.clear()

	case Return:
		address, err := m.pop()
		if err != nil {
			return err
		}
		next = address

	case Jump:
		next = i.Address

	case Call:
		if err := m.push(next); err != nil {
			return err
		}
		next = i.Address

	case JumpPlusZero:
		next = i.Address + uint16(m.V[0])

	case SkipEqual:
		next = m.skip(m.V[i.X] == i.Byte)
	case SkipNotEqual:
		next = m.skip(m.V[i.X] != i.Byte)
	case SkipEqualRegisters:
		next = m.skip(m.V[i.X] == m.V[i.Y])
	case SkipNotEqualRegisters:
		next = m.skip(m.V[i.X] != m.V[i.Y])
	case SkipKeyPressed:
		next = m.skip(m.keys[m.V[i.X]&0x0F])
	case SkipKeyNotPressed:
		next = m.skip(!m.keys[m.V[i.X]&0x0F])

	case LoadByte:
		m.V[i.X] = i.Byte
	case AddByte:
		m.V[i.X] += i.Byte
	case Move:
		m.V[i.X] = m.V[i.Y]
	case Or:
		m.V[i.X] |= m.V[i.Y]
	case And:
		m.V[i.X] &= m.V[i.Y]
	case Xor:
		m.V[i.X] ^= m.V[i.Y]
	case AddRegisters, Sub, SubReverse, ShiftRight, ShiftLeft:
		m.executeFlagged(ins)

	case LoadIndex:
		m.I = i.Address
	case AddIndex:
		m.I += uint16(m.V[i.X])
	case LoadSprite:
		m.I = GlyphAddress(m.V[i.X])

	case Random:
		m.V[i.X] = m.random.NextByte() & i.Mask

	case Draw:
		if err := m.draw(i); err != nil {
			return err
		}

	case LoadDelayTimer:
		m.V[i.X] = m.DelayTimer
	case SetDelayTimer:
		m.DelayTimer = m.V[i.X]
	case SetSoundTimer:
		m.SoundTimer = m.V[i.X]

	case WaitForKeyPress:
		key, ok := m.keys.first()
		if !ok {
			m.waiting = true
			return nil
		}
		m.V[i.X] = key

	case StoreBCD, StoreRegisters, LoadRegisters:
		if err := m.executeBulk(ins); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %T", ErrDecode, ins)
	}

	m.PC = next
	return nil
}

// skip returns the address of the next instruction, skipping one
// instruction when the condition is true.
func (m *Machine) skip(condition bool) uint16 {
	if condition {
		return m.PC + 2*InstructionSize
	}
	return m.PC + InstructionSize
}

// executeFlagged handles the arithmetic instructions that report a flag in
// VF. The flag is derived from the original operands and written before the
// result, so an instruction with VF as destination keeps the result.
func (m *Machine) executeFlagged(ins Instruction) {
	switch i := ins.(type) {
	case AddRegisters:
		sum := uint16(m.V[i.X]) + uint16(m.V[i.Y])
		m.setFlagged(i.X, byte(sum), sum > 0xFF)
	case Sub:
		x, y := m.V[i.X], m.V[i.Y]
		m.setFlagged(i.X, x-y, x >= y)
	case SubReverse:
		x, y := m.V[i.X], m.V[i.Y]
		m.setFlagged(i.X, y-x, y >= x)
	case ShiftRight:
		x := m.V[i.X]
		m.setFlagged(i.X, x>>1, x&0x01 != 0)
	case ShiftLeft:
		x := m.V[i.X]
		m.setFlagged(i.X, x<<1, x&0x80 != 0)
	}
}

func (m *Machine) setFlagged(x Register, value byte, flag bool) {
	m.V[VF] = boolToByte(flag)
	m.V[x] = value
}

func (m *Machine) draw(i Draw) error {
	sprite, err := m.Memory.Slice(m.I, int(i.Rows))
	if err != nil {
		return fmt.Errorf("reading sprite: %w", err)
	}
	collision := m.display.drawSprite(int(m.V[i.X]), int(m.V[i.Y]), sprite)
	m.V[VF] = boolToByte(collision)
	return nil
}

// executeBulk handles the instructions that transfer several bytes between
// registers and memory at I. The index register is not modified.
func (m *Machine) executeBulk(ins Instruction) error {
	switch i := ins.(type) {
	case StoreBCD:
		digits, err := m.Memory.Slice(m.I, 3)
		if err != nil {
			return fmt.Errorf("storing BCD: %w", err)
		}
		value := m.V[i.X]
		digits[0] = value / 100
		digits[1] = value / 10 % 10
		digits[2] = value % 10

	case StoreRegisters:
		count := int(i.X) + 1
		dst, err := m.Memory.Slice(m.I, count)
		if err != nil {
			return fmt.Errorf("storing registers: %w", err)
		}
		copy(dst, m.V[:count])

	case LoadRegisters:
		count := int(i.X) + 1
		src, err := m.Memory.Slice(m.I, count)
		if err != nil {
			return fmt.Errorf("loading registers: %w", err)
		}
		copy(m.V[:count], src)
	}
	return nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
