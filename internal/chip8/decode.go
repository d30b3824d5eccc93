package chip8

// fields holds the nibble aligned operand fields of an opcode.
type fields struct {
	family uint16   // bits 12-15
	x      Register // bits 8-11
	y      Register // bits 4-7
	n      uint8    // bits 0-3
	nn     byte     // bits 0-7
	nnn    uint16   // bits 0-11
}

func split(opcode uint16) fields {
	return fields{
		family: opcode >> 12,
		x:      Register((opcode & 0x0F00) >> 8),
		y:      Register((opcode & 0x00F0) >> 4),
		n:      uint8(opcode & 0x000F),
		nn:     byte(opcode & 0x00FF),
		nnn:    opcode & 0x0FFF,
	}
}

// Decode maps a raw opcode to its instruction. Every input returns either an
// instruction or a *DecodeError.
func Decode(opcode uint16) (Instruction, error) {
	f := split(opcode)

	var ins Instruction
	switch f.family {
	case 0x0:
		ins = decodeSystem(f)
	case 0x1:
		ins = Jump{Address: f.nnn}
	case 0x2:
		ins = Call{Address: f.nnn}
	case 0x3:
		ins = SkipEqual{X: f.x, Byte: f.nn}
	case 0x4:
		ins = SkipNotEqual{X: f.x, Byte: f.nn}
	case 0x5:
		if f.n == 0 {
			ins = SkipEqualRegisters{X: f.x, Y: f.y}
		}
	case 0x6:
		ins = LoadByte{X: f.x, Byte: f.nn}
	case 0x7:
		ins = AddByte{X: f.x, Byte: f.nn}
	case 0x8:
		ins = decodeArithmetic(f)
	case 0x9:
		if f.n == 0 {
			ins = SkipNotEqualRegisters{X: f.x, Y: f.y}
		}
	case 0xA:
		ins = LoadIndex{Address: f.nnn}
	case 0xB:
		ins = JumpPlusZero{Address: f.nnn}
	case 0xC:
		ins = Random{X: f.x, Mask: f.nn}
	case 0xD:
		ins = Draw{X: f.x, Y: f.y, Rows: f.n}
	case 0xE:
		ins = decodeKey(f)
	case 0xF:
		ins = decodeMisc(f)
	}

	if ins == nil {
		return nil, &DecodeError{Opcode: opcode}
	}
	return ins, nil
}

// decodeSystem handles the 0NNN family. Machine code calls (0NNN other than
// 00E0 and 00EE) are not supported.
func decodeSystem(f fields) Instruction {
	if f.x != 0 {
		return nil
	}
	switch f.nn {
	case 0xE0:
		return ClearDisplay{}
	case 0xEE:
		return Return{}
	}
	return nil
}

func decodeArithmetic(f fields) Instruction {
	switch f.n {
	case 0x0:
		return Move{X: f.x, Y: f.y}
	case 0x1:
		return Or{X: f.x, Y: f.y}
	case 0x2:
		return And{X: f.x, Y: f.y}
	case 0x3:
		return Xor{X: f.x, Y: f.y}
	case 0x4:
		return AddRegisters{X: f.x, Y: f.y}
	case 0x5:
		return Sub{X: f.x, Y: f.y}
	case 0x6:
		return ShiftRight{X: f.x, Y: f.y}
	case 0x7:
		return SubReverse{X: f.x, Y: f.y}
	case 0xE:
		return ShiftLeft{X: f.x, Y: f.y}
	}
	return nil
}

func decodeKey(f fields) Instruction {
	switch f.nn {
	case 0x9E:
		return SkipKeyPressed{X: f.x}
	case 0xA1:
		return SkipKeyNotPressed{X: f.x}
	}
	return nil
}

func decodeMisc(f fields) Instruction {
	switch f.nn {
	case 0x07:
		return LoadDelayTimer{X: f.x}
	case 0x0A:
		return WaitForKeyPress{X: f.x}
	case 0x15:
		return SetDelayTimer{X: f.x}
	case 0x18:
		return SetSoundTimer{X: f.x}
	case 0x1E:
		return AddIndex{X: f.x}
	case 0x29:
		return LoadSprite{X: f.x}
	case 0x33:
		return StoreBCD{X: f.x}
	case 0x55:
		return StoreRegisters{X: f.x}
	case 0x65:
		return LoadRegisters{X: f.x}
	}
	return nil
}
