package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is one decoded CHIP-8 instruction. The set of implementations
// is closed, all of them are declared in this file.
type Instruction interface {
	fmt.Stringer

	// Mnemonic returns the assembler instruction this variant is written as.
	// Several variants share a mnemonic, for example all LD forms.
	Mnemonic() *chip8cpu.Instruction

	instruction()
}

// Register is the index of a general purpose register V0-VF.
type Register uint8

// VF is the flag register.
const VF Register = 0xF

func (r Register) String() string {
	return fmt.Sprintf("V%X", uint8(r))
}

type (
	// ClearDisplay clears the pixel grid (00E0).
	ClearDisplay struct{}
	// Return pops the return address from the stack (00EE).
	Return struct{}
	// Jump sets the program counter (1NNN).
	Jump struct{ Address uint16 }
	// Call pushes the return address and jumps (2NNN).
	Call struct{ Address uint16 }
	// SkipEqual skips the next instruction if VX equals the byte (3XNN).
	SkipEqual struct {
		X    Register
		Byte byte
	}
	// SkipNotEqual skips the next instruction if VX does not equal the byte (4XNN).
	SkipNotEqual struct {
		X    Register
		Byte byte
	}
	// SkipEqualRegisters skips the next instruction if VX equals VY (5XY0).
	SkipEqualRegisters struct{ X, Y Register }
	// LoadByte sets VX to the byte (6XNN).
	LoadByte struct {
		X    Register
		Byte byte
	}
	// AddByte adds the byte to VX without carry flag (7XNN).
	AddByte struct {
		X    Register
		Byte byte
	}
	// Move copies VY to VX (8XY0).
	Move struct{ X, Y Register }
	// Or sets VX to VX | VY (8XY1).
	Or struct{ X, Y Register }
	// And sets VX to VX & VY (8XY2).
	And struct{ X, Y Register }
	// Xor sets VX to VX ^ VY (8XY3).
	Xor struct{ X, Y Register }
	// AddRegisters adds VY to VX, VF is the carry (8XY4).
	AddRegisters struct{ X, Y Register }
	// Sub subtracts VY from VX, VF is 1 when no borrow occurred (8XY5).
	Sub struct{ X, Y Register }
	// ShiftRight shifts VX right by one, VF is the bit shifted out (8XY6).
	ShiftRight struct{ X, Y Register }
	// SubReverse sets VX to VY - VX, VF is 1 when no borrow occurred (8XY7).
	SubReverse struct{ X, Y Register }
	// ShiftLeft shifts VX left by one, VF is the bit shifted out (8XYE).
	ShiftLeft struct{ X, Y Register }
	// SkipNotEqualRegisters skips the next instruction if VX does not equal VY (9XY0).
	SkipNotEqualRegisters struct{ X, Y Register }
	// LoadIndex sets the index register (ANNN).
	LoadIndex struct{ Address uint16 }
	// JumpPlusZero jumps to the address plus V0 (BNNN).
	JumpPlusZero struct{ Address uint16 }
	// Random sets VX to a random byte masked with Mask (CXNN).
	Random struct {
		X    Register
		Mask byte
	}
	// Draw XORs a sprite of Rows bytes read from I onto the grid at VX, VY (DXYN).
	Draw struct {
		X, Y Register
		Rows uint8
	}
	// SkipKeyPressed skips the next instruction if the key in VX is pressed (EX9E).
	SkipKeyPressed struct{ X Register }
	// SkipKeyNotPressed skips the next instruction if the key in VX is not pressed (EXA1).
	SkipKeyNotPressed struct{ X Register }
	// LoadDelayTimer copies the delay timer to VX (FX07).
	LoadDelayTimer struct{ X Register }
	// WaitForKeyPress stalls until a key is pressed and stores it in VX (FX0A).
	WaitForKeyPress struct{ X Register }
	// SetDelayTimer copies VX to the delay timer (FX15).
	SetDelayTimer struct{ X Register }
	// SetSoundTimer copies VX to the sound timer (FX18).
	SetSoundTimer struct{ X Register }
	// AddIndex adds VX to the index register (FX1E).
	AddIndex struct{ X Register }
	// LoadSprite points the index register at the font glyph for VX (FX29).
	LoadSprite struct{ X Register }
	// StoreBCD writes the decimal digits of VX to I, I+1 and I+2 (FX33).
	StoreBCD struct{ X Register }
	// StoreRegisters writes V0 through VX to memory starting at I (FX55).
	StoreRegisters struct{ X Register }
	// LoadRegisters reads V0 through VX from memory starting at I (FX65).
	LoadRegisters struct{ X Register }
)

func (ClearDisplay) instruction()          {}
func (Return) instruction()                {}
func (Jump) instruction()                  {}
func (Call) instruction()                  {}
func (SkipEqual) instruction()             {}
func (SkipNotEqual) instruction()          {}
func (SkipEqualRegisters) instruction()    {}
func (LoadByte) instruction()              {}
func (AddByte) instruction()               {}
func (Move) instruction()                  {}
func (Or) instruction()                    {}
func (And) instruction()                   {}
func (Xor) instruction()                   {}
func (AddRegisters) instruction()          {}
func (Sub) instruction()                   {}
func (ShiftRight) instruction()            {}
func (SubReverse) instruction()            {}
func (ShiftLeft) instruction()             {}
func (SkipNotEqualRegisters) instruction() {}
func (LoadIndex) instruction()             {}
func (JumpPlusZero) instruction()          {}
func (Random) instruction()                {}
func (Draw) instruction()                  {}
func (SkipKeyPressed) instruction()        {}
func (SkipKeyNotPressed) instruction()     {}
func (LoadDelayTimer) instruction()        {}
func (WaitForKeyPress) instruction()       {}
func (SetDelayTimer) instruction()         {}
func (SetSoundTimer) instruction()         {}
func (AddIndex) instruction()              {}
func (LoadSprite) instruction()            {}
func (StoreBCD) instruction()              {}
func (StoreRegisters) instruction()        {}
func (LoadRegisters) instruction()         {}

func (ClearDisplay) Mnemonic() *chip8cpu.Instruction          { return chip8cpu.ClsInst }
func (Return) Mnemonic() *chip8cpu.Instruction                { return chip8cpu.RetInst }
func (Jump) Mnemonic() *chip8cpu.Instruction                  { return chip8cpu.JpInst }
func (Call) Mnemonic() *chip8cpu.Instruction                  { return chip8cpu.CallInst }
func (SkipEqual) Mnemonic() *chip8cpu.Instruction             { return chip8cpu.SeInst }
func (SkipNotEqual) Mnemonic() *chip8cpu.Instruction          { return chip8cpu.SneInst }
func (SkipEqualRegisters) Mnemonic() *chip8cpu.Instruction    { return chip8cpu.SeInst }
func (LoadByte) Mnemonic() *chip8cpu.Instruction              { return chip8cpu.LdInst }
func (AddByte) Mnemonic() *chip8cpu.Instruction               { return chip8cpu.AddInst }
func (Move) Mnemonic() *chip8cpu.Instruction                  { return chip8cpu.LdInst }
func (Or) Mnemonic() *chip8cpu.Instruction                    { return chip8cpu.OrInst }
func (And) Mnemonic() *chip8cpu.Instruction                   { return chip8cpu.AndInst }
func (Xor) Mnemonic() *chip8cpu.Instruction                   { return chip8cpu.XorInst }
func (AddRegisters) Mnemonic() *chip8cpu.Instruction          { return chip8cpu.AddInst }
func (Sub) Mnemonic() *chip8cpu.Instruction                   { return chip8cpu.SubInst }
func (ShiftRight) Mnemonic() *chip8cpu.Instruction            { return chip8cpu.ShrInst }
func (SubReverse) Mnemonic() *chip8cpu.Instruction            { return chip8cpu.SubnInst }
func (ShiftLeft) Mnemonic() *chip8cpu.Instruction             { return chip8cpu.ShlInst }
func (SkipNotEqualRegisters) Mnemonic() *chip8cpu.Instruction { return chip8cpu.SneInst }
func (LoadIndex) Mnemonic() *chip8cpu.Instruction             { return chip8cpu.LdInst }
func (JumpPlusZero) Mnemonic() *chip8cpu.Instruction          { return chip8cpu.JpInst }
func (Random) Mnemonic() *chip8cpu.Instruction                { return chip8cpu.RndInst }
func (Draw) Mnemonic() *chip8cpu.Instruction                  { return chip8cpu.DrwInst }
func (SkipKeyPressed) Mnemonic() *chip8cpu.Instruction        { return chip8cpu.SkpInst }
func (SkipKeyNotPressed) Mnemonic() *chip8cpu.Instruction     { return chip8cpu.SknpInst }
func (LoadDelayTimer) Mnemonic() *chip8cpu.Instruction        { return chip8cpu.LdInst }
func (WaitForKeyPress) Mnemonic() *chip8cpu.Instruction       { return chip8cpu.LdInst }
func (SetDelayTimer) Mnemonic() *chip8cpu.Instruction         { return chip8cpu.LdInst }
func (SetSoundTimer) Mnemonic() *chip8cpu.Instruction         { return chip8cpu.LdInst }
func (AddIndex) Mnemonic() *chip8cpu.Instruction              { return chip8cpu.AddInst }
func (LoadSprite) Mnemonic() *chip8cpu.Instruction            { return chip8cpu.LdInst }
func (StoreBCD) Mnemonic() *chip8cpu.Instruction              { return chip8cpu.LdInst }
func (StoreRegisters) Mnemonic() *chip8cpu.Instruction        { return chip8cpu.LdInst }
func (LoadRegisters) Mnemonic() *chip8cpu.Instruction         { return chip8cpu.LdInst }

func (i ClearDisplay) String() string { return format(i, "") }
func (i Return) String() string       { return format(i, "") }
func (i Jump) String() string         { return format(i, address(i.Address)) }
func (i Call) String() string         { return format(i, address(i.Address)) }
func (i SkipEqual) String() string    { return format(i, registerByte(i.X, i.Byte)) }
func (i SkipNotEqual) String() string { return format(i, registerByte(i.X, i.Byte)) }
func (i SkipEqualRegisters) String() string {
	return format(i, registerPair(i.X, i.Y))
}
func (i LoadByte) String() string     { return format(i, registerByte(i.X, i.Byte)) }
func (i AddByte) String() string      { return format(i, registerByte(i.X, i.Byte)) }
func (i Move) String() string         { return format(i, registerPair(i.X, i.Y)) }
func (i Or) String() string           { return format(i, registerPair(i.X, i.Y)) }
func (i And) String() string          { return format(i, registerPair(i.X, i.Y)) }
func (i Xor) String() string          { return format(i, registerPair(i.X, i.Y)) }
func (i AddRegisters) String() string { return format(i, registerPair(i.X, i.Y)) }
func (i Sub) String() string          { return format(i, registerPair(i.X, i.Y)) }
func (i ShiftRight) String() string   { return format(i, i.X.String()) }
func (i SubReverse) String() string   { return format(i, registerPair(i.X, i.Y)) }
func (i ShiftLeft) String() string    { return format(i, i.X.String()) }
func (i SkipNotEqualRegisters) String() string {
	return format(i, registerPair(i.X, i.Y))
}
func (i LoadIndex) String() string    { return format(i, "I, "+address(i.Address)) }
func (i JumpPlusZero) String() string { return format(i, "V0, "+address(i.Address)) }
func (i Random) String() string       { return format(i, registerByte(i.X, i.Mask)) }
func (i Draw) String() string {
	return format(i, fmt.Sprintf("%s, %s, $%X", i.X, i.Y, i.Rows))
}
func (i SkipKeyPressed) String() string    { return format(i, i.X.String()) }
func (i SkipKeyNotPressed) String() string { return format(i, i.X.String()) }
func (i LoadDelayTimer) String() string    { return format(i, i.X.String()+", DT") }
func (i WaitForKeyPress) String() string   { return format(i, i.X.String()+", K") }
func (i SetDelayTimer) String() string     { return format(i, "DT, "+i.X.String()) }
func (i SetSoundTimer) String() string     { return format(i, "ST, "+i.X.String()) }
func (i AddIndex) String() string          { return format(i, "I, "+i.X.String()) }
func (i LoadSprite) String() string        { return format(i, "F, "+i.X.String()) }
func (i StoreBCD) String() string          { return format(i, "B, "+i.X.String()) }
func (i StoreRegisters) String() string    { return format(i, "[I], "+i.X.String()) }
func (i LoadRegisters) String() string     { return format(i, i.X.String()+", [I]") }

func format(i Instruction, params string) string {
	name := i.Mnemonic().Name
	if params == "" {
		return name
	}
	return name + " " + params
}

func address(a uint16) string {
	return fmt.Sprintf("$%03X", a)
}

func registerByte(r Register, b byte) string {
	return fmt.Sprintf("%s, $%02X", r, b)
}

func registerPair(x, y Register) string {
	return fmt.Sprintf("%s, %s", x, y)
}
