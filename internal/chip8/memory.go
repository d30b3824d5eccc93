package chip8

import "fmt"

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter area, font glyphs live at FontStart
//	0x200-0xFFF: Program space
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the memory address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// MaxAddress is the highest valid memory address.
	MaxAddress = MemorySize - 1
)

// Memory is the byte addressable main memory. All accessors are bounds-checked.
type Memory [MemorySize]byte

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if int(address) >= MemorySize {
		return 0, &AddressError{Address: address, Length: 1}
	}
	return m[address], nil
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if int(address) >= MemorySize {
		return &AddressError{Address: address, Length: 1}
	}
	m[address] = value
	return nil
}

// Slice returns the n bytes starting at address. The returned slice aliases memory.
func (m *Memory) Slice(address uint16, n int) ([]byte, error) {
	if err := m.check(address, n); err != nil {
		return nil, err
	}
	start := int(address)
	return m[start : start+n], nil
}

// Opcode fetches the big-endian instruction word at address.
func (m *Memory) Opcode(address uint16) (uint16, error) {
	if err := m.check(address, 2); err != nil {
		return 0, err
	}
	return uint16(m[address])<<8 | uint16(m[address+1]), nil
}

// Load copies a raw program image into program space. Nothing is written
// when the image does not fit.
func (m *Memory) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrLoadTooLarge, len(program), MaxProgramSize)
	}
	copy(m[ProgramStart:], program)
	return nil
}

func (m *Memory) check(address uint16, n int) error {
	if n < 0 || int(address)+n > MemorySize {
		return &AddressError{Address: address, Length: n}
	}
	return nil
}
