// Package chip8 implements the CHIP-8 virtual machine core: memory, the
// instruction decoder, the executor and the delay and sound timers.
//
// A Machine is not safe for concurrent use. Hosts that execute instructions,
// tick timers or change keys from different goroutines must serialize the
// calls with a single lock.
package chip8

import "fmt"

const (
	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16

	// StackSize is the maximum call depth.
	StackSize = 16

	// InstructionSize is the size of an instruction in bytes.
	InstructionSize = 2
)

// Machine is the complete mutable state of a CHIP-8 interpreter.
type Machine struct {
	Memory Memory
	V      [RegisterCount]byte // general purpose registers, VF is the flag register
	I      uint16              // index register
	PC     uint16              // program counter

	Stack [StackSize]uint16 // return addresses
	SP    int               // number of used stack entries

	DelayTimer byte
	SoundTimer byte

	display Display
	keys    Keypad
	random  RandomSource
	waiting bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithRandomSource sets the source used by the random instruction.
func WithRandomSource(source RandomSource) Option {
	return func(m *Machine) {
		m.random = source
	}
}

// New returns a machine in its reset state.
func New(opts ...Option) *Machine {
	m := &Machine{
		random: systemSource{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset()
	return m
}

// Reset restores the power-on state: memory cleared except for the font,
// registers, stack and timers zeroed, blank display, no key pressed and the
// program counter at ProgramStart. A loaded program has to be loaded again.
func (m *Machine) Reset() {
	m.Memory = Memory{}
	m.Memory.seedFont()
	m.V = [RegisterCount]byte{}
	m.I = 0
	m.PC = ProgramStart
	m.Stack = [StackSize]uint16{}
	m.SP = 0
	m.DelayTimer = 0
	m.SoundTimer = 0
	m.display = Display{}
	m.keys = Keypad{}
	m.waiting = false
}

// Load copies a program image into program memory.
func (m *Machine) Load(program []byte) error {
	if err := m.Memory.Load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	return nil
}

// Display returns the pixel grid for rendering.
func (m *Machine) Display() *Display {
	return &m.display
}

// Waiting reports whether the last executed instruction was a key wait that
// found no pressed key and left the program counter in place.
func (m *Machine) Waiting() bool {
	return m.waiting
}

func (m *Machine) push(address uint16) error {
	if m.SP >= StackSize {
		return fmt.Errorf("%w: call at $%04X", ErrStackOverflow, m.PC)
	}
	m.Stack[m.SP] = address
	m.SP++
	return nil
}

func (m *Machine) pop() (uint16, error) {
	if m.SP <= 0 {
		return 0, fmt.Errorf("%w: return at $%04X", ErrStackUnderflow, m.PC)
	}
	m.SP--
	return m.Stack[m.SP], nil
}
