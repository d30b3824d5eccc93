// Package options contains the program options.
package options

import (
	"time"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// Default timing values.
const (
	DefaultCPURate = 700 // instructions per second
	DefaultKeyHold = 100 * time.Millisecond
)

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input program file"`
	Output string `flag:"o" usage:"output .asm file for -disasm (default: stdout)"`
}

// Flags contains behavior options.
type Flags struct {
	System      string `flag:"s" usage:"target system: chip8 (default: auto-detect)"`
	Disassemble bool   `flag:"disasm" usage:"write a disassembly listing instead of running the program"`
	Headless    bool   `flag:"headless" usage:"run without terminal display and input"`
	Debug       bool   `flag:"debug" usage:"enable debug logging and instruction tracing"`
	Quiet       bool   `flag:"q" usage:"quiet mode"`
}

// Timing contains the execution pacing options.
type Timing struct {
	CPURate     int           `flag:"cpu" usage:"instructions executed per second" default:"700"`
	MaxCycles   uint64        `flag:"cycles" usage:"stop after this many instructions, 0 runs until interrupted"`
	Seed        uint64        `flag:"seed" usage:"seed for the random instruction, 0 uses a random seed"`
	KeyHold     time.Duration `flag:"keyhold" usage:"time a terminal key stays pressed after its last repeat" default:"100ms"`
	Breakpoints string        `flag:"break" usage:"comma separated list of addresses to stop at, for example 0x2A4,0x300"`
}

// OutputFlags contains disassembly output formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in comments"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	Timing
	OutputFlags
}

// Emulator defines options to control the execution of a program.
type Emulator struct {
	CPURate     int      // instructions per second
	TimerRate   int      // timer ticks per second
	MaxCycles   uint64   // instruction limit, 0 for no limit
	Seed        uint64   // random seed, 0 for a random seed
	Breakpoints []uint16 // addresses that stop the execution
	Trace       bool     // log every executed instruction
}

// NewEmulator returns a new options instance with default options.
func NewEmulator() Emulator {
	return Emulator{
		CPURate:   DefaultCPURate,
		TimerRate: chip8.TimerRate,
	}
}
