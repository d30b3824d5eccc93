// Package emulator runs a CHIP-8 machine at a fixed instruction rate and
// connects it to a host for display, sound and input.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

var (
	// ErrBreakpoint is returned when the program counter reaches a breakpoint.
	ErrBreakpoint = errors.New("breakpoint reached")
	// ErrCycleLimit is returned when the configured instruction limit is reached.
	ErrCycleLimit = errors.New("instruction limit reached")
)

// maxCatchUp limits the instructions executed in one batch after the process
// was suspended, in fractions of a second.
const maxCatchUp = 10

const minCPUInterval = time.Millisecond

// Emulator serializes all access to a machine. Step, Tick and the key
// methods can be called from different goroutines.
type Emulator struct {
	logger  *log.Logger
	options options.Emulator

	mu          sync.Mutex
	machine     *chip8.Machine
	breakpoints set.Set[uint16]
	resumeAt    int // address of the last reported breakpoint, -1 for none
	cycles      uint64
	tone        bool
}

// New creates a new emulator for a machine with the given options.
func New(logger *log.Logger, opts options.Emulator) (*Emulator, error) {
	if opts.CPURate <= 0 {
		return nil, fmt.Errorf("invalid cpu rate %d", opts.CPURate)
	}
	if opts.TimerRate <= 0 {
		return nil, fmt.Errorf("invalid timer rate %d", opts.TimerRate)
	}

	var machineOptions []chip8.Option
	if opts.Seed != 0 {
		machineOptions = append(machineOptions, chip8.WithRandomSource(chip8.NewRandomSource(opts.Seed)))
	}

	e := &Emulator{
		logger:      logger,
		options:     opts,
		machine:     chip8.New(machineOptions...),
		breakpoints: set.New[uint16](),
		resumeAt:    -1,
	}
	for _, address := range opts.Breakpoints {
		e.breakpoints.Add(address)
	}
	return e, nil
}

// Load resets the machine and loads the program image.
func (e *Emulator) Load(program []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.machine.Reset()
	e.cycles = 0
	e.resumeAt = -1
	e.tone = false
	if err := e.machine.Load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	return nil
}

// SetBreakpoint stops execution before the instruction at the address runs.
func (e *Emulator) SetBreakpoint(address uint16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.breakpoints.Add(address)
}

// Step executes one instruction.
func (e *Emulator) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step()
}

// RunCycles executes up to n instructions and returns the number of
// instructions executed. Execution stops early on an error, a breakpoint
// or the instruction limit.
func (e *Emulator) RunCycles(n int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range n {
		if err := e.step(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Tick decrements the timers once and returns the tone event.
func (e *Emulator) Tick() chip8.ToneEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Tick()
}

// RunTicks applies n timer ticks.
func (e *Emulator) RunTicks(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for range n {
		e.machine.Tick()
	}
}

// PressKey marks a key as pressed.
func (e *Emulator) PressKey(key uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.machine.PressKey(key); err != nil {
		return fmt.Errorf("pressing key: %w", err)
	}
	return nil
}

// ReleaseKey marks a key as released.
func (e *Emulator) ReleaseKey(key uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.machine.ReleaseKey(key); err != nil {
		return fmt.Errorf("releasing key: %w", err)
	}
	return nil
}

// Frame returns a copy of the pixel grid.
func (e *Emulator) Frame() chip8.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Display().Frame()
}

// Cycles returns the number of instructions executed since the last load.
func (e *Emulator) Cycles() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycles
}

// State is a snapshot of the machine registers.
type State struct {
	V          [chip8.RegisterCount]byte
	I          uint16
	PC         uint16
	Stack      [chip8.StackSize]uint16
	SP         int
	DelayTimer byte
	SoundTimer byte
	Waiting    bool
}

// State returns a snapshot of the machine registers.
func (e *Emulator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.machine
	return State{
		V:          m.V,
		I:          m.I,
		PC:         m.PC,
		Stack:      m.Stack,
		SP:         m.SP,
		DelayTimer: m.DelayTimer,
		SoundTimer: m.SoundTimer,
		Waiting:    m.Waiting(),
	}
}

// step executes one instruction, the caller must hold the lock.
func (e *Emulator) step() error {
	m := e.machine
	pc := m.PC

	if e.options.MaxCycles > 0 && e.cycles >= e.options.MaxCycles {
		return fmt.Errorf("%w: %d", ErrCycleLimit, e.options.MaxCycles)
	}
	if e.breakpoints.Contains(pc) && e.resumeAt != int(pc) {
		e.resumeAt = int(pc)
		return fmt.Errorf("%w at $%04X", ErrBreakpoint, pc)
	}

	opcode, ins, err := m.Fetch()
	if err != nil {
		return err
	}
	if e.options.Trace {
		e.logger.Debug("Execute",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.String("instruction", ins.String()))
	}
	if err := m.Execute(ins); err != nil {
		return fmt.Errorf("executing '%s' at $%04X: %w", ins, pc, err)
	}

	e.resumeAt = -1
	e.cycles++
	return nil
}

// Run executes the loaded program at the configured instruction rate and
// ticks the timers at the timer rate until the context is canceled, an error
// occurs or the instruction limit is reached. A changed display is rendered
// after every timer tick.
func (e *Emulator) Run(ctx context.Context, host Host) error {
	e.logger.Debug("Starting execution",
		log.Int("cpu_rate", e.options.CPURate),
		log.Int("timer_rate", e.options.TimerRate))

	cpuTicker := time.NewTicker(cpuInterval(e.options.CPURate))
	defer cpuTicker.Stop()
	timerTicker := time.NewTicker(time.Second / time.Duration(e.options.TimerRate))
	defer timerTicker.Stop()

	start := time.Now()
	var scheduled uint64

	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("Execution stopped", log.Int("cycles", int(e.Cycles())))
			return nil

		case now := <-cpuTicker.C:
			if err := host.Poll(e); err != nil {
				return fmt.Errorf("polling input: %w", err)
			}

			due := uint64(now.Sub(start).Seconds() * float64(e.options.CPURate))
			if due <= scheduled {
				continue
			}
			batch := due - scheduled
			scheduled = due
			if limit := uint64(e.options.CPURate / maxCatchUp); batch > limit && limit > 0 {
				batch = limit
			}

			if _, err := e.RunCycles(int(batch)); err != nil {
				if errors.Is(err, ErrCycleLimit) {
					e.logger.Info("Instruction limit reached", log.Int("cycles", int(e.Cycles())))
					return e.present(host)
				}
				return err
			}

		case <-timerTicker.C:
			if err := e.tickHost(host); err != nil {
				return err
			}
		}
	}
}

// tickHost ticks the timers, forwards tone changes and renders a changed
// display.
func (e *Emulator) tickHost(host Host) error {
	e.mu.Lock()
	event := e.machine.Tick()
	active := e.machine.ToneActive()
	toneChanged := active != e.tone || event == chip8.ToneEnded
	e.tone = active
	e.mu.Unlock()

	if toneChanged {
		host.SetTone(active)
	}
	return e.present(host)
}

// present renders the display if it changed since the last render.
func (e *Emulator) present(host Host) error {
	e.mu.Lock()
	display := e.machine.Display()
	if !display.Dirty() {
		e.mu.Unlock()
		return nil
	}
	frame := display.Frame()
	display.ClearDirty()
	e.mu.Unlock()

	if err := host.Render(frame); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	return nil
}

func cpuInterval(rate int) time.Duration {
	interval := time.Second / time.Duration(rate)
	if interval < minCPUInterval {
		return minCPUInterval
	}
	return interval
}
