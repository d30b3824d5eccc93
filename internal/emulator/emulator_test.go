package emulator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// drawProgram draws the glyph 0 in the top left corner and loops forever.
var drawProgram = []byte{
	0x00, 0xE0, // cls
	0x60, 0x00, // ld V0, $00
	0xF0, 0x29, // ld F, V0
	0xD0, 0x05, // drw V0, V0, $5
	0x12, 0x08, // jp $208
}

type fakeHost struct {
	mu     sync.Mutex
	frames []chip8.Frame
	tones  []bool
	polls  int
	keys   []uint8
}

func (h *fakeHost) Render(frame chip8.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = append(h.frames, frame)
	return nil
}

func (h *fakeHost) SetTone(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tones = append(h.tones, active)
}

func (h *fakeHost) Poll(sink KeySink) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls++
	for _, key := range h.keys {
		if err := sink.PressKey(key); err != nil {
			return err
		}
	}
	h.keys = nil
	return nil
}

func newTestEmulator(t *testing.T, program []byte, modify func(*options.Emulator)) *Emulator {
	t.Helper()
	opts := options.NewEmulator()
	opts.CPURate = 1000
	if modify != nil {
		modify(&opts)
	}

	e, err := New(log.NewTestLogger(t), opts)
	assert.NoError(t, err)
	assert.NoError(t, e.Load(program))
	return e
}

func TestNew_InvalidRates(t *testing.T) {
	opts := options.NewEmulator()
	opts.CPURate = 0
	_, err := New(log.NewTestLogger(t), opts)
	assert.ErrorContains(t, err, "invalid cpu rate")

	opts = options.NewEmulator()
	opts.TimerRate = -1
	_, err = New(log.NewTestLogger(t), opts)
	assert.ErrorContains(t, err, "invalid timer rate")
}

func TestEmulator_RunCycles(t *testing.T) {
	e := newTestEmulator(t, drawProgram, nil)

	executed, err := e.RunCycles(4)
	assert.NoError(t, err)
	assert.Equal(t, 4, executed)
	assert.Equal(t, uint64(4), e.Cycles())

	frame := e.Frame()
	assert.True(t, frame[0][0])
	assert.True(t, frame[0][3])
	assert.False(t, frame[0][4])

	state := e.State()
	assert.Equal(t, uint16(0x208), state.PC)
	assert.Equal(t, chip8.GlyphAddress(0), state.I)
}

func TestEmulator_Load(t *testing.T) {
	e := newTestEmulator(t, drawProgram, nil)
	_, err := e.RunCycles(4)
	assert.NoError(t, err)

	assert.NoError(t, e.Load([]byte{0x12, 0x00}))
	assert.Equal(t, uint64(0), e.Cycles())
	assert.Equal(t, chip8.Frame{}, e.Frame())
	assert.Equal(t, uint16(chip8.ProgramStart), e.State().PC)

	err = e.Load(make([]byte, chip8.MaxProgramSize+1))
	assert.True(t, errors.Is(err, chip8.ErrLoadTooLarge))
}

func TestEmulator_CycleLimit(t *testing.T) {
	e := newTestEmulator(t, drawProgram, func(opts *options.Emulator) {
		opts.MaxCycles = 6
	})

	executed, err := e.RunCycles(10)
	assert.Equal(t, 6, executed)
	assert.True(t, errors.Is(err, ErrCycleLimit))
}

func TestEmulator_Breakpoint(t *testing.T) {
	e := newTestEmulator(t, drawProgram, func(opts *options.Emulator) {
		opts.Breakpoints = []uint16{0x204}
	})

	executed, err := e.RunCycles(10)
	assert.Equal(t, 2, executed)
	assert.True(t, errors.Is(err, ErrBreakpoint))
	assert.ErrorContains(t, err, "$0204")
	assert.Equal(t, uint16(0x204), e.State().PC)

	// continuing executes the instruction at the breakpoint
	assert.NoError(t, e.Step())
	assert.Equal(t, uint16(0x206), e.State().PC)

	e.SetBreakpoint(0x208)
	executed, err = e.RunCycles(10)
	assert.Equal(t, 1, executed)
	assert.True(t, errors.Is(err, ErrBreakpoint))

	// the loop returns to the breakpoint after one instruction
	executed, err = e.RunCycles(10)
	assert.Equal(t, 1, executed)
	assert.True(t, errors.Is(err, ErrBreakpoint))
}

func TestEmulator_StateSnapshot(t *testing.T) {
	randomProgram := []byte{
		0xC0, 0xFF, // rnd V0, $FF
		0x12, 0x00, // jp $200
	}
	seeded := func(opts *options.Emulator) { opts.Seed = 42 }

	run := func(e *Emulator, inspect bool) []byte {
		var values []byte
		for range 8 {
			_, err := e.RunCycles(2)
			assert.NoError(t, err)
			state := e.State()
			if inspect {
				state.V[0]++
				state.PC = 0
				assert.Equal(t, state.V[0]-1, e.State().V[0])
				assert.Equal(t, uint16(chip8.ProgramStart), e.State().PC)
			}
			values = append(values, e.State().V[0])
		}
		return values
	}

	inspected := run(newTestEmulator(t, randomProgram, seeded), true)
	plain := run(newTestEmulator(t, randomProgram, seeded), false)
	if diff := cmp.Diff(plain, inspected); diff != "" {
		t.Errorf("random values (-want, +got)\n%s", diff)
	}

	e := newTestEmulator(t, []byte{0xF3, 0x0A}, nil) // ld V3, K
	assert.NoError(t, e.Step())
	state := e.State()
	assert.True(t, state.Waiting)
	assert.Equal(t, uint16(chip8.ProgramStart), state.PC)
}

func TestEmulator_StepError(t *testing.T) {
	e := newTestEmulator(t, []byte{0x01, 0x23}, nil)

	err := e.Step()
	assert.True(t, errors.Is(err, chip8.ErrDecode))
	assert.Equal(t, uint64(0), e.Cycles())
}

func TestEmulator_Keys(t *testing.T) {
	e := newTestEmulator(t, []byte{0xF3, 0x0A}, nil) // ld V3, K

	assert.NoError(t, e.Step())
	assert.Equal(t, uint16(chip8.ProgramStart), e.State().PC)

	assert.NoError(t, e.PressKey(0x7))
	assert.NoError(t, e.Step())
	state := e.State()
	assert.Equal(t, byte(0x7), state.V[3])
	assert.Equal(t, uint16(chip8.ProgramStart+2), state.PC)

	assert.NoError(t, e.ReleaseKey(0x7))
	assert.True(t, errors.Is(e.PressKey(0x10), chip8.ErrInvalidKey))
	assert.True(t, errors.Is(e.ReleaseKey(0x10), chip8.ErrInvalidKey))
}

func TestEmulator_Ticks(t *testing.T) {
	program := []byte{
		0x60, 0x05, // ld V0, $05
		0xF0, 0x15, // ld DT, V0
		0xF0, 0x18, // ld ST, V0
	}
	e := newTestEmulator(t, program, nil)
	_, err := e.RunCycles(3)
	assert.NoError(t, err)

	assert.Equal(t, chip8.ToneActive, e.Tick())
	e.RunTicks(3)
	state := e.State()
	assert.Equal(t, byte(1), state.DelayTimer)
	assert.Equal(t, byte(1), state.SoundTimer)
	assert.Equal(t, chip8.ToneEnded, e.Tick())
	assert.Equal(t, uint16(chip8.ProgramStart+6), e.State().PC)
}

func TestEmulator_TickHost(t *testing.T) {
	program := []byte{
		0x60, 0x02, // ld V0, $02
		0xF0, 0x18, // ld ST, V0
	}
	e := newTestEmulator(t, program, nil)
	host := &fakeHost{}

	_, err := e.RunCycles(2)
	assert.NoError(t, err)

	for range 3 {
		assert.NoError(t, e.tickHost(host))
	}
	if diff := cmp.Diff([]bool{true, false}, host.tones); diff != "" {
		t.Errorf("tone changes (-want, +got)\n%s", diff)
	}
	assert.Empty(t, host.frames)
}

func TestEmulator_Run(t *testing.T) {
	e := newTestEmulator(t, drawProgram, func(opts *options.Emulator) {
		opts.MaxCycles = 20
	})
	host := &fakeHost{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, e.Run(ctx, host))
	assert.Equal(t, uint64(20), e.Cycles())
	assert.True(t, host.polls > 0)
	assert.NotEmpty(t, host.frames)

	last := host.frames[len(host.frames)-1]
	assert.True(t, last[0][0])
	assert.True(t, last[4][3])
}

func TestEmulator_RunCanceled(t *testing.T) {
	e := newTestEmulator(t, []byte{0x12, 0x00}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, e.Run(ctx, NopHost{}))
	assert.True(t, e.Cycles() > 0)
}

func TestEmulator_RunError(t *testing.T) {
	e := newTestEmulator(t, []byte{0x00, 0xEE}, nil) // ret with empty stack

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := e.Run(ctx, NopHost{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
}

func TestEmulator_RunInput(t *testing.T) {
	program := []byte{
		0xF1, 0x0A, // ld V1, K
		0x12, 0x02, // jp $202
	}
	e := newTestEmulator(t, program, func(opts *options.Emulator) {
		opts.MaxCycles = 10
	})
	host := &fakeHost{keys: []uint8{0xB}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, e.Run(ctx, host))
	assert.Equal(t, byte(0xB), e.State().V[1])
}

func TestEmulator_ConcurrentAccess(t *testing.T) {
	e := newTestEmulator(t, []byte{0x12, 0x00}, nil)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for range 100 {
			_, _ = e.RunCycles(10)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 100 {
			key := uint8(i % chip8.KeyCount)
			_ = e.PressKey(key)
			_ = e.ReleaseKey(key)
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			e.Tick()
			_ = e.Frame()
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(1000), e.Cycles())
}

func TestCPUInterval(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, cpuInterval(100))
	assert.Equal(t, time.Millisecond, cpuInterval(1000))
	assert.Equal(t, time.Millisecond, cpuInterval(100000))
}
