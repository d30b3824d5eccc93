package emulator

import "github.com/retroenv/chip8emu/internal/chip8"

// Display presents the pixel grid.
type Display interface {
	Render(frame chip8.Frame) error
}

// Audio plays the single tone of the machine.
type Audio interface {
	SetTone(active bool)
}

// KeySink receives key state changes from an input device.
type KeySink interface {
	PressKey(key uint8) error
	ReleaseKey(key uint8) error
}

// Input forwards pending key state changes to the sink.
type Input interface {
	Poll(sink KeySink) error
}

// Host bundles the external collaborators of a running machine.
type Host interface {
	Display
	Audio
	Input
}

// NopHost is a host without display, sound or input, used for headless runs.
type NopHost struct{}

// Render discards the frame.
func (NopHost) Render(chip8.Frame) error { return nil }

// SetTone ignores the tone state.
func (NopHost) SetTone(bool) {}

// Poll reports no key changes.
func (NopHost) Poll(KeySink) error { return nil }
