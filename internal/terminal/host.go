// Package terminal implements an emulator host on a text terminal: the
// display is drawn with block characters, keys are read from stdin in raw
// mode and the tone rings the terminal bell.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/emulator"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not connected to a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

const bell = "\a"

// Host implements emulator.Host on the process terminal.
//
// Terminals only report key presses, repeated while a key is held down. A
// key is therefore treated as released when no byte for it arrived within
// the hold time.
type Host struct {
	logger   *log.Logger
	in       io.Reader
	out      io.Writer
	renderer *Renderer
	keyHold  time.Duration
	quit     func()
	now      func() time.Time

	mu       sync.Mutex
	lastSeen [chip8.KeyCount]time.Time
	pressed  [chip8.KeyCount]bool

	stopCh   chan struct{}
	stopped  sync.Once
	fd       int
	oldState *term.State
}

var _ emulator.Host = (*Host)(nil)

// New creates a terminal host on stdin and stdout. The quit function is
// called when Escape or Ctrl-C is pressed.
func New(logger *log.Logger, keyHold time.Duration, quit func()) *Host {
	h := newHost(logger, os.Stdin, os.Stdout, keyHold, quit)
	h.fd = int(os.Stdin.Fd())
	return h
}

func newHost(logger *log.Logger, in io.Reader, out io.Writer, keyHold time.Duration, quit func()) *Host {
	return &Host{
		logger:   logger,
		in:       in,
		out:      out,
		renderer: NewRenderer(out),
		keyHold:  keyHold,
		quit:     quit,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start switches the terminal to raw mode, clears the screen and begins
// reading keys in a goroutine. Call Stop to restore the terminal.
func (h *Host) Start() error {
	if !term.IsTerminal(h.fd) {
		return ErrNotTerminal
	}

	width, height, err := term.GetSize(h.fd)
	if err == nil && (width < chip8.DisplayWidth || height < chip8.DisplayHeight/2) {
		h.logger.Warn("Terminal is smaller than the display",
			log.Int("width", width),
			log.Int("height", height))
	}

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		return fmt.Errorf("setting terminal raw mode: %w", err)
	}
	h.oldState = oldState

	if _, err := io.WriteString(h.out, clearScreen+hideCursor); err != nil {
		h.restore()
		return fmt.Errorf("clearing screen: %w", err)
	}

	go h.readInput()
	return nil
}

// Stop ends the key processing and restores the terminal state. The reader
// goroutine stays blocked in its read until the process exits.
func (h *Host) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
		_, _ = io.WriteString(h.out, showCursor+"\r\n")
		h.restore()
	})
}

func (h *Host) restore() {
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
	}
}

// Render draws the frame if it changed.
func (h *Host) Render(frame chip8.Frame) error {
	if err := h.renderer.Render(frame); err != nil {
		return fmt.Errorf("rendering to terminal: %w", err)
	}
	return nil
}

// SetTone rings the bell when the tone starts.
func (h *Host) SetTone(active bool) {
	if active {
		_, _ = io.WriteString(h.out, bell)
	}
}

// Poll presses the keys that were typed since the last poll and releases the
// keys whose hold time expired.
func (h *Host) Poll(sink emulator.KeySink) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for key := range chip8.KeyCount {
		seen := h.lastSeen[key]
		if seen.IsZero() {
			continue
		}

		held := now.Sub(seen) < h.keyHold
		switch {
		case held && !h.pressed[key]:
			if err := sink.PressKey(uint8(key)); err != nil {
				return fmt.Errorf("pressing key %X: %w", key, err)
			}
			h.pressed[key] = true

		case !held:
			if h.pressed[key] {
				if err := sink.ReleaseKey(uint8(key)); err != nil {
					return fmt.Errorf("releasing key %X: %w", key, err)
				}
			}
			h.pressed[key] = false
			h.lastSeen[key] = time.Time{}
		}
	}
	return nil
}

func (h *Host) readInput() {
	buf := make([]byte, 16)
	for {
		n, err := h.in.Read(buf)
		select {
		case <-h.stopCh:
			return
		default:
		}

		if n > 0 && h.handleInput(buf[:n]) {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Error("Reading terminal input failed", log.Err(err))
			}
			return
		}
	}
}

// handleInput processes one chunk of terminal input and reports whether the
// user requested to quit.
func (h *Host) handleInput(data []byte) bool {
	// escape sequences of cursor and function keys start with Escape
	if data[0] == keyEscape && len(data) > 1 {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for _, b := range data {
		if b == keyEscape || b == keyCtrlC {
			h.quit()
			return true
		}
		if key, ok := MapKey(b); ok {
			h.lastSeen[key] = now
		}
	}
	return false
}
