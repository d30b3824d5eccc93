package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/retroenv/chip8emu/internal/chip8"
)

const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// Renderer draws frames as text, two pixel rows per terminal line using
// half block characters.
type Renderer struct {
	w        io.Writer
	lastHash uint64
	rendered bool
}

// NewRenderer returns a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render draws the frame unless it equals the previously drawn frame.
func (r *Renderer) Render(frame chip8.Frame) error {
	hash := xxhash.Sum64(frame.Packed())
	if r.rendered && hash == r.lastHash {
		return nil
	}

	if _, err := io.WriteString(r.w, cursorHome+FrameText(frame)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	r.lastHash = hash
	r.rendered = true
	return nil
}

// FrameText returns the text representation of a frame. Lines end with a
// carriage return and line feed as the terminal is in raw mode.
func FrameText(frame chip8.Frame) string {
	var sb strings.Builder
	sb.Grow(chip8.DisplayHeight / 2 * (chip8.DisplayWidth*3 + 2))

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := range chip8.DisplayWidth {
			top, bottom := frame[y][x], frame[y+1][x]
			switch {
			case top && bottom:
				sb.WriteString("█")
			case top:
				sb.WriteString("▀")
			case bottom:
				sb.WriteString("▄")
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
