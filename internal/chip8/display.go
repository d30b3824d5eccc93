package chip8

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Frame is a snapshot of the pixel grid, indexed [y][x].
type Frame [DisplayHeight][DisplayWidth]bool

// Packed returns the frame with 8 pixels per byte, most significant bit first,
// row by row.
func (f *Frame) Packed() []byte {
	packed := make([]byte, 0, DisplayWidth*DisplayHeight/8)
	for y := range f {
		for x := 0; x < DisplayWidth; x += 8 {
			var b byte
			for bit := range 8 {
				if f[y][x+bit] {
					b |= 0x80 >> bit
				}
			}
			packed = append(packed, b)
		}
	}
	return packed
}

// Display is the monochrome pixel grid. Renderers only read it, the grid is
// changed exclusively by the clear and draw instructions.
type Display struct {
	frame Frame
	dirty bool
}

// Width returns the grid width in pixels.
func (d *Display) Width() int {
	return DisplayWidth
}

// Height returns the grid height in pixels.
func (d *Display) Height() int {
	return DisplayHeight
}

// Pixel reports whether the pixel at x, y is set. Coordinates outside the grid
// report false.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return d.frame[y][x]
}

// Frame returns a copy of the current pixel grid.
func (d *Display) Frame() Frame {
	return d.frame
}

// Dirty reports whether the grid changed since the last ClearDirty call.
func (d *Display) Dirty() bool {
	return d.dirty
}

// ClearDirty acknowledges that the current grid has been rendered.
func (d *Display) ClearDirty() {
	d.dirty = false
}

func (d *Display) clear() {
	d.frame = Frame{}
	d.dirty = true
}

// drawSprite XORs the sprite rows onto the grid with its top left corner at
// x, y. Coordinates wrap on both axes. It returns whether any set pixel was
// turned off.
func (d *Display) drawSprite(x, y int, sprite []byte) bool {
	collision := false
	for row, bits := range sprite {
		py := (y + row) % DisplayHeight
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (x + col) % DisplayWidth
			if d.frame[py][px] {
				collision = true
			}
			d.frame[py][px] = !d.frame[py][px]
		}
	}
	d.dirty = true
	return collision
}
