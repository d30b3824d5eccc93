package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type keyRecorder struct {
	events []string
}

func (r *keyRecorder) PressKey(key uint8) error {
	r.events = append(r.events, "press "+string("0123456789ABCDEF"[key]))
	return nil
}

func (r *keyRecorder) ReleaseKey(key uint8) error {
	r.events = append(r.events, "release "+string("0123456789ABCDEF"[key]))
	return nil
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		input byte
		key   uint8
		ok    bool
	}{
		{'1', 0x1, true},
		{'4', 0xC, true},
		{'q', 0x4, true},
		{'R', 0xD, true},
		{'a', 0x7, true},
		{'f', 0xE, true},
		{'z', 0xA, true},
		{'x', 0x0, true},
		{'V', 0xF, true},
		{'5', 0, false},
		{' ', 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			key, ok := MapKey(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestFrameText(t *testing.T) {
	var frame chip8.Frame
	frame[0][0] = true
	frame[1][0] = true
	frame[0][1] = true
	frame[1][2] = true

	lines := strings.Split(FrameText(frame), "\r\n")
	assert.Len(t, lines, chip8.DisplayHeight/2+1)
	assert.True(t, strings.HasPrefix(lines[0], "█▀▄ "))
	assert.Equal(t, strings.Repeat(" ", chip8.DisplayWidth), lines[1])
	assert.Equal(t, "", lines[len(lines)-1])
}

func TestRenderer_SkipsUnchangedFrames(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	var frame chip8.Frame
	assert.NoError(t, r.Render(frame))
	assert.True(t, strings.HasPrefix(buf.String(), cursorHome))
	size := buf.Len()

	assert.NoError(t, r.Render(frame))
	assert.Equal(t, size, buf.Len())

	frame[5][5] = true
	assert.NoError(t, r.Render(frame))
	assert.Equal(t, cursorHome+FrameText(frame), buf.String()[size:])

	// changing the frame back is drawn again
	frame[5][5] = false
	written := buf.Len()
	assert.NoError(t, r.Render(frame))
	assert.Equal(t, size, buf.Len()-written)
}

func TestHost_Poll(t *testing.T) {
	now := time.Unix(1000, 0)
	h := newHost(log.NewTestLogger(t), strings.NewReader(""), &bytes.Buffer{}, 100*time.Millisecond, func() {})
	h.now = func() time.Time { return now }
	sink := &keyRecorder{}

	assert.False(t, h.handleInput([]byte("w")))
	assert.NoError(t, h.Poll(sink))

	// a key repeat keeps the key pressed
	now = now.Add(80 * time.Millisecond)
	assert.False(t, h.handleInput([]byte("W")))
	now = now.Add(80 * time.Millisecond)
	assert.NoError(t, h.Poll(sink))

	now = now.Add(100 * time.Millisecond)
	assert.NoError(t, h.Poll(sink))
	assert.NoError(t, h.Poll(sink))

	expected := []string{"press 5", "release 5"}
	if diff := cmp.Diff(expected, sink.events); diff != "" {
		t.Errorf("key events (-want, +got)\n%s", diff)
	}
}

func TestHost_Quit(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		quit  bool
	}{
		{"escape", []byte{keyEscape}, true},
		{"ctrl c", []byte{'q', keyCtrlC}, true},
		{"cursor key sequence", []byte{keyEscape, '[', 'A'}, false},
		{"regular keys", []byte("asdf"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quit := false
			h := newHost(log.NewTestLogger(t), nil, &bytes.Buffer{}, time.Second, func() { quit = true })

			assert.Equal(t, tt.quit, h.handleInput(tt.input))
			assert.Equal(t, tt.quit, quit)
		})
	}
}

func TestHost_ReadInput(t *testing.T) {
	quit := false
	h := newHost(log.NewTestLogger(t), strings.NewReader("1v"), &bytes.Buffer{}, time.Hour, func() { quit = true })

	h.readInput()
	assert.False(t, quit)

	sink := &keyRecorder{}
	assert.NoError(t, h.Poll(sink))
	expected := []string{"press 1", "press F"}
	if diff := cmp.Diff(expected, sink.events); diff != "" {
		t.Errorf("key events (-want, +got)\n%s", diff)
	}
}

func TestHost_Output(t *testing.T) {
	var buf bytes.Buffer
	h := newHost(log.NewTestLogger(t), nil, &buf, time.Second, func() {})

	h.SetTone(false)
	assert.Equal(t, 0, buf.Len())
	h.SetTone(true)
	assert.Equal(t, bell, buf.String())

	buf.Reset()
	assert.NoError(t, h.Render(chip8.Frame{}))
	assert.Contains(t, buf.String(), cursorHome)
}
