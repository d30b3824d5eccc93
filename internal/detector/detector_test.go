package detector

import (
	"testing"

	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name       string
		systemOpt  string
		inputFile  string
		wantSystem arch.System
	}{
		{
			name:       "explicit CHIP8 system option",
			systemOpt:  "chip8",
			inputFile:  "game.nes",
			wantSystem: arch.CHIP8System,
		},
		{
			name:       "explicit NES system option",
			systemOpt:  "nes",
			inputFile:  "pong.ch8",
			wantSystem: arch.NES,
		},
		{
			name:       "detect from .ch8 extension",
			inputFile:  "pong.ch8",
			wantSystem: arch.CHIP8System,
		},
		{
			name:       "detect from .nes extension",
			inputFile:  "game.nes",
			wantSystem: arch.NES,
		},
		{
			name:       "unknown extension defaults to CHIP8",
			inputFile:  "game.bin",
			wantSystem: arch.CHIP8System,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{
				Parameters: options.Parameters{Input: tt.inputFile},
				Flags:      options.Flags{System: tt.systemOpt},
			}

			got := d.Detect(opts)
			assert.Equal(t, tt.wantSystem, got)
		})
	}
}

func TestDetectFromFile(t *testing.T) {
	d := New(log.NewTestLogger(t))

	tests := []struct {
		filename   string
		wantSystem arch.System
	}{
		{"pong.ch8", arch.CHIP8System},
		{"TETRIS.C8", arch.CHIP8System},
		{"game.rom", arch.CHIP8System},
		{"game", arch.CHIP8System},
		{"games.zip", arch.CHIP8System},
		{"games.7z", arch.CHIP8System},
		{"pong.ch8.gz", arch.CHIP8System},
		{"ZELDA.NES", arch.NES},
		{"zelda.nes.gz", arch.NES},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.wantSystem, d.detectFromFile(tt.filename))
		})
	}
}

func TestFormat(t *testing.T) {
	d := New(log.NewTestLogger(t))

	tests := []struct {
		filename string
		want     Format
	}{
		{"pong.ch8", Raw},
		{"game", Raw},
		{"pong.ch8.gz", Gzip},
		{"GAMES.ZIP", Zip},
		{"games.7z", SevenZip},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Format(tt.filename))
		})
	}

	assert.Equal(t, "7z", SevenZip.String())
	assert.Equal(t, "unknown", Format(42).String())
}
