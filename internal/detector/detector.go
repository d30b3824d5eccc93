// Package detector handles system architecture and file format detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// Format is the container format of a program file.
type Format int

// Supported container formats.
const (
	Raw Format = iota
	Gzip
	Zip
	SevenZip
)

func (f Format) String() string {
	switch f {
	case Raw:
		return "raw"
	case Gzip:
		return "gzip"
	case Zip:
		return "zip"
	case SevenZip:
		return "7z"
	default:
		return "unknown"
	}
}

// Detector handles system architecture detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new system detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the system architecture from options or file auto-detection.
// An explicitly passed system takes precedence over the file extension.
func (d *Detector) Detect(opts options.Program) arch.System {
	system, _ := arch.SystemFromString(opts.System)
	if system == "" {
		system = d.detectFromFile(opts.Input)
		d.logger.Debug("Auto-detected system",
			log.Stringer("system", system),
			log.String("file", opts.Input))
	}
	return system
}

// Format returns the container format of the file based on its extension.
func (d *Detector) Format(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		return Gzip
	case ".zip":
		return Zip
	case ".7z":
		return SevenZip
	default:
		return Raw
	}
}

// detectFromFile determines the system type based on file extension.
// Gzip files are named after the compressed file, so the inner extension
// decides.
func (d *Detector) detectFromFile(filename string) arch.System {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".gz" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(filename, filepath.Ext(filename))))
	}

	switch ext {
	case ".nes":
		return arch.NES
	default:
		// .ch8, .c8, .rom and archives without a hint are CHIP-8 programs
		return arch.CHIP8System
	}
}
