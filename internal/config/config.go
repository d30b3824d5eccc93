// Package config handles application configuration and setup
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// EmulatorOptions creates the execution options from the program options.
func EmulatorOptions(opts options.Program) (options.Emulator, error) {
	emuOpts := options.NewEmulator()
	emuOpts.CPURate = opts.CPURate
	emuOpts.MaxCycles = opts.MaxCycles
	emuOpts.Seed = opts.Seed
	emuOpts.Trace = opts.Debug

	breakpoints, err := ParseAddresses(opts.Breakpoints)
	if err != nil {
		return emuOpts, fmt.Errorf("parsing breakpoints: %w", err)
	}
	emuOpts.Breakpoints = breakpoints
	return emuOpts, nil
}

// ParseAddresses parses a comma separated list of memory addresses. Addresses
// are hexadecimal and can be prefixed with 0x or $.
func ParseAddresses(list string) ([]uint16, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	parts := strings.Split(list, ",")
	addresses := make([]uint16, 0, len(parts))
	for _, part := range parts {
		s := strings.ToLower(strings.TrimSpace(part))
		s = strings.TrimPrefix(s, "0x")
		s = strings.TrimPrefix(s, "$")

		value, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid address '%s': %w", part, err)
		}
		if value > chip8.MaxAddress {
			return nil, fmt.Errorf("address '%s' exceeds memory size", part)
		}
		addresses = append(addresses, uint16(value))
	}
	return addresses, nil
}
