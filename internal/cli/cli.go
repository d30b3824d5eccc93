// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/chip8emu/internal/config"
	"github.com/retroenv/chip8emu/internal/options"
)

// ParseFlags parses command line flags and returns program and emulator options
func ParseFlags() (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, options.Emulator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Emulator{}, err
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}

	if err := validateOptions(opts); err != nil {
		return opts, options.Emulator{}, err
	}

	emuOpts, err := config.EmulatorOptions(opts)
	if err != nil {
		return opts, options.Emulator{}, fmt.Errorf("creating emulator options: %w", err)
	}
	return opts, emuOpts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8emu [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions checks option values and combinations
func validateOptions(opts options.Program) error {
	if opts.CPURate <= 0 {
		return fmt.Errorf("invalid cpu rate %d, must be greater than 0", opts.CPURate)
	}
	if opts.KeyHold <= 0 {
		return fmt.Errorf("invalid key hold time %s, must be greater than 0", opts.KeyHold)
	}
	if opts.Output != "" && !opts.Disassemble {
		return fmt.Errorf("output file %s can only be used with -disasm", opts.Output)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input program file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file for -disasm, printed on console if no name given")
	flags.StringVar(&opts.System, "s", "", "system of the program (chip8) - if not auto-detected from file extension")
	flags.BoolVar(&opts.Disassemble, "disasm", false, "write a disassembly listing of the program instead of running it")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal display and keyboard input")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging and instruction tracing")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.IntVar(&opts.CPURate, "cpu", options.DefaultCPURate, "number of instructions executed per second")
	flags.Uint64Var(&opts.MaxCycles, "cycles", 0, "stop after executing this number of instructions, 0 runs until interrupted")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the random number instruction, 0 uses a random seed")
	flags.DurationVar(&opts.KeyHold, "keyhold", options.DefaultKeyHold, "time that a key stays pressed after the terminal reported it")
	flags.StringVar(&opts.Breakpoints, "break", "", "comma separated list of addresses to stop execution at, for example 0x2A4,0x300")

	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output offsets in comments")
}
