// Package pipeline orchestrates the load, disassemble and run workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/chip8emu/internal/detector"
	"github.com/retroenv/chip8emu/internal/disasm"
	"github.com/retroenv/chip8emu/internal/emulator"
	"github.com/retroenv/chip8emu/internal/loader"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/chip8emu/internal/terminal"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// HostFactory creates the host for a program run. The returned stop function
// releases the host and is called when the run ends.
type HostFactory func(opts options.Program, cancel context.CancelFunc) (emulator.Host, func(), error)

// Pipeline orchestrates the complete workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	newHost  HostFactory
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	p := &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
	p.newHost = p.createHost
	return p
}

// Execute runs the complete pipeline for the input file of the options.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, emuOpts options.Emulator, writer io.Writer) error {
	// Detect system architecture
	system := p.detector.Detect(opts)
	if system != arch.CHIP8System {
		return fmt.Errorf("unsupported system '%s'", system)
	}

	format := p.detector.Format(opts.Input)
	image, err := p.loader.Load(opts.Input, format)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	return p.ExecuteWithImage(ctx, image, opts, emuOpts, writer)
}

// ExecuteWithImage runs the pipeline with a pre-loaded program image.
// This is useful for testing and programmatic usage where the program is already in memory.
func (p *Pipeline) ExecuteWithImage(ctx context.Context, image *loader.Image, opts options.Program,
	emuOpts options.Emulator, writer io.Writer) error {

	p.printInfo(opts, image)

	if opts.Disassemble {
		if err := p.disassemble(image, opts, writer); err != nil {
			return fmt.Errorf("disassembling: %w", err)
		}
		return nil
	}

	if err := p.run(ctx, image, opts, emuOpts); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func (p *Pipeline) disassemble(image *loader.Image, opts options.Program, writer io.Writer) error {
	disasmOpts := disasm.Options{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
		Hash:           image.Hash,
	}

	dis, err := disasm.New(p.logger, image.Data, disasmOpts)
	if err != nil {
		return fmt.Errorf("creating disassembler: %w", err)
	}
	if err := dis.Process(writer); err != nil {
		return fmt.Errorf("processing disassembly: %w", err)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, image *loader.Image, opts options.Program, emuOpts options.Emulator) error {
	emu, err := emulator.New(p.logger, emuOpts)
	if err != nil {
		return fmt.Errorf("creating emulator: %w", err)
	}
	if err := emu.Load(image.Data); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	host, stop, err := p.newHost(opts, cancel)
	if err != nil {
		return fmt.Errorf("creating host: %w", err)
	}
	err = emu.Run(ctx, host)
	stop()

	switch {
	case errors.Is(err, emulator.ErrBreakpoint):
		p.printState(emu, err)
		return nil
	case err != nil:
		p.printState(emu, err)
		return err
	}

	p.logger.Info("Execution finished", log.Int("cycles", int(emu.Cycles())))
	return nil
}

// createHost creates a terminal host or a host without input and output for
// headless runs.
func (p *Pipeline) createHost(opts options.Program, cancel context.CancelFunc) (emulator.Host, func(), error) {
	if opts.Headless {
		return emulator.NopHost{}, func() {}, nil
	}

	host := terminal.New(p.logger, opts.KeyHold, cancel)
	if err := host.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting terminal: %w", err)
	}
	return host, host.Stop, nil
}

// printState logs the machine state at the point where the execution stopped.
func (p *Pipeline) printState(emu *emulator.Emulator, reason error) {
	state := emu.State()
	p.logger.Info("Execution stopped",
		log.String("reason", reason.Error()),
		log.Hex("pc", state.PC),
		log.Hex("i", state.I),
		log.Int("sp", state.SP),
		log.String("v", fmt.Sprintf("% X", state.V[:])),
		log.Int("cycles", int(emu.Cycles())))
}

// printInfo prints information about the program being processed.
func (p *Pipeline) printInfo(opts options.Program, image *loader.Image) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing CHIP-8 program",
		log.String("file", opts.Input),
		log.String("name", image.Name),
		log.Int("size", len(image.Data)),
		log.String("xxhash", fmt.Sprintf("%016x", image.Hash)),
	)
}
