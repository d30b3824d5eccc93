// Package disasm writes assembly listings of CHIP-8 programs.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Options defines options to control the listing output.
type Options struct {
	HexComments    bool   // output opcode bytes as hex values in comments
	OffsetComments bool   // output memory addresses in comments
	Hash           uint64 // program fingerprint written to the header, omitted if zero
}

// Disasm implements a linear disassembler for a program loaded at
// chip8.ProgramStart.
type Disasm struct {
	logger  *log.Logger
	options Options
	program []byte

	branchDestinations set.Set[uint16] // set of all addresses that are jumped to or called
	dataReferences     set.Set[uint16] // set of all addresses loaded into the index register
}

// New creates a new disassembler for the given program image.
func New(logger *log.Logger, program []byte, options Options) (*Disasm, error) {
	if len(program) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", chip8.ErrLoadTooLarge, len(program), chip8.MaxProgramSize)
	}
	return &Disasm{
		logger:             logger,
		options:            options,
		program:            program,
		branchDestinations: set.New[uint16](),
		dataReferences:     set.New[uint16](),
	}, nil
}

// Process writes the listing to the writer.
func (dis *Disasm) Process(w io.Writer) error {
	dis.logger.Debug("Disassembling program", log.Int("size", len(dis.program)))
	dis.collectReferences()

	if err := dis.writeHeader(w); err != nil {
		return err
	}

	for offset := 0; offset < len(dis.program); offset += chip8.InstructionSize {
		address := uint16(chip8.ProgramStart + offset)
		if err := dis.writeLabel(w, address); err != nil {
			return err
		}

		if offset+1 >= len(dis.program) {
			line := fmt.Sprintf(".byte $%02x", dis.program[offset])
			if err := dis.writeLine(w, address, line, dis.program[offset:]); err != nil {
				return err
			}
			break
		}

		data := dis.program[offset : offset+chip8.InstructionSize]
		if err := dis.writeLine(w, address, dis.code(data), data); err != nil {
			return err
		}
	}
	return nil
}

// collectReferences decodes all words to find the targets of jumps, calls
// and index register loads.
func (dis *Disasm) collectReferences() {
	for offset := 0; offset+1 < len(dis.program); offset += chip8.InstructionSize {
		ins, err := chip8.Decode(word(dis.program[offset:]))
		if err != nil {
			continue
		}

		switch i := ins.(type) {
		case chip8.Jump:
			dis.branchDestinations.Add(i.Address)
		case chip8.Call:
			dis.branchDestinations.Add(i.Address)
		case chip8.JumpPlusZero:
			dis.branchDestinations.Add(i.Address)
		case chip8.LoadIndex:
			dis.dataReferences.Add(i.Address)
		}
	}
}

// code returns the assembly text for an instruction word, words that do not
// decode are written as data.
func (dis *Disasm) code(data []byte) string {
	ins, err := chip8.Decode(word(data))
	if err != nil {
		return fmt.Sprintf(".byte $%02x, $%02x", data[0], data[1])
	}
	return ins.String()
}

// Label returns the label name for an address or an empty string if the
// address is not referenced.
func (dis *Disasm) Label(address uint16) string {
	switch {
	case address == chip8.ProgramStart:
		return "Start"
	case dis.branchDestinations.Contains(address):
		return fmt.Sprintf("_label_%04x", address)
	case dis.dataReferences.Contains(address):
		return fmt.Sprintf("_data_%04x", address)
	default:
		return ""
	}
}

func (dis *Disasm) writeHeader(w io.Writer) error {
	if dis.options.Hash != 0 {
		if _, err := fmt.Fprintf(w, "; Program xxhash64: %016x\n", dis.options.Hash); err != nil {
			return fmt.Errorf("writing program hash: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "; Program size: %d bytes\n", len(dis.program)); err != nil {
		return fmt.Errorf("writing program size: %w", err)
	}
	if _, err := fmt.Fprintf(w, "; Code base address: $%04x\n", chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	return nil
}

func (dis *Disasm) writeLabel(w io.Writer, address uint16) error {
	label := dis.Label(address)
	if label == "" {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s:\n", label); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (dis *Disasm) writeLine(w io.Writer, address uint16, code string, data []byte) error {
	var comment []string
	if dis.options.OffsetComments {
		comment = append(comment, fmt.Sprintf("$%04X", address))
	}
	if dis.options.HexComments {
		hex := make([]string, 0, len(data))
		for _, b := range data {
			hex = append(hex, fmt.Sprintf("%02X", b))
		}
		comment = append(comment, strings.Join(hex, " "))
	}

	var err error
	if len(comment) == 0 {
		_, err = fmt.Fprintf(w, "  %s\n", code)
	} else {
		_, err = fmt.Fprintf(w, "  %-24s ; %s\n", code, strings.Join(comment, " "))
	}
	if err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}
	return nil
}

func word(data []byte) uint16 {
	return uint16(data[0])<<8 | uint16(data[1])
}
