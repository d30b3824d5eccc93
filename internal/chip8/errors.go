package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is matched by every DecodeError.
	ErrDecode = errors.New("unrecognized instruction")
	// ErrStackOverflow is returned by a call with all stack slots in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrOutOfBounds is matched by every AddressError.
	ErrOutOfBounds = errors.New("memory access out of bounds")
	// ErrLoadTooLarge is returned when a program image does not fit into program memory.
	ErrLoadTooLarge = errors.New("program image too large")
	// ErrInvalidKey is returned for key indexes outside 0x0-0xF.
	ErrInvalidKey = errors.New("invalid key")
)

// DecodeError is returned for an opcode that matches no known instruction pattern.
type DecodeError struct {
	Opcode uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: opcode $%04X", ErrDecode, e.Opcode)
}

// Unwrap returns ErrDecode.
func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// AddressError is returned when an access of Length bytes starting at Address
// reaches past the end of memory.
type AddressError struct {
	Address uint16
	Length  int
}

func (e *AddressError) Error() string {
	if e.Length <= 1 {
		return fmt.Sprintf("%s: address $%04X", ErrOutOfBounds, e.Address)
	}
	return fmt.Sprintf("%s: %d bytes at address $%04X", ErrOutOfBounds, e.Length, e.Address)
}

// Unwrap returns ErrOutOfBounds.
func (e *AddressError) Unwrap() error {
	return ErrOutOfBounds
}
