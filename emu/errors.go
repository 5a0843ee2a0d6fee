package emu

import (
	"errors"
	"fmt"
)

// Sentinel errors for the core's closed error taxonomy. Wrap these with
// fmt.Errorf("...: %w", ErrX) so callers can errors.Is/errors.As against
// the kind while still getting a message with the offending address or
// opcode.
var (
	// ErrNotLoaded is returned by Step/Goto when called before Load.
	ErrNotLoaded = errors.New("emu: not loaded")

	// ErrSegmentationFault is returned for a memory access outside guest
	// memory, or for a PC outside the text range.
	ErrSegmentationFault = errors.New("emu: segmentation fault")

	// ErrTextSegmentWrite is returned when a store targets the text range.
	ErrTextSegmentWrite = errors.New("emu: write to text segment")

	// ErrIllegalOpcode is returned when the opcode is not part of RV32I+M.
	ErrIllegalOpcode = errors.New("emu: illegal opcode")

	// ErrIllegalFunction is returned when the opcode is recognized but its
	// funct field is unknown or malformed.
	ErrIllegalFunction = errors.New("emu: illegal function")

	// ErrInvalidTarget is returned by Goto for a PC outside the text range.
	ErrInvalidTarget = errors.New("emu: invalid target")

	// ErrValueOverflow is raised by host-side parsing helpers (the CLI
	// flag parser); the core itself never returns it.
	ErrValueOverflow = errors.New("emu: value overflow")
)

func segfaultAt(addr uint32) error {
	return fmt.Errorf("%w: address 0x%08x", ErrSegmentationFault, addr)
}

func textWriteAt(addr uint32) error {
	return fmt.Errorf("%w: address 0x%08x", ErrTextSegmentWrite, addr)
}

func illegalOpcodeAt(pc, word uint32) error {
	return fmt.Errorf("%w: 0x%08x at PC=0x%08x", ErrIllegalOpcode, word, pc)
}

func illegalFunctionAt(pc uint32, funct uint16) error {
	return fmt.Errorf("%w: funct=0x%03x at PC=0x%08x", ErrIllegalFunction, funct, pc)
}

func illegalTargetAt(pc uint32) error {
	return fmt.Errorf("%w: 0x%08x", ErrInvalidTarget, pc)
}
