// Package loader provides ELF binary loading for RV32I guest images.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackReserve is the amount of guest memory, above the highest
// loaded segment, reserved for the stack when a caller doesn't pick an
// explicit stack pointer.
const DefaultStackReserve = 64 * 1024

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments from the ELF file, in
	// file order.
	Segments []Segment
	// InitialSP is a suggested initial stack pointer: DefaultStackReserve
	// bytes above the highest byte of the highest segment.
	InitialSP uint32
	// TextStart and TextEnd give the half-open range covering every
	// PF_X segment, the declared text range the guest memory's write
	// protection is keyed on.
	TextStart uint32
	TextEnd   uint32
}

// Load parses an RV32I ELF binary and returns a Program ready for
// copying into guest memory.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("loader: not a 32-bit ELF file")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("loader: not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{EntryPoint: uint32(f.Entry)}

	var highWater uint32
	textStart, textEnd := uint32(0), uint32(0)
	haveText := false

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("loader: read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("loader: short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		vaddr := uint32(phdr.Vaddr)
		memsz := uint32(phdr.Memsz)

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: vaddr,
			Data:     data,
			MemSize:  memsz,
			Flags:    flags,
		})

		if end := vaddr + memsz; end > highWater {
			highWater = end
		}

		if flags&SegmentFlagExecute != 0 {
			if !haveText || vaddr < textStart {
				textStart = vaddr
			}
			if end := vaddr + memsz; end > textEnd {
				textEnd = end
			}
			haveText = true
		}
	}

	prog.TextStart, prog.TextEnd = textStart, textEnd
	prog.InitialSP = highWater + DefaultStackReserve
	return prog, nil
}
