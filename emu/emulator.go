// Package emu provides a functional RV32I+M emulation core.
package emu

import (
	"github.com/madenetwork/rv32isim/insts"
)

// StepResult reports the outcome of a single CPU.Step call.
type StepResult struct {
	// PC is the program counter after the step.
	PC uint32
}

// CPU is the facade over the register file, memory, decoder and
// execution units: the single entry point a host uses to load a
// program image and drive it forward one instruction at a time.
type CPU struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	loaded           bool
	instructionCount uint64
}

// NewCPU creates an unloaded CPU. Call Load before Step or Goto.
func NewCPU() *CPU {
	return &CPU{
		regFile: &RegFile{},
		decoder: insts.NewDecoder(),
	}
}

// LoadSegment is one contiguous range of initial bytes a host wants
// copied into guest memory before execution begins, e.g. one ELF
// PT_LOAD segment.
type LoadSegment struct {
	Addr uint32
	Data []byte
}

// Load allocates a fresh memSize-byte memory, copies each segment's
// bytes into it, declares the [textStart, textEnd) executable range,
// and resets the register file to (pc0, sp0).
//
// Segment copies bypass the text-write protection that guest store
// instructions are subject to: that protection exists to keep a
// running program from overwriting its own code, not to stop the host
// from placing the program there in the first place.
func (c *CPU) Load(segments []LoadSegment, memSize, textStart, textEnd, pc0, sp0 uint32) error {
	mem := NewMemory(memSize)
	for _, seg := range segments {
		if uint64(seg.Addr)+uint64(len(seg.Data)) > uint64(memSize) {
			return segfaultAt(seg.Addr)
		}
		copy(mem.buf[seg.Addr:], seg.Data)
	}
	mem.SetTextRange(textStart, textEnd)

	c.memory = mem
	c.alu = NewALU(c.regFile)
	c.lsu = NewLoadStoreUnit(c.regFile, mem)
	c.branchUnit = NewBranchUnit(c.regFile)
	c.instructionCount = 0
	c.loaded = true

	c.regFile.Reset(pc0, sp0)
	return nil
}

// Reset reinitializes the register file to (pc0, sp0) without
// reloading or clearing memory. Load must have been called first.
func (c *CPU) Reset(pc0, sp0 uint32) error {
	if !c.loaded {
		return ErrNotLoaded
	}
	c.regFile.Reset(pc0, sp0)
	c.instructionCount = 0
	return nil
}

// Goto sets PC directly, e.g. for a host wiring up an entry point that
// differs from the load-time default. The target must fall inside the
// declared text range and be 4-byte aligned; otherwise ErrInvalidTarget.
func (c *CPU) Goto(pc uint32) error {
	if !c.loaded {
		return ErrNotLoaded
	}
	if pc%4 != 0 || !c.memory.InText(pc) {
		return illegalTargetAt(pc)
	}
	c.regFile.PC = pc
	return nil
}

// Step fetches, decodes and executes the instruction at the current
// PC, then moves PC to the next instruction.
//
// Branches and jumps compute their destination directly rather than
// relying on a separate "PC-4, then +4" adjustment: BranchUnit reports
// whether a branch is taken, the branch and jump cases below compute
// the actual target, and Step simply installs whichever value —
// fallthrough (pc+4) or a taken branch/jump target — applies.
func (c *CPU) Step() (StepResult, error) {
	if !c.loaded {
		return StepResult{}, ErrNotLoaded
	}

	pc := c.regFile.PC
	if !c.memory.InText(pc) {
		return StepResult{}, segfaultAt(pc)
	}

	word, err := c.memory.ReadU32(pc)
	if err != nil {
		return StepResult{}, err
	}

	in, err := c.decoder.Decode(word)
	if err != nil {
		return StepResult{}, illegalOpcodeAt(pc, word)
	}

	nextPC := pc + 4

	switch in.Format {
	case insts.FormatR:
		if err := c.alu.ExecuteR(pc, in); err != nil {
			return StepResult{}, err
		}

	case insts.FormatI:
		switch in.Opcode {
		case insts.OpcodeLoad:
			if err := c.lsu.Load(pc, in); err != nil {
				return StepResult{}, err
			}
		case insts.OpcodeJALR:
			if in.Funct != 0 {
				return StepResult{}, illegalFunctionAt(pc, in.Funct)
			}
			// Read rs1 before writing rd: they may name the same
			// register, and the link value must come from the
			// pre-jump contents of rs1.
			base := c.regFile.ReadReg(uint8(in.Rs1))
			target := (base + in.Imm) &^ uint32(1)
			c.regFile.WriteReg(uint8(in.Rd), pc+4)
			nextPC = target
		default:
			if err := c.alu.ExecuteI(pc, in); err != nil {
				return StepResult{}, err
			}
		}

	case insts.FormatS:
		if err := c.lsu.Store(pc, in); err != nil {
			return StepResult{}, err
		}

	case insts.FormatB:
		taken, err := c.branchUnit.Evaluate(pc, in)
		if err != nil {
			return StepResult{}, err
		}
		if taken {
			nextPC = pc + in.Imm
		}

	case insts.FormatU:
		value := in.Imm << 12
		if in.Opcode == insts.OpcodeAUIPC {
			value += pc
		}
		c.regFile.WriteReg(uint8(in.Rd), value)

	case insts.FormatJ:
		c.regFile.WriteReg(uint8(in.Rd), pc+4)
		nextPC = pc + in.Imm

	case insts.FormatSystem, insts.FormatFence:
		// ECALL, EBREAK and FENCE are no-ops: no syscall ABI, no
		// traps, no memory ordering model in scope.

	default:
		return StepResult{}, illegalOpcodeAt(pc, word)
	}

	c.regFile.PC = nextPC
	c.instructionCount++
	return StepResult{PC: c.regFile.PC}, nil
}

// PC returns the current program counter.
func (c *CPU) PC() uint32 {
	return c.regFile.PC
}

// Register returns the current value of register i (0-31). Register 0
// always reads as 0.
func (c *CPU) Register(i uint8) uint32 {
	return c.regFile.ReadReg(i)
}

// Registers returns a snapshot of all 32 registers.
func (c *CPU) Registers() [32]uint32 {
	return c.regFile.X
}

// InstructionCount returns the number of instructions executed since
// the last Load or Reset.
func (c *CPU) InstructionCount() uint64 {
	return c.instructionCount
}

// Memory exposes the loaded guest memory for host-side inspection
// (e.g. polling the video port). It is nil until Load has been called.
func (c *CPU) Memory() *Memory {
	return c.memory
}
