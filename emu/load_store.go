package emu

import "github.com/madenetwork/rv32isim/insts"

// RV32I load/store funct3 codes (shared numbering between LOAD and
// STORE opcodes; each opcode only defines a subset).
const (
	fnByte      = 0x0 // LB / SB
	fnHalf      = 0x1 // LH / SH
	fnWord      = 0x2 // LW / SW
	fnByteUnsig = 0x4 // LBU
	fnHalfUnsig = 0x5 // LHU
)

// LoadStoreUnit implements RV32I loads and stores. Both compute their
// effective address as rs1 + the sign-extended immediate of the decoded
// instruction.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, memory: memory}
}

// Load performs a FormatI load instruction: Rd = mem[Rs1 + imm], with
// width and signedness chosen by in.Funct.
func (lsu *LoadStoreUnit) Load(pc uint32, in *insts.Instruction) error {
	addr := lsu.regFile.ReadReg(uint8(in.Rs1)) + in.Imm

	var value uint32
	var err error
	switch in.Funct {
	case fnByte:
		value, err = lsu.memory.ReadI8(addr)
	case fnHalf:
		value, err = lsu.memory.ReadI16(addr)
	case fnWord:
		value, err = lsu.memory.ReadU32(addr)
	case fnByteUnsig:
		var b uint8
		b, err = lsu.memory.ReadU8(addr)
		value = uint32(b)
	case fnHalfUnsig:
		var h uint16
		h, err = lsu.memory.ReadU16(addr)
		value = uint32(h)
	default:
		return illegalFunctionAt(pc, in.Funct)
	}
	if err != nil {
		return err
	}

	lsu.regFile.WriteReg(uint8(in.Rd), value)
	return nil
}

// Store performs a FormatS store instruction: mem[Rs1 + imm] = Rs2,
// truncated to the width chosen by in.Funct.
func (lsu *LoadStoreUnit) Store(pc uint32, in *insts.Instruction) error {
	addr := lsu.regFile.ReadReg(uint8(in.Rs1)) + in.Imm
	value := lsu.regFile.ReadReg(uint8(in.Rs2))

	switch in.Funct {
	case fnByte:
		return lsu.memory.WriteU8(addr, uint8(value))
	case fnHalf:
		return lsu.memory.WriteU16(addr, uint16(value))
	case fnWord:
		return lsu.memory.WriteU32(addr, value)
	default:
		return illegalFunctionAt(pc, in.Funct)
	}
}
