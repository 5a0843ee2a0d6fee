package emu

import "github.com/madenetwork/rv32isim/insts"

// RV32I branch funct3 codes.
const (
	fnBeq  = 0x0
	fnBne  = 0x1
	fnBlt  = 0x4
	fnBge  = 0x5
	fnBltu = 0x6
	fnBgeu = 0x7
)

// BranchUnit evaluates RV32I branch conditions. It never touches PC
// itself: RV32I branches compare two registers directly (there are no
// condition flags to consult), so the unit just reports whether the
// branch is taken and leaves applying the offset to the caller
// (CPU.Step).
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Evaluate reports whether a FormatB instruction's condition holds.
func (b *BranchUnit) Evaluate(pc uint32, in *insts.Instruction) (bool, error) {
	op1 := b.regFile.ReadReg(uint8(in.Rs1))
	op2 := b.regFile.ReadReg(uint8(in.Rs2))

	switch in.Funct {
	case fnBeq:
		return op1 == op2, nil
	case fnBne:
		return op1 != op2, nil
	case fnBlt:
		return int32(op1) < int32(op2), nil
	case fnBge:
		return int32(op1) >= int32(op2), nil
	case fnBltu:
		return op1 < op2, nil
	case fnBgeu:
		return op1 >= op2, nil
	default:
		return false, illegalFunctionAt(pc, in.Funct)
	}
}
