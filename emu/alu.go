package emu

import "github.com/madenetwork/rv32isim/insts"

// ALU implements the RV32I register-register and register-immediate
// arithmetic/logic operations, plus the M-extension's multiply and
// divide family. It reads its operands from and writes its result to
// the register file, and never touches memory or the program counter.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Combined (funct7<<3)|funct3 codes for FormatR and for the shift
// variants of FormatI, matching what insts.Decoder produces in
// Instruction.Funct.
const (
	fnAdd    = 0x00<<3 | 0x0
	fnSub    = 0x20<<3 | 0x0
	fnSll    = 0x00<<3 | 0x1
	fnSlt    = 0x00<<3 | 0x2
	fnSltu   = 0x00<<3 | 0x3
	fnXor    = 0x00<<3 | 0x4
	fnSrl    = 0x00<<3 | 0x5
	fnSra    = 0x20<<3 | 0x5
	fnOr     = 0x00<<3 | 0x6
	fnAnd    = 0x00<<3 | 0x7
	fnMul    = 0x01<<3 | 0x0
	fnMulh   = 0x01<<3 | 0x1
	fnMulhsu = 0x01<<3 | 0x2
	fnMulhu  = 0x01<<3 | 0x3
	fnDiv    = 0x01<<3 | 0x4
	fnDivu   = 0x01<<3 | 0x5
	fnRem    = 0x01<<3 | 0x6
	fnRemu   = 0x01<<3 | 0x7
)

// Plain funct3 codes for the non-shift FormatI arithmetic ops.
const (
	fnAddi  = 0x0
	fnSlti  = 0x2
	fnSltiu = 0x3
	fnXori  = 0x4
	fnOri   = 0x6
	fnAndi  = 0x7
)

// ExecuteR performs a FormatR instruction: Rd = Rs1 op Rs2. It returns
// ErrIllegalFunction if in.Funct does not name a known R-type or
// M-extension operation.
func (a *ALU) ExecuteR(pc uint32, in *insts.Instruction) error {
	op1 := a.regFile.ReadReg(uint8(in.Rs1))
	op2 := a.regFile.ReadReg(uint8(in.Rs2))

	var result uint32
	switch in.Funct {
	case fnAdd:
		result = op1 + op2
	case fnSub:
		result = op1 - op2
	case fnSll:
		result = op1 << (op2 & 0x1F)
	case fnSlt:
		result = boolToWord(int32(op1) < int32(op2))
	case fnSltu:
		result = boolToWord(op1 < op2)
	case fnXor:
		result = op1 ^ op2
	case fnSrl:
		result = op1 >> (op2 & 0x1F)
	case fnSra:
		result = uint32(int32(op1) >> (op2 & 0x1F))
	case fnOr:
		result = op1 | op2
	case fnAnd:
		result = op1 & op2
	case fnMul:
		result = op1 * op2
	case fnMulh:
		result = uint32((int64(int32(op1)) * int64(int32(op2))) >> 32)
	case fnMulhsu:
		result = uint32((int64(int32(op1)) * int64(uint64(op2))) >> 32)
	case fnMulhu:
		result = uint32((uint64(op1) * uint64(op2)) >> 32)
	case fnDiv:
		result = divSigned(op1, op2)
	case fnDivu:
		result = divUnsigned(op1, op2)
	case fnRem:
		result = remSigned(op1, op2)
	case fnRemu:
		result = remUnsigned(op1, op2)
	default:
		return illegalFunctionAt(pc, in.Funct)
	}

	a.regFile.WriteReg(uint8(in.Rd), result)
	return nil
}

// ExecuteI performs a FormatI arithmetic instruction (not loads, not
// JALR): Rd = Rs1 op imm, where imm is in.Imm for every op except the
// shifts, which carry a 5-bit shift amount instead.
func (a *ALU) ExecuteI(pc uint32, in *insts.Instruction) error {
	op1 := a.regFile.ReadReg(uint8(in.Rs1))

	var result uint32
	switch in.Funct {
	case fnAddi:
		result = op1 + in.Imm
	case fnSlti:
		result = boolToWord(int32(op1) < int32(in.Imm))
	case fnSltiu:
		result = boolToWord(op1 < in.Imm)
	case fnXori:
		result = op1 ^ in.Imm
	case fnOri:
		result = op1 | in.Imm
	case fnAndi:
		result = op1 & in.Imm
	case fnSll:
		result = op1 << (in.Imm & 0x1F)
	case fnSrl:
		result = op1 >> (in.Imm & 0x1F)
	case fnSra:
		result = uint32(int32(op1) >> (in.Imm & 0x1F))
	default:
		return illegalFunctionAt(pc, in.Funct)
	}

	a.regFile.WriteReg(uint8(in.Rd), result)
	return nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// divSigned implements RV32M signed division: division by zero yields
// -1, and the one case of signed overflow (MinInt32 / -1) yields the
// dividend unchanged rather than trapping.
func divSigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	if int32(a) == -2147483648 && int32(b) == -1 {
		return a
	}
	return uint32(int32(a) / int32(b))
}

func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	return a / b
}

// remSigned implements RV32M signed remainder: remainder by zero
// yields the dividend unchanged, and the signed-overflow case yields 0.
func remSigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	if int32(a) == -2147483648 && int32(b) == -1 {
		return 0
	}
	return uint32(int32(a) % int32(b))
}

func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
