package insts

import "fmt"

// Format identifies the instruction encoding used to lay out an
// instruction word's operand fields.
type Format int

// The six RV32I encodings, plus two degenerate single-opcode forms
// (SYSTEM and FENCE) that carry no meaningful operand fields.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatSystem
	FormatFence
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	case FormatSystem:
		return "SYSTEM"
	case FormatFence:
		return "FENCE"
	default:
		return "UNKNOWN"
	}
}

// Opcode is the 7-bit opcode field (bits [6:0]) of an instruction word.
type Opcode uint8

// The RV32I+M opcodes this decoder recognizes.
const (
	OpcodeR      Opcode = 0x33 // OP: register-register ALU and M-extension
	OpcodeI      Opcode = 0x13 // OP-IMM: register-immediate ALU
	OpcodeLoad   Opcode = 0x03 // LOAD: LB/LH/LW/LBU/LHU
	OpcodeS      Opcode = 0x23 // STORE: SB/SH/SW
	OpcodeB      Opcode = 0x63 // BRANCH: BEQ/BNE/BLT/BGE/BLTU/BGEU
	OpcodeLUI    Opcode = 0x37 // LUI
	OpcodeAUIPC  Opcode = 0x17 // AUIPC
	OpcodeJAL    Opcode = 0x6F // JAL
	OpcodeJALR   Opcode = 0x67 // JALR
	OpcodeSystem Opcode = 0x73 // ECALL/EBREAK
	OpcodeFence  Opcode = 0x0F // FENCE
)

// RegRef names a register operand. Formats that don't use a given field
// (e.g. U-type and J-type have no rs1/rs2) set it to RegNone.
type RegRef int8

// RegNone marks an operand field the format doesn't carry.
const RegNone RegRef = -1

// Instruction is the decoded form of a 32-bit instruction word: enough
// structure for the executor to dispatch on without re-parsing bits.
//
// Funct carries the combined function code used to distinguish
// operations sharing an opcode. For FormatR, and for the shift variants
// of FormatI (SLLI/SRLI/SRAI), it is (funct7<<3)|funct3; for FormatSystem
// it is bits [31:20] (0 for ECALL, 1 for EBREAK); for FormatU, FormatJ and
// FormatFence it is 0; for every other format it is plain funct3.
//
// Imm is sign-extended to 32 bits for every format except FormatU,
// where it is left as the raw unsigned 20-bit value: LUI and AUIPC
// shift it left by 12 before use, and that shift alone produces the
// correct 32-bit pattern regardless of the immediate's sign.
type Instruction struct {
	Word   uint32
	Format Format
	Opcode Opcode
	Funct  uint16
	Rs1    RegRef
	Rs2    RegRef
	Rd     RegRef
	Imm    uint32
}

// Decoder turns instruction words into Instructions. It is stateless;
// a single Decoder may be shared across CPUs.
type Decoder struct{}

// NewDecoder returns a ready-to-use Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func signExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

func field(word uint32, hi, lo uint) uint32 {
	mask := uint32(1)<<(hi-lo+1) - 1
	return (word >> lo) & mask
}

// Decode parses a 32-bit instruction word. It returns an error if the
// opcode field does not belong to RV32I+M.
func (d *Decoder) Decode(word uint32) (*Instruction, error) {
	opcode := Opcode(field(word, 6, 0))
	rd := RegRef(field(word, 11, 7))
	funct3 := uint16(field(word, 14, 12))
	rs1 := RegRef(field(word, 19, 15))
	rs2 := RegRef(field(word, 24, 20))
	funct7 := uint16(field(word, 31, 25))

	in := &Instruction{Word: word, Opcode: opcode}

	switch opcode {
	case OpcodeR:
		in.Format = FormatR
		in.Rd, in.Rs1, in.Rs2 = rd, rs1, rs2
		in.Funct = (funct7 << 3) | funct3

	case OpcodeI, OpcodeLoad, OpcodeJALR:
		in.Format = FormatI
		in.Rd, in.Rs1 = rd, rs1
		in.Rs2 = RegNone
		imm11_0 := field(word, 31, 20)
		in.Imm = signExtend(imm11_0, 12)
		if opcode == OpcodeI && (funct3 == 0x1 || funct3 == 0x5) {
			// SLLI/SRLI/SRAI: bits [24:20] are the shift amount, bits
			// [31:25] distinguish SRLI from SRAI the same way funct7
			// distinguishes SRL from SRA for FormatR, so fold them the
			// same way here for a uniform executor dispatch.
			in.Funct = (funct7 << 3) | funct3
			in.Imm = field(word, 24, 20)
		} else {
			in.Funct = funct3
		}

	case OpcodeS:
		in.Format = FormatS
		in.Rs1, in.Rs2 = rs1, rs2
		in.Rd = RegNone
		in.Funct = funct3
		imm4_0 := field(word, 11, 7)
		imm11_5 := field(word, 31, 25)
		in.Imm = signExtend((imm11_5<<5)|imm4_0, 12)

	case OpcodeB:
		in.Format = FormatB
		in.Rs1, in.Rs2 = rs1, rs2
		in.Rd = RegNone
		in.Funct = funct3
		imm11 := field(word, 7, 7)
		imm4_1 := field(word, 11, 8)
		imm10_5 := field(word, 30, 25)
		imm12 := field(word, 31, 31)
		raw := (imm12 << 12) | (imm11 << 11) | (imm10_5 << 5) | (imm4_1 << 1)
		in.Imm = signExtend(raw, 13)

	case OpcodeLUI, OpcodeAUIPC:
		in.Format = FormatU
		in.Rd = rd
		in.Rs1, in.Rs2 = RegNone, RegNone
		in.Imm = field(word, 31, 12)

	case OpcodeJAL:
		in.Format = FormatJ
		in.Rd = rd
		in.Rs1, in.Rs2 = RegNone, RegNone
		imm19_12 := field(word, 19, 12)
		imm11 := field(word, 20, 20)
		imm10_1 := field(word, 30, 21)
		imm20 := field(word, 31, 31)
		raw := (imm20 << 20) | (imm19_12 << 12) | (imm11 << 11) | (imm10_1 << 1)
		in.Imm = signExtend(raw, 21)

	case OpcodeSystem:
		in.Format = FormatSystem
		in.Rd, in.Rs1, in.Rs2 = RegNone, RegNone, RegNone
		in.Funct = uint16(field(word, 31, 20)) // 0 = ECALL, 1 = EBREAK

	case OpcodeFence:
		in.Format = FormatFence
		in.Rd, in.Rs1, in.Rs2 = RegNone, RegNone, RegNone

	default:
		return nil, fmt.Errorf("insts: unrecognized opcode 0x%02x", uint8(opcode))
	}

	return in, nil
}
