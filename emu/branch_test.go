package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/madenetwork/rv32isim/emu"
	"github.com/madenetwork/rv32isim/insts"
)

var _ = Describe("BranchUnit", func() {
	var (
		rf *emu.RegFile
		bu *emu.BranchUnit
	)

	BeforeEach(func() {
		rf = &emu.RegFile{}
		bu = emu.NewBranchUnit(rf)
	})

	btype := func(funct uint16, rs1, rs2 insts.RegRef) *insts.Instruction {
		return &insts.Instruction{Format: insts.FormatB, Rs1: rs1, Rs2: rs2, Funct: funct}
	}

	DescribeTable("taken conditions",
		func(funct uint16, a, b uint32, want bool) {
			rf.WriteReg(1, a)
			rf.WriteReg(2, b)
			taken, err := bu.Evaluate(0, btype(funct, 1, 2))
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(Equal(want))
		},
		Entry("BEQ equal", uint16(0x0), uint32(5), uint32(5), true),
		Entry("BEQ not equal", uint16(0x0), uint32(5), uint32(6), false),
		Entry("BNE not equal", uint16(0x1), uint32(5), uint32(6), true),
		Entry("BNE equal", uint16(0x1), uint32(5), uint32(5), false),
		Entry("BLT signed less", uint16(0x4), uint32(0xFFFFFFFF), uint32(1), true), // -1 < 1
		Entry("BLT signed not less", uint16(0x4), uint32(1), uint32(0xFFFFFFFF), false),
		Entry("BGE signed greater-equal", uint16(0x5), uint32(1), uint32(0xFFFFFFFF), true),
		Entry("BLTU unsigned less", uint16(0x6), uint32(1), uint32(0xFFFFFFFF), true),
		Entry("BLTU unsigned not less", uint16(0x6), uint32(0xFFFFFFFF), uint32(1), false),
		Entry("BGEU unsigned greater-equal", uint16(0x7), uint32(0xFFFFFFFF), uint32(1), true),
	)

	It("returns ErrIllegalFunction for an unrecognized funct3", func() {
		_, err := bu.Evaluate(0, btype(0x3, 1, 2))
		Expect(err).To(MatchError(emu.ErrIllegalFunction))
	})
})
