package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/madenetwork/rv32isim/emu"
	"github.com/madenetwork/rv32isim/insts"
)

var _ = Describe("LoadStoreUnit", func() {
	var (
		rf  *emu.RegFile
		mem *emu.Memory
		lsu *emu.LoadStoreUnit
	)

	BeforeEach(func() {
		rf = &emu.RegFile{}
		mem = emu.NewMemory(4096)
		lsu = emu.NewLoadStoreUnit(rf, mem)
	})

	loadInst := func(funct uint16, rd, rs1 insts.RegRef, imm uint32) *insts.Instruction {
		return &insts.Instruction{Format: insts.FormatI, Opcode: insts.OpcodeLoad, Rd: rd, Rs1: rs1, Funct: funct, Imm: imm}
	}
	storeInst := func(funct uint16, rs1, rs2 insts.RegRef, imm uint32) *insts.Instruction {
		return &insts.Instruction{Format: insts.FormatS, Rs1: rs1, Rs2: rs2, Funct: funct, Imm: imm}
	}

	Describe("stores then loads", func() {
		It("round-trips a word", func() {
			rf.WriteReg(1, 0x100) // base
			rf.WriteReg(2, 0x11223344)
			Expect(lsu.Store(0, storeInst(0x2, 1, 2, 0))).To(Succeed())

			Expect(lsu.Load(0, loadInst(0x2, 3, 1, 0))).To(Succeed())
			Expect(rf.ReadReg(3)).To(Equal(uint32(0x11223344)))
		})

		It("sign-extends a loaded byte", func() {
			rf.WriteReg(1, 0x100)
			rf.WriteReg(2, 0xFF)
			Expect(lsu.Store(0, storeInst(0x0, 1, 2, 0))).To(Succeed())

			Expect(lsu.Load(0, loadInst(0x0, 3, 1, 0))).To(Succeed())
			Expect(rf.ReadReg(3)).To(Equal(uint32(0xFFFFFFFF)))
		})

		It("zero-extends a loaded unsigned byte", func() {
			rf.WriteReg(1, 0x100)
			rf.WriteReg(2, 0xFF)
			Expect(lsu.Store(0, storeInst(0x0, 1, 2, 0))).To(Succeed())

			Expect(lsu.Load(0, loadInst(0x4, 3, 1, 0))).To(Succeed())
			Expect(rf.ReadReg(3)).To(Equal(uint32(0x000000FF)))
		})

		It("sign-extends a loaded halfword", func() {
			rf.WriteReg(1, 0x100)
			rf.WriteReg(2, 0x8000)
			Expect(lsu.Store(0, storeInst(0x1, 1, 2, 0))).To(Succeed())

			Expect(lsu.Load(0, loadInst(0x1, 3, 1, 0))).To(Succeed())
			Expect(rf.ReadReg(3)).To(Equal(uint32(0xFFFF8000)))
		})

		It("zero-extends a loaded unsigned halfword", func() {
			rf.WriteReg(1, 0x100)
			rf.WriteReg(2, 0x8000)
			Expect(lsu.Store(0, storeInst(0x1, 1, 2, 0))).To(Succeed())

			Expect(lsu.Load(0, loadInst(0x5, 3, 1, 0))).To(Succeed())
			Expect(rf.ReadReg(3)).To(Equal(uint32(0x00008000)))
		})
	})

	Describe("effective address computation", func() {
		It("adds a sign-extended immediate offset to the base", func() {
			rf.WriteReg(1, 0x200)
			rf.WriteReg(2, 7)
			// store at 0x200 + (-0x10) = 0x1F0
			Expect(lsu.Store(0, storeInst(0x2, 1, 2, 0xFFFFFFF0))).To(Succeed())

			v, err := mem.ReadU32(0x1F0)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(7)))
		})
	})

	Describe("text segment protection", func() {
		BeforeEach(func() {
			mem.SetTextRange(0, 0x100)
		})

		It("rejects a store into the text range", func() {
			rf.WriteReg(1, 0)
			rf.WriteReg(2, 1)
			err := lsu.Store(0, storeInst(0x2, 1, 2, 0))
			Expect(err).To(MatchError(emu.ErrTextSegmentWrite))
		})
	})

	Describe("unknown function codes", func() {
		It("returns ErrIllegalFunction for an unrecognized load funct", func() {
			rf.WriteReg(1, 0x100)
			err := lsu.Load(0, loadInst(0x3, 2, 1, 0))
			Expect(err).To(MatchError(emu.ErrIllegalFunction))
		})

		It("returns ErrIllegalFunction for an unrecognized store funct", func() {
			rf.WriteReg(1, 0x100)
			err := lsu.Store(0, storeInst(0x3, 1, 2, 0))
			Expect(err).To(MatchError(emu.ErrIllegalFunction))
		})
	})
})
