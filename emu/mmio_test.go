package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/madenetwork/rv32isim/emu"
)

var _ = Describe("PollVideoPort", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory(emu.VideoPortBase + 16)
	})

	It("reports no update when the flag is clear", func() {
		_, updated, err := emu.PollVideoPort(mem)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(BeFalse())
	})

	It("reports the ball position and clears the flag when set", func() {
		Expect(mem.WriteU16(emu.VideoPortBase+0, 1)).To(Succeed())
		Expect(mem.WriteU16(emu.VideoPortBase+2, 120)).To(Succeed())
		Expect(mem.WriteU16(emu.VideoPortBase+4, 80)).To(Succeed())

		sample, updated, err := emu.PollVideoPort(mem)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(BeTrue())
		Expect(sample.BallLeft).To(Equal(uint16(120)))
		Expect(sample.BallTop).To(Equal(uint16(80)))

		flag, err := mem.ReadU16(emu.VideoPortBase + 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(flag).To(Equal(uint16(0)))
	})

	It("treats the port as ordinary memory reachable by normal loads and stores", func() {
		Expect(mem.WriteU16(emu.VideoPortBase+2, 7)).To(Succeed())
		v, err := mem.ReadU16(emu.VideoPortBase + 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint16(7)))
	})
})
