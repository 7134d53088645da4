package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AddressLayout", func() {
	Context("with 4 KiB pages", func() {
		layout := AddressLayout{Log2PageSize: 12}

		It("should report the page size", func() {
			Expect(layout.PageSize()).To(Equal(uint64(4096)))
		})

		It("should extract the VPN", func() {
			Expect(layout.VPN(0x1234)).To(Equal(uint64(0x1)))
			Expect(layout.VPN(0x0fff)).To(Equal(uint64(0x0)))
		})

		It("should extract the PPN", func() {
			Expect(layout.PPN(0x9234)).To(Equal(uint64(0x9)))
		})

		It("should extract the offset", func() {
			Expect(layout.Offset(0x1234)).To(Equal(uint64(0x234)))
			Expect(layout.Offset(0x1000)).To(Equal(uint64(0)))
		})

		It("should compose a full address", func() {
			Expect(layout.Compose(0x9, 0x234)).To(Equal(uint64(0x9234)))
		})

		It("should recompose the address it decomposed", func() {
			vAddr := uint64(0xdeadbeef)
			composed := layout.Compose(layout.VPN(vAddr), layout.Offset(vAddr))

			Expect(composed).To(Equal(vAddr))
		})

		It("should align an address to its page", func() {
			Expect(layout.PageAlign(0x1234)).To(Equal(uint64(0x1000)))
		})
	})

	Context("with 64 KiB pages", func() {
		layout := AddressLayout{Log2PageSize: 16}

		It("should split on the wider boundary", func() {
			Expect(layout.VPN(0x12345)).To(Equal(uint64(0x1)))
			Expect(layout.Offset(0x12345)).To(Equal(uint64(0x2345)))
			Expect(layout.Compose(0x1, 0x2345)).To(Equal(uint64(0x12345)))
		})
	})
})
