package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * GHz
		Expect(f.Period()).To(BeNumerically("==", 1e-9))
	})

	It("should panic on the period of 0 Hz", func() {
		var f = 0 * Hz
		Expect(func() { f.Period() }).To(Panic())
	})

	It("should count cycles since time 0", func() {
		var f = 1 * GHz
		Expect(f.Cycle(102.000000001)).To(Equal(uint64(102000000001)))
	})

	It("should get the time of n cycles", func() {
		var f = 1 * GHz
		Expect(f.NCycles(12)).To(BeNumerically("~", 12e-9, 1e-15))
	})
})
