package mmu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("MMU", func() {
	var (
		mockCtrl  *gomock.Controller
		clock     *sim.Accumulator
		pageTable *MockPageTable
		mmu       *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		clock = sim.NewAccumulator()
		pageTable = NewMockPageTable(mockCtrl)

		mmu = MakeBuilder().
			WithClock(clock).
			WithFreq(1 * sim.GHz).
			WithPageTable(pageTable).
			WithPageWalkingLatency(100).
			Build("MMU")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should translate a mapped address", func() {
		pageTable.EXPECT().
			Find(uint64(0x1234)).
			Return(vm.Page{
				VAddr:    0x1000,
				PAddr:    0x5000,
				PageSize: 4096,
				Valid:    true,
			}, true)

		pAddr, err := mmu.Translate(0x1234, vm.AccessRead)

		Expect(err).ToNot(HaveOccurred())
		Expect(pAddr).To(Equal(uint64(0x5234)))
	})

	It("should charge the walk latency to the clock", func() {
		pageTable.EXPECT().
			Find(uint64(0x1000)).
			Return(vm.Page{VAddr: 0x1000, PAddr: 0x5000, Valid: true}, true)

		mmu.Translate(0x1000, vm.AccessRead)

		Expect(clock.CurrentTime()).
			To(BeNumerically("~", (1 * sim.GHz).NCycles(100), 1e-15))
	})

	It("should report a page fault for an unmapped address", func() {
		pageTable.EXPECT().
			Find(uint64(0x9000)).
			Return(vm.Page{}, false)

		_, err := mmu.Translate(0x9000, vm.AccessWrite)

		Expect(err).To(MatchError(ErrPageFault))
	})

	Context("with auto page allocation", func() {
		BeforeEach(func() {
			mmu = MakeBuilder().
				WithClock(clock).
				WithAutoPageAllocation(true).
				Build("MMU")
		})

		It("should hand out physical frames sequentially", func() {
			pAddr, err := mmu.Translate(0x1234, vm.AccessRead)
			Expect(err).ToNot(HaveOccurred())
			Expect(pAddr).To(Equal(uint64(0x0234)))

			pAddr, err = mmu.Translate(0x5678, vm.AccessWrite)
			Expect(err).ToNot(HaveOccurred())
			Expect(pAddr).To(Equal(uint64(0x1678)))
		})

		It("should reuse the allocated frame on a repeated walk", func() {
			_, err := mmu.Translate(0x1234, vm.AccessRead)
			Expect(err).ToNot(HaveOccurred())

			pAddr, err := mmu.Translate(0x1456, vm.AccessRead)
			Expect(err).ToNot(HaveOccurred())
			Expect(pAddr).To(Equal(uint64(0x0456)))
		})
	})
})
