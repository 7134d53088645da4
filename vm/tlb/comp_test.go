package tlb

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/tlb/internal"
)

var _ = Describe("TLB", func() {
	var (
		mockCtrl *gomock.Controller
		clock    *sim.Accumulator
		resolver *MockTranslationProvider
		sink     *MockWriteBackSink
		tlb      *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		clock = sim.NewAccumulator()
		resolver = NewMockTranslationProvider(mockCtrl)
		sink = NewMockWriteBackSink(mockCtrl)

		tlb = MakeBuilder().
			WithClock(clock).
			WithTranslationProvider(resolver).
			WithWriteBackSink(sink).
			WithL1Capacity(2).
			WithL2Capacity(4).
			WithL1Latency(1 * sim.Nanosecond).
			WithL2Latency(4 * sim.Nanosecond).
			WithLog2PageSize(12).
			Build("TLB")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should resolve a translation through the provider when both levels miss", func() {
		resolver.EXPECT().
			Translate(uint64(0x1042), vm.AccessRead).
			Return(uint64(0x5042), nil)

		pAddr, err := tlb.Translate(0x1042, vm.AccessRead)

		Expect(err).ToNot(HaveOccurred())
		Expect(pAddr).To(Equal(uint64(0x5042)))
		Expect(tlb.L1Misses()).To(Equal(uint64(1)))
		Expect(tlb.L2Misses()).To(Equal(uint64(1)))
		Expect(tlb.L1Hits()).To(Equal(uint64(0)))
		Expect(tlb.L2Hits()).To(Equal(uint64(0)))
	})

	It("should serve a repeated translation from L1, preserving the page offset", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)

		_, err := tlb.Translate(0x1000, vm.AccessRead)
		Expect(err).ToNot(HaveOccurred())

		pAddr, err := tlb.Translate(0x1abc, vm.AccessRead)

		Expect(err).ToNot(HaveOccurred())
		Expect(pAddr).To(Equal(uint64(0x5abc)))
		Expect(tlb.L1Hits()).To(Equal(uint64(1)))
		Expect(tlb.L1Misses()).To(Equal(uint64(1)))
	})

	It("should charge the lookup latencies to the clock", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)

		tlb.Translate(0x1000, vm.AccessRead)
		Expect(clock.CurrentTime()).
			To(BeNumerically("~", 5*sim.Nanosecond, 1e-15))

		tlb.Translate(0x1000, vm.AccessRead)
		Expect(clock.CurrentTime()).
			To(BeNumerically("~", 6*sim.Nanosecond, 1e-15))
	})

	It("should charge the L1 latency before consulting lower levels", func() {
		mockClock := NewMockClock(mockCtrl)
		strictTLB := MakeBuilder().
			WithClock(mockClock).
			WithTranslationProvider(resolver).
			WithWriteBackSink(sink).
			WithL1Latency(1 * sim.Nanosecond).
			WithL2Latency(4 * sim.Nanosecond).
			Build("TLB")

		gomock.InOrder(
			mockClock.EXPECT().Advance(1*sim.Nanosecond),
			mockClock.EXPECT().Advance(4*sim.Nanosecond),
			resolver.EXPECT().
				Translate(uint64(0x1000), vm.AccessRead).
				Return(uint64(0x5000), nil),
		)

		strictTLB.Translate(0x1000, vm.AccessRead)
	})

	It("should promote an L2 hit into L1", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)
		resolver.EXPECT().
			Translate(uint64(0x2000), vm.AccessRead).
			Return(uint64(0x6000), nil)
		resolver.EXPECT().
			Translate(uint64(0x3000), vm.AccessRead).
			Return(uint64(0x7000), nil)

		tlb.Translate(0x1000, vm.AccessRead)
		tlb.Translate(0x2000, vm.AccessRead)
		tlb.Translate(0x3000, vm.AccessRead)

		pAddr, err := tlb.Translate(0x1000, vm.AccessRead)
		Expect(err).ToNot(HaveOccurred())
		Expect(pAddr).To(Equal(uint64(0x5000)))
		Expect(tlb.L2Hits()).To(Equal(uint64(1)))

		pAddr, err = tlb.Translate(0x1000, vm.AccessRead)
		Expect(err).ToNot(HaveOccurred())
		Expect(pAddr).To(Equal(uint64(0x5000)))
		Expect(tlb.L1Hits()).To(Equal(uint64(1)))
	})

	It("should evict the least recently used entry from L1", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)
		resolver.EXPECT().
			Translate(uint64(0x2000), vm.AccessRead).
			Return(uint64(0x6000), nil)
		resolver.EXPECT().
			Translate(uint64(0x3000), vm.AccessRead).
			Return(uint64(0x7000), nil)

		tlb.Translate(0x1000, vm.AccessRead)
		tlb.Translate(0x2000, vm.AccessRead)
		tlb.Translate(0x1000, vm.AccessRead)
		tlb.Translate(0x3000, vm.AccessRead)
		tlb.Translate(0x2000, vm.AccessRead)

		Expect(tlb.L1Hits()).To(Equal(uint64(1)))
		Expect(tlb.L1Misses()).To(Equal(uint64(4)))
		Expect(tlb.L2Hits()).To(Equal(uint64(1)))
	})

	It("should write a dirty translation back once when it is invalidated", func() {
		tlb = MakeBuilder().
			WithClock(clock).
			WithTranslationProvider(resolver).
			WithWriteBackSink(sink).
			WithL1Capacity(2).
			WithL2Capacity(2).
			WithL1Latency(1 * sim.Nanosecond).
			WithL2Latency(4 * sim.Nanosecond).
			WithLog2PageSize(12).
			Build("TLB")

		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)
		sink.EXPECT().WriteBack(uint64(0x5000))

		tlb.Translate(0x1000, vm.AccessRead)

		pAddr, err := tlb.Translate(0x1000, vm.AccessRead)
		Expect(err).ToNot(HaveOccurred())
		Expect(pAddr).To(Equal(uint64(0x5000)))

		tlb.Translate(0x1000, vm.AccessWrite)
		tlb.Invalidate(0x1)

		Expect(tlb.L1Invalidations()).To(Equal(uint64(1)))
		Expect(tlb.L2Invalidations()).To(Equal(uint64(1)))

		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)

		tlb.Translate(0x1000, vm.AccessRead)
		Expect(tlb.L1Misses()).To(Equal(uint64(2)))
		Expect(tlb.L2Misses()).To(Equal(uint64(2)))
	})

	It("should not write back a clean translation on invalidate", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)

		tlb.Translate(0x1000, vm.AccessRead)
		tlb.Invalidate(0x1)

		Expect(tlb.L1Invalidations()).To(Equal(uint64(1)))
		Expect(tlb.L2Invalidations()).To(Equal(uint64(1)))
	})

	It("should charge the lookup latencies even when invalidating an uncached page", func() {
		tlb.Invalidate(0x42)

		Expect(tlb.L1Invalidations()).To(Equal(uint64(0)))
		Expect(tlb.L2Invalidations()).To(Equal(uint64(0)))
		Expect(clock.CurrentTime()).
			To(BeNumerically("~", 5*sim.Nanosecond, 1e-15))
	})

	It("should write a dirty frame back to the sink when it is evicted from L2", func() {
		tlb = MakeBuilder().
			WithClock(clock).
			WithTranslationProvider(resolver).
			WithWriteBackSink(sink).
			WithL1Capacity(2).
			WithL2Capacity(1).
			WithLog2PageSize(12).
			Build("TLB")

		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessWrite).
			Return(uint64(0x5000), nil)
		resolver.EXPECT().
			Translate(uint64(0x2000), vm.AccessRead).
			Return(uint64(0x6000), nil)
		sink.EXPECT().WriteBack(uint64(0x5000))

		tlb.Translate(0x1000, vm.AccessWrite)
		tlb.Translate(0x2000, vm.AccessRead)
	})

	It("should keep an evicted dirty translation in L2", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessWrite).
			Return(uint64(0x5000), nil)
		resolver.EXPECT().
			Translate(uint64(0x2000), vm.AccessRead).
			Return(uint64(0x6000), nil)
		resolver.EXPECT().
			Translate(uint64(0x3000), vm.AccessRead).
			Return(uint64(0x7000), nil)
		sink.EXPECT().WriteBack(uint64(0x5000))

		tlb.Translate(0x1000, vm.AccessWrite)
		tlb.Translate(0x2000, vm.AccessRead)
		tlb.Translate(0x3000, vm.AccessRead)

		_, err := tlb.Translate(0x1000, vm.AccessRead)
		Expect(err).ToNot(HaveOccurred())
		Expect(tlb.L2Hits()).To(Equal(uint64(1)))

		tlb.Invalidate(0x1)

		Expect(tlb.L1Invalidations()).To(Equal(uint64(1)))
		Expect(tlb.L2Invalidations()).To(Equal(uint64(1)))
	})

	It("should mark a translation dirty when a write hits in L2", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessRead).
			Return(uint64(0x5000), nil)
		resolver.EXPECT().
			Translate(uint64(0x2000), vm.AccessRead).
			Return(uint64(0x6000), nil)
		resolver.EXPECT().
			Translate(uint64(0x3000), vm.AccessRead).
			Return(uint64(0x7000), nil)
		sink.EXPECT().WriteBack(uint64(0x5000))

		tlb.Translate(0x1000, vm.AccessRead)
		tlb.Translate(0x2000, vm.AccessRead)
		tlb.Translate(0x3000, vm.AccessRead)
		tlb.Translate(0x1000, vm.AccessWrite)

		tlb.Invalidate(0x1)

		Expect(tlb.L1Invalidations()).To(Equal(uint64(1)))
		Expect(tlb.L2Invalidations()).To(Equal(uint64(1)))
	})

	It("should propagate a translation fault without caching the page", func() {
		faultErr := errors.New("page fault at 0x9000")
		resolver.EXPECT().
			Translate(uint64(0x9000), vm.AccessRead).
			Return(uint64(0), faultErr).
			Times(2)

		_, err := tlb.Translate(0x9000, vm.AccessRead)
		Expect(err).To(MatchError(faultErr))

		_, err = tlb.Translate(0x9000, vm.AccessRead)
		Expect(err).To(MatchError(faultErr))
		Expect(tlb.L1Misses()).To(Equal(uint64(2)))
		Expect(tlb.L2Misses()).To(Equal(uint64(2)))
	})

	It("should panic when the provider does not preserve the page offset", func() {
		resolver.EXPECT().
			Translate(uint64(0x1004), vm.AccessRead).
			Return(uint64(0x5000), nil)

		Expect(func() {
			tlb.Translate(0x1004, vm.AccessRead)
		}).To(Panic())
	})

	It("should hold at most one valid entry per VPN in each level", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessWrite).
			Return(uint64(0x5000), nil)
		resolver.EXPECT().
			Translate(uint64(0x2000), vm.AccessRead).
			Return(uint64(0x6000), nil)
		resolver.EXPECT().
			Translate(uint64(0x3000), vm.AccessRead).
			Return(uint64(0x7000), nil)

		// Fills L1 past capacity so the dirty copy of page 1 is written
		// back into an L2 that already holds the page, then re-promotes
		// it into L1 through an L2 hit.
		tlb.Translate(0x1000, vm.AccessWrite)
		tlb.Translate(0x2000, vm.AccessRead)
		tlb.Translate(0x3000, vm.AccessRead)
		tlb.Translate(0x1000, vm.AccessRead)
		Expect(tlb.L2Hits()).To(Equal(uint64(1)))

		tlb.Invalidate(0x2)

		for _, vpn := range []uint64{0x1, 0x2, 0x3} {
			Expect(countValidEntries(tlb.l1, vpn)).
				To(BeNumerically("<=", 1))
			Expect(countValidEntries(tlb.l2, vpn)).
				To(BeNumerically("<=", 1))
		}

		Expect(countValidEntries(tlb.l1, 0x1)).To(Equal(1))
		Expect(countValidEntries(tlb.l2, 0x1)).To(Equal(1))
	})

	It("should forget cached translations and counters on reset", func() {
		resolver.EXPECT().
			Translate(uint64(0x1000), vm.AccessWrite).
			Return(uint64(0x5000), nil).
			Times(2)

		tlb.Translate(0x1000, vm.AccessWrite)
		tlb.Translate(0x1000, vm.AccessWrite)
		Expect(tlb.L1Hits()).To(Equal(uint64(1)))

		tlb.Reset()

		Expect(tlb.L1Hits()).To(Equal(uint64(0)))
		Expect(tlb.L1Misses()).To(Equal(uint64(0)))
		Expect(tlb.L2Misses()).To(Equal(uint64(0)))

		tlb.Translate(0x1000, vm.AccessWrite)
		Expect(tlb.L1Misses()).To(Equal(uint64(1)))
		Expect(tlb.L2Misses()).To(Equal(uint64(1)))
	})
})

func countValidEntries(a internal.Array, vpn uint64) int {
	count := 0
	for i := 0; i < a.Capacity(); i++ {
		entry := a.At(i)
		if entry.Valid && entry.VPN == vpn {
			count++
		}
	}

	return count
}
