package tlb

import (
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/tlb/internal"
)

// A Builder can build TLBs.
type Builder struct {
	clock        sim.Clock
	resolver     TranslationProvider
	sink         WriteBackSink
	l1Capacity   int
	l2Capacity   int
	l1Latency    sim.VTimeInSec
	l2Latency    sim.VTimeInSec
	log2PageSize uint64
}

// MakeBuilder returns a Builder with default configuration.
func MakeBuilder() Builder {
	return Builder{
		l1Capacity:   16,
		l2Capacity:   64,
		l1Latency:    1 * sim.Nanosecond,
		l2Latency:    4 * sim.Nanosecond,
		log2PageSize: 12,
	}
}

// WithClock sets the clock that the TLB charges its latencies to.
func (b Builder) WithClock(clock sim.Clock) Builder {
	b.clock = clock
	return b
}

// WithTranslationProvider sets the provider that resolves the translations
// that miss in both levels.
func (b Builder) WithTranslationProvider(p TranslationProvider) Builder {
	b.resolver = p
	return b
}

// WithWriteBackSink sets the sink that receives dirty frames evicted from
// the L2 array.
func (b Builder) WithWriteBackSink(s WriteBackSink) Builder {
	b.sink = s
	return b
}

// WithL1Capacity sets the number of entries in the L1 array.
func (b Builder) WithL1Capacity(n int) Builder {
	b.l1Capacity = n
	return b
}

// WithL2Capacity sets the number of entries in the L2 array.
func (b Builder) WithL2Capacity(n int) Builder {
	b.l2Capacity = n
	return b
}

// WithL1Latency sets the time charged for each L1 lookup.
func (b Builder) WithL1Latency(t sim.VTimeInSec) Builder {
	b.l1Latency = t
	return b
}

// WithL2Latency sets the time charged for each L2 lookup.
func (b Builder) WithL2Latency(t sim.VTimeInSec) Builder {
	b.l2Latency = t
	return b
}

// WithLog2PageSize sets the page size as a power of 2.
func (b Builder) WithLog2PageSize(n uint64) Builder {
	b.log2PageSize = n
	return b
}

// Build creates a new TLB.
func (b Builder) Build(name string) *Comp {
	b.collaboratorsMustBeSet()

	t := &Comp{}
	t.ComponentBase = sim.NewComponentBase(name)

	t.clock = b.clock
	t.resolver = b.resolver
	t.sink = b.sink
	t.layout = vm.AddressLayout{Log2PageSize: b.log2PageSize}
	t.l1 = internal.NewArray(b.l1Capacity)
	t.l2 = internal.NewArray(b.l2Capacity)
	t.l1Latency = b.l1Latency
	t.l2Latency = b.l2Latency

	t.Reset()

	return t
}

func (b Builder) collaboratorsMustBeSet() {
	if b.clock == nil {
		panic("clock is not set")
	}

	if b.resolver == nil {
		panic("translation provider is not set")
	}

	if b.sink == nil {
		panic("write back sink is not set")
	}
}
