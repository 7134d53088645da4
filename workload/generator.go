package workload

import (
	"math/rand"

	"github.com/sarchlab/vmsim/vm"
)

// A RandomGenerator generates a fixed number of random accesses. The
// generated addresses show page locality, so that a TLB sees a realistic
// mix of hits and misses. Two generators built with the same seed produce
// the same access sequence.
type RandomGenerator struct {
	rand   *rand.Rand
	layout vm.AddressLayout

	numAccesses     uint64
	maxAddress      uint64
	writeRatio      float64
	localityRatio   float64
	invalidateRatio float64

	generated   uint64
	recentPages []uint64
}

// NextAccess returns the next access of the workload.
func (g *RandomGenerator) NextAccess() (Access, bool) {
	if g.generated >= g.numAccesses {
		return Access{}, false
	}
	g.generated++

	if len(g.recentPages) > 0 &&
		g.rand.Float64() < g.invalidateRatio {
		page := g.recentPages[g.rand.Intn(len(g.recentPages))]
		return Access{Op: OpInvalidate, Addr: g.layout.VPN(page)}, true
	}

	addr := g.nextAddress()

	op := OpRead
	if g.rand.Float64() < g.writeRatio {
		op = OpWrite
	}

	return Access{Op: op, Addr: addr}, true
}

func (g *RandomGenerator) nextAddress() uint64 {
	offset := g.rand.Uint64() % g.layout.PageSize()

	if len(g.recentPages) > 0 && g.rand.Float64() < g.localityRatio {
		page := g.recentPages[g.rand.Intn(len(g.recentPages))]
		return page + offset
	}

	page := g.layout.PageAlign(g.rand.Uint64() % g.maxAddress)
	g.recordPage(page)

	return page + offset
}

// recordPage keeps the most recently touched pages as candidates for the
// accesses that exploit locality.
func (g *RandomGenerator) recordPage(page uint64) {
	const recentPageCount = 8

	if len(g.recentPages) < recentPageCount {
		g.recentPages = append(g.recentPages, page)
		return
	}

	g.recentPages[int(g.generated)%recentPageCount] = page
}

// A GeneratorBuilder can build random access generators.
type GeneratorBuilder struct {
	seed            int64
	numAccesses     uint64
	maxAddress      uint64
	writeRatio      float64
	localityRatio   float64
	invalidateRatio float64
	log2PageSize    uint64
}

// MakeGeneratorBuilder returns a GeneratorBuilder with default
// configuration.
func MakeGeneratorBuilder() GeneratorBuilder {
	return GeneratorBuilder{
		seed:          1,
		numAccesses:   10000,
		maxAddress:    1 << 30,
		writeRatio:    0.3,
		localityRatio: 0.8,
		log2PageSize:  12,
	}
}

// WithSeed sets the seed of the random number generator.
func (b GeneratorBuilder) WithSeed(seed int64) GeneratorBuilder {
	b.seed = seed
	return b
}

// WithNumAccesses sets the number of accesses to generate.
func (b GeneratorBuilder) WithNumAccesses(n uint64) GeneratorBuilder {
	b.numAccesses = n
	return b
}

// WithMaxAddress sets the upper bound of the generated virtual addresses.
func (b GeneratorBuilder) WithMaxAddress(addr uint64) GeneratorBuilder {
	b.maxAddress = addr
	return b
}

// WithWriteRatio sets the fraction of accesses that are writes.
func (b GeneratorBuilder) WithWriteRatio(r float64) GeneratorBuilder {
	b.writeRatio = r
	return b
}

// WithLocalityRatio sets the fraction of accesses that revisit a recently
// touched page.
func (b GeneratorBuilder) WithLocalityRatio(r float64) GeneratorBuilder {
	b.localityRatio = r
	return b
}

// WithInvalidateRatio sets the fraction of operations that invalidate a
// recently touched page.
func (b GeneratorBuilder) WithInvalidateRatio(r float64) GeneratorBuilder {
	b.invalidateRatio = r
	return b
}

// WithLog2PageSize sets the page size as a power of 2.
func (b GeneratorBuilder) WithLog2PageSize(n uint64) GeneratorBuilder {
	b.log2PageSize = n
	return b
}

// Build creates a new RandomGenerator.
func (b GeneratorBuilder) Build() *RandomGenerator {
	return &RandomGenerator{
		rand:            rand.New(rand.NewSource(b.seed)),
		layout:          vm.AddressLayout{Log2PageSize: b.log2PageSize},
		numAccesses:     b.numAccesses,
		maxAddress:      b.maxAddress,
		writeRatio:      b.writeRatio,
		localityRatio:   b.localityRatio,
		invalidateRatio: b.invalidateRatio,
	}
}
