package mmu

import (
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/vm"
)

// A Builder can build MMU components.
type Builder struct {
	clock              sim.Clock
	freq               sim.Freq
	log2PageSize       uint64
	pageTable          vm.PageTable
	pageWalkingLatency int
	autoPageAllocation bool
}

// MakeBuilder creates a new builder with default configuration.
func MakeBuilder() Builder {
	return Builder{
		freq:         1 * sim.GHz,
		log2PageSize: 12,
	}
}

// WithClock sets the clock that the MMU charges its walk latency to.
func (b Builder) WithClock(clock sim.Clock) Builder {
	b.clock = clock
	return b
}

// WithFreq sets the frequency that the MMU works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLog2PageSize sets the page size that the MMU supports.
func (b Builder) WithLog2PageSize(log2PageSize uint64) Builder {
	b.log2PageSize = log2PageSize
	return b
}

// WithPageTable sets the page table that the MMU walks. A fresh table is
// created when none is provided.
func (b Builder) WithPageTable(pageTable vm.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// WithPageWalkingLatency sets the number of cycles required for walking the
// page table.
func (b Builder) WithPageWalkingLatency(n int) Builder {
	b.pageWalkingLatency = n
	return b
}

// WithAutoPageAllocation enables or disables automatic page allocation.
// When enabled, the MMU creates page table entries for virtual addresses
// that do not exist, instead of reporting page faults.
func (b Builder) WithAutoPageAllocation(enabled bool) Builder {
	b.autoPageAllocation = enabled
	return b
}

// Build returns a newly created MMU component.
func (b Builder) Build(name string) *Comp {
	if b.clock == nil {
		panic("clock is not set")
	}

	m := &Comp{}
	m.ComponentBase = sim.NewComponentBase(name)

	m.clock = b.clock
	m.freq = b.freq
	m.layout = vm.AddressLayout{Log2PageSize: b.log2PageSize}
	m.latency = b.pageWalkingLatency
	m.autoPageAllocation = b.autoPageAllocation

	b.createPageTable(m)

	return m
}

func (b Builder) createPageTable(m *Comp) {
	if b.pageTable != nil {
		m.pageTable = b.pageTable
		return
	}

	m.pageTable = vm.NewPageTable(b.log2PageSize)
}
