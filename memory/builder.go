package memory

import (
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build memory controllers.
type Builder struct {
	clock    sim.Clock
	freq     sim.Freq
	latency  int
	capacity uint64
	storage  *Storage
}

// MakeBuilder returns a new Builder with default configuration.
func MakeBuilder() Builder {
	return Builder{
		freq:     1 * sim.GHz,
		latency:  100,
		capacity: 4 * GB,
	}
}

// WithClock sets the clock that the memory controller charges its write
// latency to.
func (b Builder) WithClock(clock sim.Clock) Builder {
	b.clock = clock
	return b
}

// WithFreq sets the frequency of the memory controller.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the number of cycles each write back takes.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithNewStorage sets the capacity of the storage to create at build time.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithStorage sets the storage that backs the memory controller.
func (b Builder) WithStorage(storage *Storage) Builder {
	b.storage = storage
	return b
}

// Build builds a new Comp.
func (b Builder) Build(name string) *Comp {
	if b.clock == nil {
		panic("clock is not set")
	}

	c := &Comp{}
	c.ComponentBase = sim.NewComponentBase(name)

	c.clock = b.clock
	c.freq = b.freq
	c.Latency = b.latency

	if b.storage == nil {
		c.Storage = NewStorage(b.capacity)
	} else {
		c.Storage = b.storage
	}

	return c
}
