package sim

import (
	"log"
	"sync"
)

// An Accumulator is a Clock that simply adds up the time charged to it.
// Charging time is single threaded, but the current time can be read
// concurrently, for example, by a monitoring server.
type Accumulator struct {
	timeLock sync.RWMutex
	time     VTimeInSec
}

// NewAccumulator creates an Accumulator with the time set to 0.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Advance moves the simulated time forward by delta.
func (a *Accumulator) Advance(delta VTimeInSec) {
	if delta < 0 {
		log.Panicf("cannot advance time by %.10f", delta)
	}

	a.timeLock.Lock()
	a.time += delta
	a.timeLock.Unlock()
}

// CurrentTime returns the accumulated simulated time.
func (a *Accumulator) CurrentTime() VTimeInSec {
	a.timeLock.RLock()
	t := a.time
	a.timeLock.RUnlock()

	return t
}

// Reset sets the simulated time back to 0.
func (a *Accumulator) Reset() {
	a.timeLock.Lock()
	a.time = 0
	a.timeLock.Unlock()
}
