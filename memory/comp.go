package memory

import (
	"encoding/binary"
	"log"

	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
)

// Comp is an ideal memory controller that receives the dirty frames the TLB
// evicts. Each write back charges a fixed number of cycles to the clock and
// stamps the frame in the backing storage with a running sequence number,
// so tools can tell which frames reached memory and in what order.
type Comp struct {
	*sim.ComponentBase

	Storage *Storage
	Latency int

	clock sim.Clock
	freq  sim.Freq

	writeBackCount uint64
	lastFrame      uint64
}

// WriteBack models the memory write of a dirty page. pAddr must be frame
// aligned.
func (c *Comp) WriteBack(pAddr uint64) {
	taskID := sim.GetIDGenerator().Generate()
	tracing.StartTask(taskID, "", c, "write-back", "write-back", pAddr)

	c.clock.Advance(c.freq.NCycles(c.Latency))

	c.writeBackCount++
	c.lastFrame = pAddr

	seq := make([]byte, 8)
	binary.LittleEndian.PutUint64(seq, c.writeBackCount)
	if err := c.Storage.Write(pAddr, seq); err != nil {
		log.Panic(err)
	}

	tracing.EndTask(taskID, c)
}

// WriteBackCount returns the number of frames written back so far.
func (c *Comp) WriteBackCount() uint64 {
	return c.writeBackCount
}

// LastFrame returns the address of the most recently written frame.
func (c *Comp) LastFrame() uint64 {
	return c.lastFrame
}
