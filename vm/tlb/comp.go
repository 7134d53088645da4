// Package tlb provides a two level translation lookaside buffer.
package tlb

import (
	"log"

	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/tlb/internal"
)

// Comp is a two level TLB that caches virtual to physical page translations
// and the dirty state of each cached page. Both levels are fully associative
// and evict the least recently used entry. A dirty entry evicted from L1 is
// written back into L2, and a dirty entry evicted from L2 is written back to
// the sink. All operations complete synchronously and charge their lookup
// latencies to the clock of the component.
type Comp struct {
	*sim.ComponentBase

	clock    sim.Clock
	resolver TranslationProvider
	sink     WriteBackSink
	layout   vm.AddressLayout

	l1        internal.Array
	l2        internal.Array
	l1Latency sim.VTimeInSec
	l2Latency sim.VTimeInSec

	l1Hits          uint64
	l1Misses        uint64
	l1Invalidations uint64
	l2Hits          uint64
	l2Misses        uint64
	l2Invalidations uint64
}

// Translate resolves vAddr to a physical address. It consults the L1 array,
// then the L2 array, and falls back to the translation provider when both
// levels miss. A translation fetched from the provider is installed in both
// levels. A translation found in L2 is promoted into L1. A write access
// marks the serving entry dirty.
func (c *Comp) Translate(vAddr uint64, access vm.AccessType) (uint64, error) {
	vpn := c.layout.VPN(vAddr)
	offset := c.layout.Offset(vAddr)

	taskID := sim.GetIDGenerator().Generate()
	tracing.StartTask(taskID, "", c, "translate", access.String(), vAddr)

	c.clock.Advance(c.l1Latency)

	if slot, found := c.l1.Find(vpn); found {
		c.l1Hits++
		pAddr := c.serveFromL1(slot, offset, access)

		tracing.AddTaskStep(taskID, c, "l1-hit")
		tracing.EndTask(taskID, c)

		return pAddr, nil
	}

	c.l1Misses++
	tracing.AddTaskStep(taskID, c, "l1-miss")

	c.clock.Advance(c.l2Latency)

	if slot, found := c.l2.Find(vpn); found {
		c.l2Hits++
		pAddr := c.serveFromL2(slot, vpn, offset, access, taskID)

		tracing.AddTaskStep(taskID, c, "l2-hit")
		tracing.EndTask(taskID, c)

		return pAddr, nil
	}

	c.l2Misses++
	tracing.AddTaskStep(taskID, c, "l2-miss")

	pAddr, err := c.resolver.Translate(vAddr, access)
	if err != nil {
		tracing.EndTask(taskID, c)
		return 0, err
	}

	if c.layout.Offset(pAddr) != offset {
		log.Panicf(
			"translating 0x%x returned 0x%x, page offset not preserved",
			vAddr, pAddr)
	}

	ppn := c.layout.PPN(pAddr)
	c.insertL1(vpn, ppn, access.IsWrite(), taskID)
	c.insertL2(vpn, ppn, access.IsWrite(), taskID)

	tracing.EndTask(taskID, c)

	return pAddr, nil
}

func (c *Comp) serveFromL1(
	slot int,
	offset uint64,
	access vm.AccessType,
) uint64 {
	entry := c.l1.At(slot)

	c.l1.Touch(slot)
	if access.IsWrite() {
		c.l1.MarkDirty(slot)
	}

	return c.layout.Compose(entry.PPN, offset)
}

func (c *Comp) serveFromL2(
	slot int,
	vpn, offset uint64,
	access vm.AccessType,
	taskID string,
) uint64 {
	entry := c.l2.At(slot)

	c.l2.Touch(slot)
	if access.IsWrite() {
		c.l2.MarkDirty(slot)
	}

	c.insertL1(vpn, entry.PPN, access.IsWrite(), taskID)

	return c.layout.Compose(entry.PPN, offset)
}

// Invalidate drops the translation for vpn from both levels. A dirty L1 copy
// is written back into L2 and a dirty L2 copy is written back to the sink
// before the slot is cleared, so invalidating a page that is dirty in L1
// reaches the sink through L2. Both lookup latencies are charged whether or
// not the translation is cached.
func (c *Comp) Invalidate(vpn uint64) {
	taskID := sim.GetIDGenerator().Generate()
	tracing.StartTask(taskID, "", c, "invalidate", "invalidate", vpn)

	c.clock.Advance(c.l1Latency + c.l2Latency)

	if slot, found := c.l1.Find(vpn); found {
		c.evictL1(slot, taskID)
		c.l1Invalidations++
		tracing.AddTaskStep(taskID, c, "l1-invalidate")
	}

	if slot, found := c.l2.Find(vpn); found {
		c.evictL2(slot, taskID)
		c.l2Invalidations++
		tracing.AddTaskStep(taskID, c, "l2-invalidate")
	}

	tracing.EndTask(taskID, c)
}

// Reset returns the TLB to its post build state. Cached translations are
// discarded without write back and all counters restart from zero.
func (c *Comp) Reset() {
	c.l1.Clear()
	c.l2.Clear()

	c.l1Hits = 0
	c.l1Misses = 0
	c.l1Invalidations = 0
	c.l2Hits = 0
	c.l2Misses = 0
	c.l2Invalidations = 0
}

func (c *Comp) insertL1(vpn, ppn uint64, dirty bool, taskID string) {
	if slot, found := c.l1.Find(vpn); found {
		c.l1.Update(slot, ppn, dirty)
		return
	}

	victim := c.l1.ChooseVictim()
	c.evictL1(victim, taskID)
	c.l1.Fill(victim, vpn, ppn, dirty)
}

func (c *Comp) insertL2(vpn, ppn uint64, dirty bool, taskID string) {
	if slot, found := c.l2.Find(vpn); found {
		c.l2.Update(slot, ppn, dirty)
		return
	}

	victim := c.l2.ChooseVictim()
	c.evictL2(victim, taskID)
	c.l2.Fill(victim, vpn, ppn, dirty)
}

func (c *Comp) evictL1(slot int, taskID string) {
	entry := c.l1.At(slot)

	if entry.Valid && entry.Dirty {
		tracing.AddTaskStep(taskID, c, "writeback-to-l2")
		c.insertL2(entry.VPN, entry.PPN, true, taskID)
	}

	c.l1.Reset(slot)
}

func (c *Comp) evictL2(slot int, taskID string) {
	entry := c.l2.At(slot)

	if entry.Valid && entry.Dirty {
		tracing.AddTaskStep(taskID, c, "writeback-to-memory")
		c.sink.WriteBack(c.layout.Compose(entry.PPN, 0))
	}

	c.l2.Reset(slot)
}

// L1Hits returns the number of translations served by the L1 array.
func (c *Comp) L1Hits() uint64 { return c.l1Hits }

// L1Misses returns the number of translations that missed in the L1 array.
func (c *Comp) L1Misses() uint64 { return c.l1Misses }

// L1Invalidations returns the number of entries invalidated from the L1
// array.
func (c *Comp) L1Invalidations() uint64 { return c.l1Invalidations }

// L2Hits returns the number of translations served by the L2 array.
func (c *Comp) L2Hits() uint64 { return c.l2Hits }

// L2Misses returns the number of translations that missed in the L2 array.
func (c *Comp) L2Misses() uint64 { return c.l2Misses }

// L2Invalidations returns the number of entries invalidated from the L2
// array.
func (c *Comp) L2Invalidations() uint64 { return c.l2Invalidations }
