// Package mmu provides a page table walker that serves the translations
// missing from all TLB levels.
package mmu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/vm"
)

// ErrPageFault is returned when a virtual address has no mapping and
// automatic page allocation is disabled.
var ErrPageFault = errors.New("page fault")

// Comp is a page table walker. Each walk charges a fixed number of cycles
// to the clock of the component.
type Comp struct {
	*sim.ComponentBase

	clock     sim.Clock
	freq      sim.Freq
	pageTable vm.PageTable
	layout    vm.AddressLayout

	latency            int
	autoPageAllocation bool
	nextPhysicalPage   uint64
}

// Translate resolves vAddr by walking the page table. When the address is
// not mapped, the walker either allocates a fresh physical frame for the
// page or reports a page fault, depending on its configuration.
func (c *Comp) Translate(vAddr uint64, access vm.AccessType) (uint64, error) {
	taskID := sim.GetIDGenerator().Generate()
	tracing.StartTask(taskID, "", c, "page-walk", access.String(), vAddr)

	c.clock.Advance(c.freq.NCycles(c.latency))

	page, found := c.pageTable.Find(vAddr)
	if !found {
		if !c.autoPageAllocation {
			tracing.EndTask(taskID, c)
			return 0, fmt.Errorf("%w: no mapping for 0x%x", ErrPageFault, vAddr)
		}

		page = c.allocatePage(vAddr)
		tracing.AddTaskStep(taskID, c, "page-allocation")
	}

	tracing.EndTask(taskID, c)

	return c.layout.Compose(
		c.layout.PPN(page.PAddr), c.layout.Offset(vAddr)), nil
}

// allocatePage maps the page that holds vAddr to the next free physical
// frame. Frames are handed out sequentially, starting from frame 0.
func (c *Comp) allocatePage(vAddr uint64) vm.Page {
	page := vm.Page{
		VAddr:    c.layout.PageAlign(vAddr),
		PAddr:    c.nextPhysicalPage << c.layout.Log2PageSize,
		PageSize: c.layout.PageSize(),
		Valid:    true,
	}

	c.pageTable.Insert(page)
	c.nextPhysicalPage++

	return page
}
