package tlb

import (
	"github.com/sarchlab/vmsim/vm"
)

// A TranslationProvider resolves the translations that miss in all TLB
// levels, typically by walking the page table.
type TranslationProvider interface {
	Translate(vAddr uint64, access vm.AccessType) (pAddr uint64, err error)
}

// A WriteBackSink accepts the dirty frames that the TLB evicts. The address
// passed to WriteBack is always frame aligned.
type WriteBackSink interface {
	WriteBack(pAddr uint64)
}
