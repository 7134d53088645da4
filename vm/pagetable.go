package vm

import (
	"container/list"
	"sync"
)

// A Page is an entry in the page table, maintaining the information about how
// to translate a virtual address to a physical address.
type Page struct {
	VAddr    uint64
	PAddr    uint64
	PageSize uint64
	Valid    bool
}

// A PageTable holds a list of pages.
type PageTable interface {
	Insert(page Page)
	Remove(vAddr uint64)
	Find(vAddr uint64) (Page, bool)
	Update(page Page)
}

// NewPageTable creates a new PageTable.
func NewPageTable(log2PageSize uint64) PageTable {
	return &pageTableImpl{
		layout:       AddressLayout{Log2PageSize: log2PageSize},
		entries:      list.New(),
		entriesTable: make(map[uint64]*list.Element),
	}
}

// pageTableImpl is the default implementation of a PageTable.
type pageTableImpl struct {
	sync.Mutex
	layout       AddressLayout
	entries      *list.List
	entriesTable map[uint64]*list.Element
}

// Insert puts a new page into the PageTable.
func (pt *pageTableImpl) Insert(page Page) {
	pt.Lock()
	defer pt.Unlock()

	pt.pageMustNotExist(page.VAddr)

	elem := pt.entries.PushBack(page)
	pt.entriesTable[page.VAddr] = elem
}

// Remove removes the entry in the page table that contains the target
// address.
func (pt *pageTableImpl) Remove(vAddr uint64) {
	pt.Lock()
	defer pt.Unlock()

	pt.pageMustExist(vAddr)

	elem := pt.entriesTable[vAddr]
	pt.entries.Remove(elem)
	delete(pt.entriesTable, vAddr)
}

// Find returns the page that contains the given virtual address. The bool
// return value indicates if the page is found or not.
func (pt *pageTableImpl) Find(vAddr uint64) (Page, bool) {
	pt.Lock()
	defer pt.Unlock()

	elem, found := pt.entriesTable[pt.layout.PageAlign(vAddr)]
	if found {
		return elem.Value.(Page), true
	}

	return Page{}, false
}

// Update changes the fields of an existing page. The VAddr field is used to
// locate the page to update.
func (pt *pageTableImpl) Update(page Page) {
	pt.Lock()
	defer pt.Unlock()

	pt.pageMustExist(page.VAddr)

	elem := pt.entriesTable[page.VAddr]
	elem.Value = page
}

func (pt *pageTableImpl) pageMustExist(vAddr uint64) {
	_, found := pt.entriesTable[vAddr]
	if !found {
		panic("page does not exist")
	}
}

func (pt *pageTableImpl) pageMustNotExist(vAddr uint64) {
	_, found := pt.entriesTable[vAddr]
	if found {
		panic("page already exists")
	}
}
