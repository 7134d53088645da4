// Package vm provides the data structures for address translation.
package vm

// An AddressLayout describes how a linear address splits into a page number
// and an in-page offset. The split is controlled by the page size, given as
// a power of 2.
type AddressLayout struct {
	Log2PageSize uint64
}

// PageSize returns the size of a page in bytes.
func (l AddressLayout) PageSize() uint64 {
	return 1 << l.Log2PageSize
}

// VPN extracts the virtual page number from a virtual address.
func (l AddressLayout) VPN(vAddr uint64) uint64 {
	return vAddr >> l.Log2PageSize
}

// PPN extracts the physical page number from a physical address.
func (l AddressLayout) PPN(pAddr uint64) uint64 {
	return pAddr >> l.Log2PageSize
}

// Offset extracts the in-page offset from an address. Virtual and physical
// addresses of the same access share the offset.
func (l AddressLayout) Offset(addr uint64) uint64 {
	return addr & (l.PageSize() - 1)
}

// Compose combines a page number and an in-page offset into a full address.
func (l AddressLayout) Compose(pageNum, offset uint64) uint64 {
	return pageNum<<l.Log2PageSize | offset
}

// PageAlign rounds an address down to the start of its page.
func (l AddressLayout) PageAlign(addr uint64) uint64 {
	return addr >> l.Log2PageSize << l.Log2PageSize
}
