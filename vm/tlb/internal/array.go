// Package internal provides the entry array that backs one TLB level.
package internal

// An Entry is one slot of a TLB level. The zero value is an empty slot.
type Entry struct {
	Valid      bool
	Dirty      bool
	LastAccess uint64
	VPN        uint64
	PPN        uint64
}

// An Array is a fully associative array of translation entries. Slots are
// addressed by their index in scan order. Recency is tracked with a logical
// clock that only the mutating operations advance.
type Array interface {
	// Capacity returns the number of slots in the array.
	Capacity() int

	// At returns a copy of the entry in the given slot.
	At(slot int) Entry

	// Find returns the slot that holds a valid entry for vpn.
	Find(vpn uint64) (slot int, found bool)

	// ChooseVictim returns the slot to fill next. It prefers invalid slots.
	// If all slots are valid, it returns the least recently used one,
	// breaking ties by the lowest slot index.
	ChooseVictim() int

	// Update overwrites the physical page of an existing entry, ORs in the
	// dirty flag, and marks the entry as most recently used.
	Update(slot int, ppn uint64, dirty bool)

	// Fill replaces the slot with a fresh entry for vpn.
	Fill(slot int, vpn, ppn uint64, dirty bool)

	// Touch marks the slot as most recently used.
	Touch(slot int)

	// MarkDirty sets the dirty flag of the slot.
	MarkDirty(slot int)

	// Reset returns the slot to the empty state.
	Reset(slot int)

	// Clear empties all slots and restarts the recency clock.
	Clear()
}

// NewArray creates an Array with the given number of slots.
func NewArray(capacity int) Array {
	return &arrayImpl{
		entries: make([]Entry, capacity),
	}
}

type arrayImpl struct {
	entries    []Entry
	visitCount uint64
}

func (a *arrayImpl) Capacity() int {
	return len(a.entries)
}

func (a *arrayImpl) At(slot int) Entry {
	return a.entries[slot]
}

func (a *arrayImpl) Find(vpn uint64) (slot int, found bool) {
	for i := range a.entries {
		if a.entries[i].Valid && a.entries[i].VPN == vpn {
			return i, true
		}
	}

	return 0, false
}

func (a *arrayImpl) ChooseVictim() int {
	victim := 0

	for i := range a.entries {
		if !a.entries[i].Valid {
			return i
		}

		if a.entries[i].LastAccess < a.entries[victim].LastAccess {
			victim = i
		}
	}

	return victim
}

func (a *arrayImpl) Update(slot int, ppn uint64, dirty bool) {
	a.visitCount++

	entry := &a.entries[slot]
	entry.Valid = true
	entry.Dirty = entry.Dirty || dirty
	entry.LastAccess = a.visitCount
	entry.PPN = ppn
}

func (a *arrayImpl) Fill(slot int, vpn, ppn uint64, dirty bool) {
	a.visitCount++

	a.entries[slot] = Entry{
		Valid:      true,
		Dirty:      dirty,
		LastAccess: a.visitCount,
		VPN:        vpn,
		PPN:        ppn,
	}
}

func (a *arrayImpl) Touch(slot int) {
	a.visitCount++
	a.entries[slot].LastAccess = a.visitCount
}

func (a *arrayImpl) MarkDirty(slot int) {
	a.entries[slot].Dirty = true
}

func (a *arrayImpl) Reset(slot int) {
	a.entries[slot] = Entry{}
}

func (a *arrayImpl) Clear() {
	for i := range a.entries {
		a.entries[i] = Entry{}
	}

	a.visitCount = 0
}
