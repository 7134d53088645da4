package vm

// AccessType distinguishes read accesses from write accesses.
type AccessType int

// The access types a translation request can carry.
const (
	AccessRead AccessType = iota
	AccessWrite
)

// IsWrite returns true if the access modifies memory.
func (t AccessType) IsWrite() bool {
	return t == AccessWrite
}

func (t AccessType) String() string {
	if t == AccessWrite {
		return "write"
	}

	return "read"
}
