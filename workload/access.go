// Package workload generates and replays the memory accesses that drive a
// simulation.
package workload

// Op is the kind of operation an access performs.
type Op int

// The operations a workload can carry.
const (
	OpRead Op = iota
	OpWrite
	OpInvalidate
)

// An Access is one operation of a workload. For reads and writes, Addr is a
// virtual address. For invalidations, Addr is a virtual page number.
type Access struct {
	Op   Op
	Addr uint64
}

// An AccessSource produces the accesses of a workload one by one. It returns
// false when the workload is exhausted.
type AccessSource interface {
	NextAccess() (Access, bool)
}
