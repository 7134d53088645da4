package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar reports how far a workload has run. The runner increments
// the finished count as accesses complete and the monitor serves the bar on
// its progress endpoint. Total may be 0 when the workload length is not
// known up front, such as when replaying a trace file.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished adds a certain amount to the finished count.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}
