package workload

import (
	"fmt"
	"os"
	"sync"

	"github.com/sarchlab/vmsim/vm"
)

// A TranslationService can translate virtual addresses and invalidate
// translations. It is the part of the TLB surface that a workload drives.
type TranslationService interface {
	Translate(vAddr uint64, access vm.AccessType) (pAddr uint64, err error)
	Invalidate(vpn uint64)
}

// A ProgressCounter is notified when accesses complete.
type ProgressCounter interface {
	IncrementFinished(amount uint64)
}

// A Runner drives a TranslationService with the accesses of an
// AccessSource. A monitor can pause and continue a running workload.
type Runner struct {
	service TranslationService
	source  AccessSource

	progress       ProgressCounter
	reportInterval uint64

	pauseLock sync.Mutex
}

// NewRunner creates a Runner that feeds the accesses from source into
// service.
func NewRunner(service TranslationService, source AccessSource) *Runner {
	return &Runner{
		service:        service,
		source:         source,
		reportInterval: 1000000,
	}
}

// WithProgressCounter lets the runner report completed accesses to a
// counter, such as a monitoring progress bar.
func (r *Runner) WithProgressCounter(c ProgressCounter) *Runner {
	r.progress = c
	return r
}

// Run performs all the accesses of the workload. It returns the number of
// completed accesses and the first error that the translation service
// reports, if any.
func (r *Runner) Run() (uint64, error) {
	var completed uint64

	for {
		r.pauseLock.Lock()

		access, ok := r.source.NextAccess()
		if !ok {
			r.pauseLock.Unlock()
			break
		}

		err := r.perform(access)
		r.pauseLock.Unlock()

		if err != nil {
			return completed, err
		}

		completed++
		r.reportProgress(completed)
	}

	return completed, nil
}

func (r *Runner) perform(access Access) error {
	switch access.Op {
	case OpRead:
		_, err := r.service.Translate(access.Addr, vm.AccessRead)
		return err
	case OpWrite:
		_, err := r.service.Translate(access.Addr, vm.AccessWrite)
		return err
	case OpInvalidate:
		r.service.Invalidate(access.Addr)
		return nil
	default:
		panic(fmt.Sprintf("unknown op %d", access.Op))
	}
}

func (r *Runner) reportProgress(completed uint64) {
	if r.progress != nil {
		r.progress.IncrementFinished(1)
	}

	if completed%r.reportInterval == 0 {
		fmt.Fprintf(os.Stderr, "Completed %d accesses\n", completed)
	}
}

// Pause stops the runner before its next access. It blocks until the
// in-flight access completes.
func (r *Runner) Pause() {
	r.pauseLock.Lock()
}

// Continue resumes a paused runner.
func (r *Runner) Continue() {
	r.pauseLock.Unlock()
}
