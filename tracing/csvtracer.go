package tracing

import (
	"sync"

	"github.com/sarchlab/vmsim/sim"
	"github.com/tebeka/atexit"
)

// CSVTracer is a tracer that stores finished tasks with a CSVTraceWriter.
type CSVTracer struct {
	lock         sync.Mutex
	timeTeller   sim.TimeTeller
	writer       *CSVTraceWriter
	tracingTasks map[string]Task
}

// NewCSVTracer creates a new CSVTracer. The writer must be initialized
// before tracing starts.
func NewCSVTracer(
	timeTeller sim.TimeTeller,
	writer *CSVTraceWriter,
) *CSVTracer {
	t := &CSVTracer{
		timeTeller:   timeTeller,
		writer:       writer,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() { t.writer.Flush() })

	return t
}

// StartTask marks the start of a task.
func (t *CSVTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	t.tracingTasks[task.ID] = task
}

// StepTask stamps the step with the current time and attaches it to the
// in-flight task.
func (t *CSVTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	step := task.Steps[0]
	step.Time = t.timeTeller.CurrentTime()
	originalTask.Steps = append(originalTask.Steps, step)

	t.tracingTasks[task.ID] = originalTask
}

// EndTask writes the finished task to the CSV file.
func (t *CSVTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = t.timeTeller.CurrentTime()
	delete(t.tracingTasks, task.ID)

	t.writer.Write(originalTask)
}
