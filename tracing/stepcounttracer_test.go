package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/sim"
)

var _ = Describe("StepCountTracer", func() {
	var (
		domain *sim.ComponentBase
		tracer *StepCountTracer
	)

	BeforeEach(func() {
		domain = sim.NewComponentBase("domain")
		tracer = NewStepCountTracer(func(t Task) bool {
			return t.Kind == "translate"
		})

		CollectTrace(domain, tracer)
	})

	It("should count steps by name", func() {
		StartTask("1", "", domain, "translate", "read", nil)
		AddTaskStep("1", domain, "l1-miss")
		AddTaskStep("1", domain, "l2-hit")
		EndTask("1", domain)

		StartTask("2", "", domain, "translate", "read", nil)
		AddTaskStep("2", domain, "l1-miss")
		EndTask("2", domain)

		Expect(tracer.GetStepNames()).
			To(Equal([]string{"l1-miss", "l2-hit"}))
		Expect(tracer.GetStepCount("l1-miss")).To(Equal(uint64(2)))
		Expect(tracer.GetStepCount("l2-hit")).To(Equal(uint64(1)))
	})

	It("should count each step once per task", func() {
		StartTask("1", "", domain, "translate", "write", nil)
		AddTaskStep("1", domain, "writeback-to-l2")
		AddTaskStep("1", domain, "writeback-to-l2")
		EndTask("1", domain)

		Expect(tracer.GetStepCount("writeback-to-l2")).To(Equal(uint64(2)))
		Expect(tracer.GetTaskCount("writeback-to-l2")).To(Equal(uint64(1)))
	})
})
