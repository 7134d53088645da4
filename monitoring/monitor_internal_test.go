package monitoring

import (
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/sim"
)

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should register components", func() {
		c := sim.NewComponentBase("Comp")
		m.RegisterComponent(c)

		Expect(m.components).To(HaveLen(1))
	})

	It("should find registered components by name", func() {
		c := sim.NewComponentBase("Comp")
		m.RegisterComponent(c)

		w := httptest.NewRecorder()
		found := m.findComponentOr404(w, "Comp")

		Expect(found).To(BeIdenticalTo(sim.Component(c)))
	})

	It("should respond 404 for unknown components", func() {
		w := httptest.NewRecorder()
		found := m.findComponentOr404(w, "NoSuchComp")

		Expect(found).To(BeNil())
		Expect(w.Code).To(Equal(404))
	})

	It("should report the simulated time", func() {
		clock := sim.NewAccumulator()
		clock.Advance(2 * sim.Nanosecond)
		m.RegisterClock(clock)

		w := httptest.NewRecorder()
		m.now(w, nil)

		Expect(w.Body.String()).To(Equal("{\"now\":0.0000000020}"))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("accesses", 100)
		bar.IncrementFinished(10)

		Expect(m.progressBars).To(HaveLen(1))
		Expect(bar.Finished).To(Equal(uint64(10)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should serve the finished count on the progress endpoint", func() {
		bar := m.CreateProgressBar("accesses", 100)
		bar.IncrementFinished(42)

		w := httptest.NewRecorder()
		m.listProgressBars(w, nil)

		Expect(w.Body.String()).To(ContainSubstring("\"name\":\"accesses\""))
		Expect(w.Body.String()).To(ContainSubstring("\"total\":100"))
		Expect(w.Body.String()).To(ContainSubstring("\"finished\":42"))
	})
})
