package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/vmsim/sim"
)

// CollectTrace registers a tracer with a domain. The tasks of the domain are
// delivered to the tracer from then on. Registering the same tracer twice on
// one domain panics.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook forwards task hook events from a domain to one tracer.
type traceHook struct {
	t Tracer
}

// Func dispatches the hooked task to the tracer method that matches the
// hook position.
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		h.t.StartTask(ctx.Item.(Task))
	case HookPosTaskStep:
		h.t.StepTask(ctx.Item.(Task))
	case HookPosTaskEnd:
		h.t.EndTask(ctx.Item.(Task))
	}
}
