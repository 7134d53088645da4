package sim

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec float64

// Defines the commonly used units of simulated time
const (
	Picosecond  VTimeInSec = 1e-12
	Nanosecond  VTimeInSec = 1e-9
	Microsecond VTimeInSec = 1e-6
	Millisecond VTimeInSec = 1e-3
	Second      VTimeInSec = 1
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// A Clock keeps the simulated time and can move it forward. Components
// charge the cost of their operations to a Clock.
type Clock interface {
	TimeTeller

	// Advance moves the simulated time forward by delta.
	Advance(delta VTimeInSec)
}
