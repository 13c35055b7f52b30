package core

// Default AXI timer clock on the Zybo board
const DefaultClockHz = 100000000

// TicksToSeconds converts a tick count to seconds at the given clock rate.
// No rounding is applied beyond native floating-point division.
func TicksToSeconds(ticks uint64, clockHz float64) float64 {
	return float64(ticks) / clockHz
}

// SecondsToTicks converts seconds to the nearest whole tick count
func SecondsToTicks(seconds float64, clockHz float64) uint64 {
	return uint64(seconds*clockHz + 0.5)
}

// MillisToTicks converts milliseconds to ticks at the given clock rate
func MillisToTicks(ms uint32, clockHz float64) uint64 {
	return uint64(float64(ms) * clockHz / 1000)
}
