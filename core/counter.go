package core

import "github.com/pkg/errors"

// readTicks reads the cascaded 64-bit counter of the timer at base.
//
// The lower register free-runs and the upper one increments when it wraps,
// so the pair is read as upper, lower, upper. If the two upper reads differ
// the lower register wrapped mid-read and the whole triple is repeated.
// Only when both upper reads agree are upper and lower from the same instant.
//
// limit bounds the number of attempts; zero retries until consistent, which
// is the behavior of every exported operation. The attempt count is returned
// for diagnostics.
func readTicks(bus Bus, base uint32, limit int) (uint64, int, error) {
	attempts := 0
	for {
		attempts++
		upper := readRegister(bus, base, OffsetTCR1)
		lower := readRegister(bus, base, OffsetTCR0)
		if readRegister(bus, base, OffsetTCR1) == upper {
			return uint64(upper)<<32 | uint64(lower), attempts, nil
		}
		if limit > 0 && attempts >= limit {
			return 0, attempts, errors.Wrapf(ErrReadRetriesExhausted, "gave up after %d attempts", attempts)
		}
	}
}
