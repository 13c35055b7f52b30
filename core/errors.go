package core

import (
	"strconv"

	"github.com/pkg/errors"
)

// ErrReadRetriesExhausted is returned by the counter reader only when a retry
// limit has been configured and no two consecutive upper-register reads agreed
var ErrReadRetriesExhausted = errors.New("counter read retries exhausted")

// ConfigurationError reports a timer identifier that does not name a
// physical timer. No register is touched when it is returned.
type ConfigurationError struct {
	ID   TimerID
	Name string // Set when the identifier could not be parsed at all
}

func (e *ConfigurationError) Error() string {
	if e.Name != "" {
		return "unknown interval timer " + strconv.Quote(e.Name)
	}
	return "unknown interval timer " + itoa(int(e.ID))
}

// VerificationError reports that the registers did not read back as
// expected after Init: both counters zero and only Cascade set in TCSR0.
// It points at a hardware or wiring fault; retrying does not help.
type VerificationError struct {
	ID      TimerID
	Lower   uint32      // TCR0 readback
	Upper   uint32      // TCR1 readback
	Control ControlWord // TCSR0 readback
}

func (e *VerificationError) Error() string {
	return e.ID.String() + " failed init verification: tcr0=" + hex32(e.Lower) +
		" tcr1=" + hex32(e.Upper) + " tcsr0=" + e.Control.String()
}

// BatchError is returned by InitAll for the first timer that failed.
// Timers initialized before it are left as they are.
type BatchError struct {
	ID  TimerID
	Err error
}

func (e *BatchError) Error() string {
	return "init all: " + e.ID.String() + ": " + e.Err.Error()
}

// Unwrap returns the per-timer error
func (e *BatchError) Unwrap() error { return e.Err }

// Cause returns the per-timer error (github.com/pkg/errors convention)
func (e *BatchError) Cause() error { return e.Err }
