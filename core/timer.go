package core

// IntervalTimers drives the board's cascaded AXI interval timers.
//
// Each timer moves through Uninitialized -> Stopped -> Running; Stop returns
// it to Stopped and Reset zeroes it from either state. The hardware registers
// are the only state: nothing read from the bus is kept between calls.
//
// IntervalTimers holds no locks. Each timer must have a single logical owner.
type IntervalTimers struct {
	bus     Bus
	bases   [NumTimers]uint32
	clockHz float64

	// readLimit caps counter read attempts; zero means unbounded.
	// Only tests change it.
	readLimit int
}

// NewIntervalTimers binds the timers to a register bus, the per-timer base
// addresses and the timer clock frequency in Hz.
func NewIntervalTimers(bus Bus, bases [NumTimers]uint32, clockHz float64) *IntervalTimers {
	return &IntervalTimers{
		bus:     bus,
		bases:   bases,
		clockHz: clockHz,
	}
}

// ClockHz returns the timer clock frequency
func (t *IntervalTimers) ClockHz() float64 {
	return t.clockHz
}

// Base returns the base address of a timer
func (t *IntervalTimers) Base(id TimerID) (uint32, error) {
	return t.resolveBase(id)
}

// resolveBase maps a timer to its base address.
// This table is the only place the timer addresses are known.
func (t *IntervalTimers) resolveBase(id TimerID) (uint32, error) {
	if !id.Valid() {
		return 0, &ConfigurationError{ID: id}
	}
	return t.bases[id], nil
}

// Init prepares a timer for first use and verifies the result.
// Safe to call more than once.
func (t *IntervalTimers) Init(id TimerID) error {
	base, err := t.resolveBase(id)
	if err != nil {
		return err
	}

	// Clearing both control registers also selects up-counting
	clearRegister(t.bus, base, OffsetTCSR0)
	clearRegister(t.bus, base, OffsetTCSR1)
	clearRegister(t.bus, base, OffsetTLR0)
	clearRegister(t.bus, base, OffsetTLR1)

	// Load the zeroed load registers into the counters and enable cascade
	t.reset(id, base)

	// Only TCSR0 carries the cascade bit; TCSR1 is not checked
	lower := readRegister(t.bus, base, OffsetTCR0)
	upper := readRegister(t.bus, base, OffsetTCR1)
	ctrl := ControlWord(readRegister(t.bus, base, OffsetTCSR0))
	if lower != 0 || upper != 0 || ctrl != Cascade {
		RecordEvent(EvtVerifyFail, id, lower, upper)
		return &VerificationError{ID: id, Lower: lower, Upper: upper, Control: ctrl}
	}

	RecordEvent(EvtInit, id, uint32(ctrl), 0)
	return nil
}

// InitAll initializes every timer in order and stops at the first failure.
// Timers initialized before the failure are not rolled back.
func (t *IntervalTimers) InitAll() error {
	for _, id := range AllTimers {
		if err := t.Init(id); err != nil {
			return &BatchError{ID: id, Err: err}
		}
	}
	return nil
}

// Reset stops a timer and forces both counters to zero, leaving it Stopped
// with cascade enabled.
func (t *IntervalTimers) Reset(id TimerID) error {
	base, err := t.resolveBase(id)
	if err != nil {
		return err
	}
	t.reset(id, base)
	return nil
}

// ResetAll resets every timer
func (t *IntervalTimers) ResetAll() {
	for _, id := range AllTimers {
		t.reset(id, t.bases[id])
	}
}

func (t *IntervalTimers) reset(id TimerID, base uint32) {
	clearControlBits(t.bus, base, OffsetTCSR0, EnableTimer)

	// Pulse LOAD high then low on both halves; the counters take the
	// (zero) load register values while LOAD is set
	setControlBits(t.bus, base, OffsetTCSR0, Load)
	setControlBits(t.bus, base, OffsetTCSR1, Load)
	clearControlBits(t.bus, base, OffsetTCSR0, Load)
	clearControlBits(t.bus, base, OffsetTCSR1, Load)

	setControlBits(t.bus, base, OffsetTCSR0, Cascade)
	RecordEvent(EvtReset, id, 0, 0)
}

// Start sets a timer running. Starting a running timer does nothing.
func (t *IntervalTimers) Start(id TimerID) error {
	base, err := t.resolveBase(id)
	if err != nil {
		return err
	}
	setControlBits(t.bus, base, OffsetTCSR0, EnableTimer)
	RecordEvent(EvtStart, id, 0, 0)
	return nil
}

// Stop halts a timer, keeping its count. Stopping a stopped timer does nothing.
func (t *IntervalTimers) Stop(id TimerID) error {
	base, err := t.resolveBase(id)
	if err != nil {
		return err
	}
	clearControlBits(t.bus, base, OffsetTCSR0, EnableTimer)
	RecordEvent(EvtStop, id, 0, 0)
	return nil
}

// Running reports whether the timer's enable bit is set
func (t *IntervalTimers) Running(id TimerID) (bool, error) {
	ctrl, err := t.Control(id)
	if err != nil {
		return false, err
	}
	return ctrl.Has(EnableTimer), nil
}

// Control returns the raw TCSR0 value of a timer
func (t *IntervalTimers) Control(id TimerID) (ControlWord, error) {
	base, err := t.resolveBase(id)
	if err != nil {
		return 0, err
	}
	return ControlWord(readRegister(t.bus, base, OffsetTCSR0)), nil
}

// Counter returns the raw TCR0 and TCR1 values of a timer.
// The two reads are not synchronized; use Ticks for a consistent value.
func (t *IntervalTimers) Counter(id TimerID) (lower, upper uint32, err error) {
	base, err := t.resolveBase(id)
	if err != nil {
		return 0, 0, err
	}
	lower = readRegister(t.bus, base, OffsetTCR0)
	upper = readRegister(t.bus, base, OffsetTCR1)
	return lower, upper, nil
}

// Ticks returns a consistent 64-bit tick count. Valid in any state.
func (t *IntervalTimers) Ticks(id TimerID) (uint64, error) {
	base, err := t.resolveBase(id)
	if err != nil {
		return 0, err
	}

	ticks, attempts, err := readTicks(t.bus, base, t.readLimit)
	if attempts > 1 {
		RecordEvent(EvtReadRetry, id, uint32(attempts), uint32(ticks>>32))
		DebugPrintln("[TIMER] " + id.String() + " counter read took " + itoa(attempts) +
			" attempts, ticks=" + utoa64(ticks))
	}
	if err != nil {
		return 0, err
	}
	return ticks, nil
}

// ElapsedSeconds returns how long a timer has been running in total.
// Reading a running timer reports the instantaneous elapsed time.
func (t *IntervalTimers) ElapsedSeconds(id TimerID) (float64, error) {
	ticks, err := t.Ticks(id)
	if err != nil {
		return 0, err
	}
	return TicksToSeconds(ticks, t.clockHz), nil
}
