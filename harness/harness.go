// Package harness exercises the interval timers the way the board bring-up
// procedure does: timed runs against a delay source, printed register
// values, and a check that measured run times match the requested ones.
package harness

import (
	"fmt"
	"io"
	"math"

	"zynqhal/core"
)

// Delays used by the timer self-test
const (
	OneSecondMS       = 1000
	TenSecondMS       = 10000
	FortyFiveSecondMS = 45000
)

// Harness runs self-tests against a set of interval timers
type Harness struct {
	Timers *core.IntervalTimers
	Delay  core.Delayer
	Out    io.Writer

	// Allowed difference between measured and requested run time in
	// seconds. Zero disables the check.
	Tolerance float64
}

// New creates a harness that prints its progress to out
func New(timers *core.IntervalTimers, delay core.Delayer, out io.Writer) *Harness {
	if out == nil {
		out = io.Discard
	}
	return &Harness{
		Timers: timers,
		Delay:  delay,
		Out:    out,
	}
}

// Step is one measured run of a self-test
type Step struct {
	Name     string
	Expected float64 // Seconds
	Measured float64 // Seconds
	Lower    uint32  // TCR0 after the run
	Upper    uint32  // TCR1 after the run
}

// Report collects the steps of one timer's self-test
type Report struct {
	Timer core.TimerID
	Steps []Step
}

// ToleranceError reports a run whose measured time is out of tolerance
type ToleranceError struct {
	Timer    core.TimerID
	Step     string
	Expected float64
	Measured float64
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("%s: %s measured %.6f s, expected %.6f s", e.Timer, e.Step, e.Measured, e.Expected)
}

// CascadeError reports a long run that never carried into the upper counter
type CascadeError struct {
	Timer core.TimerID
	Lower uint32
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s: counter did not cascade into TCR1 (TCR0=%d)", e.Timer, e.Lower)
}

func (h *Harness) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.Out, format, args...)
}

// run starts the timer, waits ms and optionally stops it again
func (h *Harness) run(id core.TimerID, ms uint32, stop bool) error {
	if err := h.Timers.Start(id); err != nil {
		return err
	}
	h.Delay.DelayMS(ms)
	if stop {
		return h.Timers.Stop(id)
	}
	return nil
}

// measure records the counter and elapsed time as a step
func (h *Harness) measure(report *Report, name string, expected float64) (Step, error) {
	lower, upper, err := h.Timers.Counter(report.Timer)
	if err != nil {
		return Step{}, err
	}
	secs, err := h.Timers.ElapsedSeconds(report.Timer)
	if err != nil {
		return Step{}, err
	}

	step := Step{Name: name, Expected: expected, Measured: secs, Lower: lower, Upper: upper}
	report.Steps = append(report.Steps, step)

	if h.Tolerance > 0 && math.Abs(secs-expected) > h.Tolerance {
		return step, &ToleranceError{Timer: report.Timer, Step: name, Expected: expected, Measured: secs}
	}
	return step, nil
}

// RunTimerTest runs the bring-up self-test on one timer: init, a one
// second run, reset, one and ten second runs, reset, and a forty-five
// second run long enough to carry into the upper counter. The timer is
// reset when the test completes.
func (h *Harness) RunTimerTest(id core.TimerID) (*Report, error) {
	report := &Report{Timer: id}

	h.printf("Testing %s\n", id)
	if err := h.Timers.Init(id); err != nil {
		return report, err
	}
	step, err := h.measure(report, "init", 0)
	if err != nil {
		return report, err
	}
	h.printf("Initialized %s. Value in register: %d\n", id, step.Lower)

	h.printf("Starting timer\n")
	if err := h.run(id, OneSecondMS, true); err != nil {
		return report, err
	}
	if step, err = h.measure(report, "first second", 1); err != nil {
		return report, err
	}
	h.printf("Timer stopped. Value in register: %d\n", step.Lower)

	h.printf("Resetting timer\n")
	if err := h.Timers.Reset(id); err != nil {
		return report, err
	}
	if step, err = h.measure(report, "reset", 0); err != nil {
		return report, err
	}
	h.printf("Timer reset. Value in register: %d\n", step.Lower)

	h.printf("Running for 1 second, then 10 more seconds\n")
	if err := h.run(id, OneSecondMS, true); err != nil {
		return report, err
	}
	if step, err = h.measure(report, "one second", 1); err != nil {
		return report, err
	}
	h.printf("Value in register after 1 second: %d\n", step.Lower)
	h.printf("Run time in seconds: %f\n", step.Measured)

	if err := h.run(id, TenSecondMS, true); err != nil {
		return report, err
	}
	if step, err = h.measure(report, "ten more seconds", 11); err != nil {
		return report, err
	}
	h.printf("Value in register after 10 more seconds: %d\n", step.Lower)
	h.printf("Run time in seconds: %f\n", step.Measured)

	h.printf("Resetting timer\n")
	if err := h.Timers.Reset(id); err != nil {
		return report, err
	}

	h.printf("Running for 45 seconds (long enough to cascade into the upper register)\n")
	if err := h.run(id, FortyFiveSecondMS, false); err != nil {
		return report, err
	}
	// Read while still running
	if step, err = h.measure(report, "forty-five seconds", 45); err != nil {
		return report, err
	}
	h.printf("Value in upper register: %d\n", step.Upper)
	h.printf("Value in lower register: %d\n", step.Lower)
	h.printf("Run time in seconds: %f\n", step.Measured)

	if core.SecondsToTicks(45, h.Timers.ClockHz()) > math.MaxUint32 && step.Upper == 0 {
		return report, &CascadeError{Timer: id, Lower: step.Lower}
	}

	h.printf("%s test complete. Resetting timer\n", id)
	if err := h.Timers.Reset(id); err != nil {
		return report, err
	}
	return report, nil
}

// RunAll tests every timer in order and stops at the first failure
func (h *Harness) RunAll() ([]*Report, error) {
	reports := make([]*Report, 0, core.NumTimers)
	for _, id := range core.AllTimers {
		report, err := h.RunTimerTest(id)
		reports = append(reports, report)
		if err != nil {
			h.printf("%s test failed: %v\n", id, err)
			return reports, &core.BatchError{ID: id, Err: err}
		}
	}
	return reports, nil
}
