package harness

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"zynqhal/core"
)

// Stats summarizes repeated timed runs of one timer
type Stats struct {
	Timer    core.TimerID
	Expected float64 // Requested run time in seconds
	Samples  []float64
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// Offset returns the mean deviation from the requested run time
func (s *Stats) Offset() float64 {
	return s.Mean - s.Expected
}

func (s *Stats) String() string {
	return fmt.Sprintf("%s: %d runs of %.3f s: mean %.9f s, stddev %.3g s, min %.9f s, max %.9f s",
		s.Timer, len(s.Samples), s.Expected, s.Mean, s.StdDev, s.Min, s.Max)
}

// Measure resets, runs for ms and stops the timer runs times, and reports
// the distribution of the measured run times. It needs at least two runs.
func (h *Harness) Measure(id core.TimerID, ms uint32, runs int) (*Stats, error) {
	if runs < 2 {
		return nil, errors.Errorf("measure needs at least 2 runs, got %d", runs)
	}

	samples := make([]float64, 0, runs)
	for i := 0; i < runs; i++ {
		if err := h.Timers.Reset(id); err != nil {
			return nil, err
		}
		if err := h.run(id, ms, true); err != nil {
			return nil, err
		}
		secs, err := h.Timers.ElapsedSeconds(id)
		if err != nil {
			return nil, err
		}
		samples = append(samples, secs)
	}
	if err := h.Timers.Reset(id); err != nil {
		return nil, err
	}

	mean, std := stat.MeanStdDev(samples, nil)
	return &Stats{
		Timer:    id,
		Expected: float64(ms) / 1000,
		Samples:  samples,
		Mean:     mean,
		StdDev:   std,
		Min:      floats.Min(samples),
		Max:      floats.Max(samples),
	}, nil
}
