package harness

import (
	"image/color"

	"zynqhal/core"
)

// Bar colors
var (
	colorRunning = color.RGBA{R: 0x00, G: 0xC0, B: 0x00, A: 0xFF}
	colorStopped = color.RGBA{R: 0xC0, G: 0x00, B: 0x00, A: 0xFF}
	colorEmpty   = color.RGBA{A: 0xFF}
)

// StatusDisplay draws one horizontal bar per timer. A bar fills once per
// FullScale seconds of elapsed time and is green while the timer runs.
type StatusDisplay struct {
	display   core.Display
	timers    *core.IntervalTimers
	FullScale float64
}

// NewStatusDisplay creates a status screen on display
func NewStatusDisplay(display core.Display, timers *core.IntervalTimers, fullScale float64) *StatusDisplay {
	if fullScale <= 0 {
		fullScale = 60
	}
	return &StatusDisplay{display: display, timers: timers, FullScale: fullScale}
}

// barFill returns how many of width pixels represent secs
func (s *StatusDisplay) barFill(secs float64, width int16) int16 {
	cycles := secs / s.FullScale
	frac := cycles - float64(int64(cycles))
	return int16(frac * float64(width))
}

// Update redraws every bar and flushes the display
func (s *StatusDisplay) Update() error {
	width, height := s.display.Size()
	rowHeight := height / core.NumTimers
	margin := rowHeight / 5

	for i, id := range core.AllTimers {
		secs, err := s.timers.ElapsedSeconds(id)
		if err != nil {
			return err
		}
		running, err := s.timers.Running(id)
		if err != nil {
			return err
		}

		fg := colorStopped
		if running {
			fg = colorRunning
		}
		fill := s.barFill(secs, width)

		top := int16(i)*rowHeight + margin
		bottom := int16(i+1)*rowHeight - margin
		for y := top; y < bottom; y++ {
			for x := int16(0); x < width; x++ {
				if x < fill {
					s.display.SetPixel(x, y, fg)
				} else {
					s.display.SetPixel(x, y, colorEmpty)
				}
			}
		}
	}
	return s.display.Display()
}
