package core

import drivers "tinygo.org/x/drivers"

// Collaborators that run alongside the interval timers. The core never
// calls them; test harnesses and applications do.

// Buttons is a bank of push buttons read as a bit mask (bit n = button n)
type Buttons interface {
	// Init configures the buttons as inputs and verifies the configuration
	Init() error

	// Read returns the current pressed mask
	Read() uint32
}

// Switches is a bank of slide switches read as a bit mask (bit n = switch n)
type Switches interface {
	// Init configures the switches as inputs and verifies the configuration
	Init() error

	// Read returns the current switch positions
	Read() uint32
}

// Delayer is a millisecond busy-wait primitive.
// Harnesses use it between start and stop; the core does not.
type Delayer interface {
	DelayMS(ms uint32)
}

// DelayFunc adapts an ordinary function to a Delayer
type DelayFunc func(ms uint32)

// DelayMS calls f(ms)
func (f DelayFunc) DelayMS(ms uint32) { f(ms) }

// Display is the pixel display output used by status screens
type Display = drivers.Displayer
