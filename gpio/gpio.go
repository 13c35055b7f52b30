// Package gpio drives the board's AXI GPIO input blocks: the push buttons
// and the slide switches. Both are a single data register and a tri-state
// register; neither has any state worth modelling in software.
package gpio

import (
	"github.com/pkg/errors"

	"zynqhal/core"
)

// AXI GPIO register offsets
const (
	OffsetData = 0x00
	OffsetTri  = 0x04
)

const (
	allInput = 0x00
	lineMask = 0x0F // Four buttons, four switches
)

// Bit masks for the push buttons
const (
	Btn0 = 1 << iota
	Btn1
	Btn2
	Btn3
)

// ErrNotInput is returned by Init when the tri-state register does not
// read back as all inputs
var ErrNotInput = errors.New("gpio: tri-state register not set to input")

// Input is a four-line GPIO input block
type Input struct {
	bus  core.Bus
	base uint32
	name string
}

// Buttons returns the push button block at base
func Buttons(bus core.Bus, base uint32) *Input {
	return &Input{bus: bus, base: base, name: "buttons"}
}

// Switches returns the slide switch block at base
func Switches(bus core.Bus, base uint32) *Input {
	return &Input{bus: bus, base: base, name: "switches"}
}

// Init sets every line to input and checks the tri-state register took it
func (in *Input) Init() error {
	in.bus.Write32(in.base+OffsetTri, allInput)
	if tri := in.bus.Read32(in.base + OffsetTri); tri != allInput {
		return errors.Wrapf(ErrNotInput, "%s at %#08x reads %#x", in.name, in.base, tri)
	}
	return nil
}

// Read returns the line levels, one bit per line
func (in *Input) Read() uint32 {
	return in.bus.Read32(in.base+OffsetData) & lineMask
}

// AllPressed reports whether every line is high
func AllPressed(levels uint32) bool {
	return levels&lineMask == lineMask
}

var (
	_ core.Buttons  = (*Input)(nil)
	_ core.Switches = (*Input)(nil)
)
