package core

// AXI timer register offsets, relative to a timer's base address.
// The timer is a pair of 32-bit counters: counter 0 is the lower half and
// counter 1 the upper half when cascaded.
const (
	OffsetTCSR0 = 0x00 // Control/status register 0
	OffsetTLR0  = 0x04 // Load register 0
	OffsetTCR0  = 0x08 // Counter register 0 (lower 32 bits)
	OffsetTCSR1 = 0x10 // Control/status register 1
	OffsetTLR1  = 0x14 // Load register 1
	OffsetTCR1  = 0x18 // Counter register 1 (upper 32 bits)
)

// Bit positions inside a control/status register
const (
	bitDownCount   = 1  // UDT
	bitLoad        = 5  // LOAD
	bitEnableTimer = 7  // ENT
	bitCascade     = 11 // CASC
)

// ControlWord is the value of a timer control/status register
type ControlWord uint32

// Control/status register flags
const (
	DownCount   ControlWord = 1 << bitDownCount   // Count down; up-counting when clear
	Load        ControlWord = 1 << bitLoad        // Load counter from the load register
	EnableTimer ControlWord = 1 << bitEnableTimer // Counter running
	Cascade     ControlWord = 1 << bitCascade     // Counter 1 counts counter 0 wraps
)

// Has reports whether all bits in mask are set
func (w ControlWord) Has(mask ControlWord) bool {
	return w&mask == mask
}

// Set returns w with the bits in mask set
func (w ControlWord) Set(mask ControlWord) ControlWord {
	return w | mask
}

// Clear returns w with the bits in mask cleared
func (w ControlWord) Clear(mask ControlWord) ControlWord {
	return w &^ mask
}

// String lists the named flags that are set, e.g. "CASC|ENT"
func (w ControlWord) String() string {
	if w == 0 {
		return "0"
	}

	names := [...]struct {
		flag ControlWord
		name string
	}{
		{Cascade, "CASC"},
		{EnableTimer, "ENT"},
		{Load, "LOAD"},
		{DownCount, "UDT"},
	}

	s := ""
	rest := w
	for _, n := range names {
		if w.Has(n.flag) {
			if s != "" {
				s += "|"
			}
			s += n.name
			rest = rest.Clear(n.flag)
		}
	}
	if rest != 0 {
		if s != "" {
			s += "|"
		}
		s += hex32(uint32(rest))
	}
	return s
}
