package sim

// AXI timer register map as seen from the bus
const (
	regTCSR0 = 0x00
	regTLR0  = 0x04
	regTCR0  = 0x08
	regTCSR1 = 0x10
	regTLR1  = 0x14
	regTCR1  = 0x18
)

// Control/status bits modelled by the simulator
const (
	csrUDT  = 1 << 1  // Count down
	csrLOAD = 1 << 5  // Hold counter at the load value
	csrENT  = 1 << 7  // Enable counting
	csrCASC = 1 << 11 // Counter 1 counts counter 0 wraps (TCSR0 only)
)

// axiTimer is one dual 32-bit AXI timer. In cascade mode TCSR0 controls the
// whole 64-bit counter and TCSR1's enable and direction bits are ignored.
type axiTimer struct {
	base uint32
	tcsr [2]uint32
	tlr  [2]uint32
	tcr  [2]uint32
}

func (t *axiTimer) read(off uint32) uint32 {
	switch off {
	case regTCSR0:
		return t.tcsr[0]
	case regTLR0:
		return t.tlr[0]
	case regTCR0:
		return t.tcr[0]
	case regTCSR1:
		return t.tcsr[1]
	case regTLR1:
		return t.tlr[1]
	case regTCR1:
		return t.tcr[1]
	}
	return 0
}

func (t *axiTimer) write(off uint32, value uint32) {
	switch off {
	case regTCSR0:
		t.writeControl(0, value)
	case regTLR0:
		t.tlr[0] = value
	case regTCSR1:
		t.writeControl(1, value)
	case regTLR1:
		t.tlr[1] = value
	}
	// Counter registers are read-only
}

func (t *axiTimer) writeControl(n int, value uint32) {
	t.tcsr[n] = value
	if value&csrLOAD != 0 {
		t.tcr[n] = t.tlr[n]
	}
}

// running reports whether counter n counts on its own clock
func (t *axiTimer) running(n int) bool {
	return t.tcsr[n]&csrENT != 0 && t.tcsr[n]&csrLOAD == 0
}

func (t *axiTimer) advance(ticks uint64) {
	if ticks == 0 {
		return
	}

	if t.tcsr[0]&csrCASC != 0 {
		if !t.running(0) || t.tcsr[1]&csrLOAD != 0 {
			return
		}
		v := uint64(t.tcr[1])<<32 | uint64(t.tcr[0])
		if t.tcsr[0]&csrUDT != 0 {
			v -= ticks
		} else {
			v += ticks
		}
		t.tcr[0] = uint32(v)
		t.tcr[1] = uint32(v >> 32)
		return
	}

	// Independent 32-bit counters
	for n := 0; n < 2; n++ {
		if !t.running(n) {
			continue
		}
		if t.tcsr[n]&csrUDT != 0 {
			t.tcr[n] -= uint32(ticks)
		} else {
			t.tcr[n] += uint32(ticks)
		}
	}
}
