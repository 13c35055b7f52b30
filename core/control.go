package core

// setControlBits sets mask in a control register without disturbing other bits
func setControlBits(bus Bus, base uint32, offset uint32, mask ControlWord) {
	w := ControlWord(readRegister(bus, base, offset))
	writeRegister(bus, base, offset, uint32(w.Set(mask)))
}

// clearControlBits clears mask in a control register without disturbing other bits
func clearControlBits(bus Bus, base uint32, offset uint32, mask ControlWord) {
	w := ControlWord(readRegister(bus, base, offset))
	writeRegister(bus, base, offset, uint32(w.Clear(mask)))
}

// clearRegister unconditionally zeroes a register.
// Only used during initialization, where no prior state is kept.
func clearRegister(bus Bus, base uint32, offset uint32) {
	writeRegister(bus, base, offset, 0)
}
