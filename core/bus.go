package core

// Bus is the register access primitive used by all core code.
// It is the single point of contact with the hardware: platform-specific
// implementations perform the actual 32-bit bus transactions.
//
// Implementations must not cache values. Every call re-issues the transaction,
// and no address validation is performed (callers are trusted).
type Bus interface {
	// Read32 reads the 32-bit register at addr
	Read32(addr uint32) uint32

	// Write32 writes value to the 32-bit register at addr
	Write32(addr uint32, value uint32)
}

// readRegister reads the register at offset from a peripheral base address
func readRegister(bus Bus, base uint32, offset uint32) uint32 {
	return bus.Read32(base + offset)
}

// writeRegister writes value to the register at offset from a peripheral base address
func writeRegister(bus Bus, base uint32, offset uint32, value uint32) {
	bus.Write32(base+offset, value)
}
