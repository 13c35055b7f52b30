package sim

// AXI GPIO register map (single channel)
const (
	regGPIOData = 0x00
	regGPIOTri  = 0x04
)

// gpioBlock is a single-channel AXI GPIO wired to input-only lines
type gpioBlock struct {
	base   uint32
	mask   uint32 // Implemented lines
	inputs uint32 // Levels driven onto the lines
	tri    uint32
}

func (g *gpioBlock) read(off uint32) uint32 {
	switch off {
	case regGPIOData:
		return g.inputs
	case regGPIOTri:
		return g.tri
	}
	return 0
}

func (g *gpioBlock) write(off uint32, value uint32) {
	if off == regGPIOTri {
		g.tri = value & g.mask
	}
	// Data register is driven by the inputs
}
