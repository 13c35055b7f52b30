// Package mmio provides register buses backed by real memory-mapped I/O.
//
// On embedded Linux, DevMem maps the peripheral windows out of /dev/mem.
// On bare metal (tinygo builds), Volatile dereferences physical addresses
// directly.
package mmio

// DefaultDevMem is the physical memory device on Linux
const DefaultDevMem = "/dev/mem"

// DefaultWindow is the size of one AXI peripheral address window
const DefaultWindow = 0x10000

// Region is a physical address window to map
type Region struct {
	Base uint32
	Size uint32
}

// Contains reports whether the 32-bit register at addr lies inside r
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Base && uint64(addr-r.Base)+4 <= uint64(r.Size)
}

// Windows returns one DefaultWindow-sized region per base address
func Windows(bases ...uint32) []Region {
	regions := make([]Region, 0, len(bases))
	for _, b := range bases {
		regions = append(regions, Region{Base: b, Size: DefaultWindow})
	}
	return regions
}

// pageSpan widens a region to whole pages, as mmap requires.
// It returns the page-aligned start and the mapping length.
func pageSpan(r Region, pageSize uint32) (start uint32, length int) {
	start = r.Base &^ (pageSize - 1)
	end := uint64(r.Base) + uint64(r.Size)
	end = (end + uint64(pageSize) - 1) &^ uint64(pageSize-1)
	return start, int(end - uint64(start))
}
