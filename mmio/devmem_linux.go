//go:build linux && !tinygo

package mmio

import (
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DevMem is a register bus over /dev/mem mappings
type DevMem struct {
	f       *os.File
	windows []window
}

type window struct {
	base uint32
	mem  []byte
}

// OpenDevMem maps each region of physical memory through the device at path
// (normally /dev/mem). The caller needs CAP_SYS_RAWIO or root.
func OpenDevMem(path string, regions ...Region) (*DevMem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "mmio: open %s", path)
	}

	d := &DevMem{f: f}
	page := uint32(unix.Getpagesize())
	for _, r := range regions {
		start, length := pageSpan(r, page)
		mem, err := unix.Mmap(int(f.Fd()), int64(start), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			d.Close()
			return nil, errors.Wrapf(err, "mmio: map %#08x+%#x", r.Base, r.Size)
		}
		d.windows = append(d.windows, window{base: start, mem: mem})
	}
	return d, nil
}

// register returns a pointer to the mapped register at addr.
// Accessing an unmapped address is a programming error.
func (d *DevMem) register(addr uint32) *uint32 {
	for _, w := range d.windows {
		if addr >= w.base && uint64(addr-w.base)+4 <= uint64(len(w.mem)) {
			return (*uint32)(unsafe.Pointer(&w.mem[addr-w.base]))
		}
	}
	panic("mmio: address not mapped: " + hex32(addr))
}

// Read32 implements the register bus
func (d *DevMem) Read32(addr uint32) uint32 {
	return atomic.LoadUint32(d.register(addr))
}

// Write32 implements the register bus
func (d *DevMem) Write32(addr uint32, value uint32) {
	atomic.StoreUint32(d.register(addr), value)
}

// Close unmaps every window and closes the device
func (d *DevMem) Close() error {
	var first error
	for _, w := range d.windows {
		if err := unix.Munmap(w.mem); err != nil && first == nil {
			first = errors.Wrap(err, "mmio: munmap")
		}
	}
	d.windows = nil
	if err := d.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
