//go:build !linux && !tinygo

package mmio

import "github.com/pkg/errors"

// DevMem is only available on Linux
type DevMem struct{}

// OpenDevMem always fails outside Linux
func OpenDevMem(path string, regions ...Region) (*DevMem, error) {
	return nil, errors.New("mmio: /dev/mem access requires linux")
}

// Read32 implements the register bus
func (d *DevMem) Read32(addr uint32) uint32 { return 0 }

// Write32 implements the register bus
func (d *DevMem) Write32(addr uint32, value uint32) {}

// Close does nothing
func (d *DevMem) Close() error { return nil }
