//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Volatile is a register bus that dereferences physical addresses directly.
// Only meaningful on bare metal, where addresses are not translated.
type Volatile struct{}

func register(addr uint32) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr)))
}

// Read32 implements the register bus
func (Volatile) Read32(addr uint32) uint32 {
	return register(addr).Get()
}

// Write32 implements the register bus
func (Volatile) Write32(addr uint32, value uint32) {
	register(addr).Set(value)
}
