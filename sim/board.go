// Package sim models the board's memory-mapped peripherals so the timer HAL
// can run on a host without touching real memory.
//
// A Board implements the core register bus (Read32/Write32) and the
// millisecond delay collaborator. Simulated time only moves when Advance or
// DelayMS is called, when the free-running clock started by StartClock fires,
// or on every bus access when SetTicksPerAccess is non-zero. The last mode
// models counters that keep running while the CPU is busy on the bus, which
// is how torn counter reads are reproduced.
package sim

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Size of one peripheral's address window
const windowSize = 0x10000

// Access describes one bus transaction seen by the board
type Access struct {
	Addr  uint32
	Value uint32 // Value read or written
	Write bool
}

// Board is a simulated register file holding AXI timers and GPIO input blocks
type Board struct {
	mu      sync.Mutex
	clockHz float64

	timers []*axiTimer
	gpios  []*gpioBlock

	// stuck holds bits forced high on read, per absolute address
	stuck map[uint32]uint32

	ticksPerAccess uint64
	elapsed        uint64 // Total simulated ticks
	accesses       uint64
	unmapped       uint64

	onAccess func(Access)
}

// New creates a board with one AXI timer at each of the given base addresses,
// clocked at clockHz.
func New(clockHz float64, timerBases ...uint32) *Board {
	b := &Board{
		clockHz: clockHz,
		stuck:   make(map[uint32]uint32),
	}
	for _, base := range timerBases {
		b.timers = append(b.timers, &axiTimer{base: base})
	}
	return b
}

// AddGPIO adds a GPIO input block (buttons or switches) at base.
// width is the number of input lines.
func (b *Board) AddGPIO(base uint32, width uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gpios = append(b.gpios, &gpioBlock{base: base, mask: 1<<width - 1})
}

// ClockHz returns the simulated timer clock frequency
func (b *Board) ClockHz() float64 {
	return b.clockHz
}

// Read32 implements the register bus
func (b *Board) Read32(addr uint32) uint32 {
	b.mu.Lock()
	v := b.readLocked(addr) | b.stuck[addr]
	b.accessedLocked()
	hook := b.onAccess
	b.mu.Unlock()

	if hook != nil {
		hook(Access{Addr: addr, Value: v})
	}
	return v
}

// Write32 implements the register bus
func (b *Board) Write32(addr uint32, value uint32) {
	b.mu.Lock()
	b.writeLocked(addr, value)
	b.accessedLocked()
	hook := b.onAccess
	b.mu.Unlock()

	if hook != nil {
		hook(Access{Addr: addr, Value: value, Write: true})
	}
}

func (b *Board) accessedLocked() {
	b.accesses++
	if b.ticksPerAccess > 0 {
		b.advanceLocked(b.ticksPerAccess)
	}
}

func (b *Board) readLocked(addr uint32) uint32 {
	if t, off, ok := b.timerAt(addr); ok {
		return t.read(off)
	}
	if g, off, ok := b.gpioAt(addr); ok {
		return g.read(off)
	}
	b.unmapped++
	return 0
}

func (b *Board) writeLocked(addr uint32, value uint32) {
	if t, off, ok := b.timerAt(addr); ok {
		t.write(off, value)
		return
	}
	if g, off, ok := b.gpioAt(addr); ok {
		g.write(off, value)
		return
	}
	b.unmapped++
}

func (b *Board) timerAt(addr uint32) (*axiTimer, uint32, bool) {
	for _, t := range b.timers {
		if addr >= t.base && addr-t.base < windowSize {
			return t, addr - t.base, true
		}
	}
	return nil, 0, false
}

func (b *Board) gpioAt(addr uint32) (*gpioBlock, uint32, bool) {
	for _, g := range b.gpios {
		if addr >= g.base && addr-g.base < windowSize {
			return g, addr - g.base, true
		}
	}
	return nil, 0, false
}

// Advance moves simulated time forward by ticks timer clock cycles
func (b *Board) Advance(ticks uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanceLocked(ticks)
}

func (b *Board) advanceLocked(ticks uint64) {
	b.elapsed += ticks
	for _, t := range b.timers {
		t.advance(ticks)
	}
}

// AdvanceDuration moves simulated time forward by d at the board clock rate
func (b *Board) AdvanceDuration(d time.Duration) {
	b.Advance(uint64(d.Seconds() * b.clockHz))
}

// DelayMS implements the millisecond delay collaborator by advancing
// simulated time instead of sleeping
func (b *Board) DelayMS(ms uint32) {
	b.Advance(uint64(float64(ms) * b.clockHz / 1000))
}

// Elapsed returns the total number of simulated ticks
func (b *Board) Elapsed() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.elapsed
}

// SetTicksPerAccess makes every bus access advance time by ticks.
// Zero turns it off.
func (b *Board) SetTicksPerAccess(ticks uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticksPerAccess = ticks
}

// OnAccess registers a hook called after every bus transaction.
// The hook runs without the board lock held.
func (b *Board) OnAccess(hook func(Access)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onAccess = hook
}

// Accesses returns the number of bus transactions so far
func (b *Board) Accesses() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accesses
}

// Unmapped returns the number of accesses that hit no peripheral
func (b *Board) Unmapped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unmapped
}

// StickBits forces mask high on every read of addr, modelling a
// stuck-at-one fault. A zero mask removes the fault.
func (b *Board) StickBits(addr uint32, mask uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mask == 0 {
		delete(b.stuck, addr)
		return
	}
	b.stuck[addr] = mask
}

// SetCounter presets the 64-bit counter of the timer at base, as if it had
// already run for ticks cycles
func (b *Board) SetCounter(base uint32, ticks uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, off, ok := b.timerAt(base)
	if !ok || off != 0 {
		return errors.Errorf("sim: no timer at %#08x", base)
	}
	t.tcr[0] = uint32(ticks)
	t.tcr[1] = uint32(ticks >> 32)
	return nil
}

// SetInputs drives the input lines of the GPIO block at base
func (b *Board) SetInputs(base uint32, levels uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, off, ok := b.gpioAt(base)
	if !ok || off != 0 {
		return errors.Errorf("sim: no gpio block at %#08x", base)
	}
	g.inputs = levels & g.mask
	return nil
}

// StartClock runs simulated time in step with the wall clock, updating every
// period. The returned function stops the clock and waits for it to exit.
func (b *Board) StartClock(period time.Duration) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		last := time.Now()
		var carry float64
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				ticks := now.Sub(last).Seconds()*b.clockHz + carry
				whole := uint64(ticks)
				carry = ticks - float64(whole)
				last = now
				b.Advance(whole)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
		})
	}
}
