package sim

import (
	"testing"
	"time"
)

const testBase = 0x42800000

func TestLoadCopiesLoadRegister(t *testing.T) {
	b := New(100e6, testBase)

	b.Write32(testBase+regTLR0, 1234)
	b.Write32(testBase+regTCSR0, csrLOAD)

	if got := b.Read32(testBase + regTCR0); got != 1234 {
		t.Errorf("Expected TCR0 1234 after load, got %d", got)
	}

	// Counter is held while LOAD is set, even when enabled
	b.Write32(testBase+regTCSR0, csrLOAD|csrENT)
	b.Advance(100)
	if got := b.Read32(testBase + regTCR0); got != 1234 {
		t.Errorf("Expected TCR0 held at 1234, got %d", got)
	}
}

func TestCascadeCarriesIntoUpper(t *testing.T) {
	b := New(100e6, testBase)
	b.Write32(testBase+regTCSR0, csrCASC|csrENT)

	b.Advance(1 << 32)

	lower := b.Read32(testBase + regTCR0)
	upper := b.Read32(testBase + regTCR1)
	if lower != 0 || upper != 1 {
		t.Errorf("Expected upper=1 lower=0 after 2^32 ticks, got upper=%d lower=%d", upper, lower)
	}
}

func TestIndependentCountersWrapAlone(t *testing.T) {
	b := New(100e6, testBase)
	b.Write32(testBase+regTCSR0, csrENT)

	b.Advance(1<<32 + 7)

	if got := b.Read32(testBase + regTCR0); got != 7 {
		t.Errorf("Expected TCR0 to wrap to 7, got %d", got)
	}
	if got := b.Read32(testBase + regTCR1); got != 0 {
		t.Errorf("Expected TCR1 untouched without cascade, got %d", got)
	}
}

func TestDownCount(t *testing.T) {
	b := New(100e6, testBase)
	b.Write32(testBase+regTLR0, 10)
	b.Write32(testBase+regTCSR0, csrLOAD)
	b.Write32(testBase+regTCSR0, csrENT|csrUDT)

	b.Advance(3)

	if got := b.Read32(testBase + regTCR0); got != 7 {
		t.Errorf("Expected down-counter at 7, got %d", got)
	}
}

func TestCounterRegistersReadOnly(t *testing.T) {
	b := New(100e6, testBase)
	b.Write32(testBase+regTCR0, 99)
	if got := b.Read32(testBase + regTCR0); got != 0 {
		t.Errorf("Expected write to TCR0 to be ignored, got %d", got)
	}
}

func TestTicksPerAccess(t *testing.T) {
	b := New(100e6, testBase)
	b.Write32(testBase+regTCSR0, csrCASC|csrENT)
	b.SetTicksPerAccess(5)

	first := b.Read32(testBase + regTCR0)
	second := b.Read32(testBase + regTCR0)

	if second-first != 5 {
		t.Errorf("Expected consecutive reads 5 ticks apart, got %d and %d", first, second)
	}
}

func TestStuckBits(t *testing.T) {
	b := New(100e6, testBase)
	b.StickBits(testBase+regTCR1, 0x1)

	if got := b.Read32(testBase + regTCR1); got != 1 {
		t.Errorf("Expected stuck bit to read 1, got %d", got)
	}

	b.StickBits(testBase+regTCR1, 0)
	if got := b.Read32(testBase + regTCR1); got != 0 {
		t.Errorf("Expected fault removed, got %d", got)
	}
}

func TestSetCounter(t *testing.T) {
	b := New(100e6, testBase)

	if err := b.SetCounter(testBase, 1<<32|42); err != nil {
		t.Fatalf("SetCounter failed: %v", err)
	}
	if lo, hi := b.Read32(testBase+regTCR0), b.Read32(testBase+regTCR1); lo != 42 || hi != 1 {
		t.Errorf("Expected lower=42 upper=1, got lower=%d upper=%d", lo, hi)
	}

	if err := b.SetCounter(0x1000, 0); err == nil {
		t.Error("Expected error for unknown timer base")
	}
}

func TestGPIOInputs(t *testing.T) {
	const gpioBase = 0x41240000
	b := New(100e6)
	b.AddGPIO(gpioBase, 4)

	if err := b.SetInputs(gpioBase, 0xFF); err != nil {
		t.Fatalf("SetInputs failed: %v", err)
	}
	if got := b.Read32(gpioBase + regGPIOData); got != 0x0F {
		t.Errorf("Expected inputs masked to 4 lines (0x0F), got %#x", got)
	}

	b.Write32(gpioBase+regGPIOTri, 0xFFFFFFFF)
	if got := b.Read32(gpioBase + regGPIOTri); got != 0x0F {
		t.Errorf("Expected tri-state masked to 0x0F, got %#x", got)
	}
}

func TestUnmappedAccess(t *testing.T) {
	b := New(100e6, testBase)

	if got := b.Read32(0x10); got != 0 {
		t.Errorf("Expected unmapped read to return 0, got %d", got)
	}
	b.Write32(0x10, 1)

	if b.Unmapped() != 2 {
		t.Errorf("Expected 2 unmapped accesses, got %d", b.Unmapped())
	}
}

func TestOnAccessHook(t *testing.T) {
	b := New(100e6, testBase)

	var seen []Access
	b.OnAccess(func(a Access) { seen = append(seen, a) })

	b.Write32(testBase+regTLR0, 5)
	b.Read32(testBase + regTLR0)

	if len(seen) != 2 {
		t.Fatalf("Expected 2 accesses, got %d", len(seen))
	}
	if !seen[0].Write || seen[0].Value != 5 {
		t.Errorf("Expected first access to be a write of 5, got %+v", seen[0])
	}
	if seen[1].Write || seen[1].Value != 5 {
		t.Errorf("Expected second access to be a read of 5, got %+v", seen[1])
	}
}

func TestDelayMS(t *testing.T) {
	b := New(100e6, testBase)
	b.DelayMS(250)

	if got := b.Elapsed(); got != 25000000 {
		t.Errorf("Expected 25000000 ticks after 250ms, got %d", got)
	}
}

func TestStartClock(t *testing.T) {
	b := New(1e6, testBase)
	b.Write32(testBase+regTCSR0, csrCASC|csrENT)

	stop := b.StartClock(time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	stop()
	stop() // Second call is a no-op

	if b.Elapsed() == 0 {
		t.Error("Expected free-running clock to advance time")
	}
	t.Logf("Free-running clock advanced %d ticks", b.Elapsed())
}
