package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"zynqhal/core"
	"zynqhal/host/serial"
	"zynqhal/mmio"
)

// Backend names select how registers are reached
const (
	BackendSim    = "sim"    // Simulated board in this process
	BackendDevMem = "devmem" // /dev/mem mappings on the board itself
	BackendSerial = "serial" // Register monitor over a serial or TCP link
)

// Backends lists every supported backend
var Backends = []string{BackendSim, BackendDevMem, BackendSerial}

// BoardConfig describes the board's timer and input blocks and how to reach them
type BoardConfig struct {
	Name     string    `json:"name"`
	ClockHz  float64   `json:"clock_hz"`
	Timers   []Address `json:"timers"`
	Buttons  Address   `json:"buttons"`
	Switches Address   `json:"switches"`

	Backend string        `json:"backend"`
	DevMem  string        `json:"devmem"`
	Serial  SerialConfig  `json:"serial"`
	Harness HarnessConfig `json:"harness"`
}

// SerialConfig configures the link to a register monitor
type SerialConfig struct {
	Device    string `json:"device"`
	Baud      int    `json:"baud"`
	TimeoutMS int    `json:"timeout_ms"`
}

// HarnessConfig tunes the timer self-test
type HarnessConfig struct {
	// Allowed difference between measured and requested run time, in seconds
	Tolerance float64 `json:"tolerance"`
}

// Address is a physical address. In JSON it may be a number or a string
// such as "0x42800000".
type Address uint32

// UnmarshalJSON accepts numbers and strings in any base strconv understands
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint32
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("address %s: want number or string", data)
		}
		*a = Address(n)
		return nil
	}

	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("address %q: %w", s, err)
	}
	*a = Address(v)
	return nil
}

// MarshalJSON writes the address as a hex string
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a Address) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}

// TimerBases returns the timer base addresses in TimerID order
func (c *BoardConfig) TimerBases() [core.NumTimers]uint32 {
	var bases [core.NumTimers]uint32
	for i := 0; i < len(bases) && i < len(c.Timers); i++ {
		bases[i] = uint32(c.Timers[i])
	}
	return bases
}

// Regions returns the address windows of every peripheral on the board
func (c *BoardConfig) Regions() []mmio.Region {
	bases := make([]uint32, 0, len(c.Timers)+2)
	for _, t := range c.Timers {
		bases = append(bases, uint32(t))
	}
	if c.Buttons != 0 {
		bases = append(bases, uint32(c.Buttons))
	}
	if c.Switches != 0 {
		bases = append(bases, uint32(c.Switches))
	}
	return mmio.Windows(bases...)
}

// PortConfig converts the link settings for host/serial
func (s SerialConfig) PortConfig() *serial.Config {
	cfg := serial.DefaultConfig(s.Device)
	if s.Baud != 0 {
		cfg.Baud = s.Baud
	}
	if s.TimeoutMS != 0 {
		cfg.ReadTimeout = time.Duration(s.TimeoutMS) * time.Millisecond
	}
	return cfg
}
